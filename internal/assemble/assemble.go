// Package assemble sorts, truncates, and packages one run's output into the
// final JSON-serializable payload.
package assemble

import (
	"sort"
	"time"

	"github.com/scoutline/sourcing-cli/internal/model"
)

// Input carries everything one run produced.
type Input struct {
	RunID        string
	Criteria     model.SearchCriteria
	Profiles     []model.CanonicalProfile
	Outcomes     map[string]model.SourceOutcome
	DedupMetrics model.DeduplicationMetrics
	TotalTime    time.Duration
	PerSource    map[string]int64
}

// Build produces the final payload: candidates sorted by final score
// descending with profile id as the deterministic tie-break, truncated to the
// criteria limit, plus quality and performance metadata.
func Build(in Input) *model.SearchResult {
	profiles := make([]model.CanonicalProfile, len(in.Profiles))
	copy(profiles, in.Profiles)

	sort.SliceStable(profiles, func(i, j int) bool {
		si, sj := finalScore(profiles[i]), finalScore(profiles[j])
		if si != sj {
			return si > sj
		}
		return profiles[i].ID < profiles[j].ID
	})

	if limit := in.Criteria.ResultLimit(); len(profiles) > limit {
		profiles = profiles[:limit]
	}

	succeeded := 0
	anyRecords := false
	var errs []model.SourceErrorEntry
	for _, out := range in.Outcomes {
		if out.Succeeded() {
			succeeded++
		} else {
			errs = append(errs, model.SourceErrorEntry{Source: out.Source, Error: out.Error})
		}
		if len(out.Records) > 0 {
			anyRecords = true
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Source < errs[j].Source })

	successRate := 0.0
	if len(in.Outcomes) > 0 {
		successRate = float64(succeeded) / float64(len(in.Outcomes)) * 100
	}

	return &model.SearchResult{
		RunID:                in.RunID,
		Candidates:           profiles,
		Results:              in.Outcomes,
		DeduplicationMetrics: in.DedupMetrics,
		PerformanceMetrics: model.PerformanceMetrics{
			TotalTimeMS:   in.TotalTime.Milliseconds(),
			SuccessRate:   successRate,
			PerSourceTime: in.PerSource,
		},
		Errors:   errs,
		Degraded: succeeded == 0 && !anyRecords,
	}
}

func finalScore(p model.CanonicalProfile) float64 {
	if p.Score == nil {
		return 0
	}
	return p.Score.FinalScore
}
