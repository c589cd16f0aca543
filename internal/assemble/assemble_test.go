package assemble

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/sourcing-cli/internal/model"
)

func scored(id string, score float64) model.CanonicalProfile {
	return model.CanonicalProfile{ID: id, Score: &model.ScoreBreakdown{FinalScore: score}}
}

func TestBuildSortsByScoreThenID(t *testing.T) {
	in := Input{
		RunID:    "run-1",
		Criteria: model.SearchCriteria{Query: "go", Sources: []string{"github"}},
		Profiles: []model.CanonicalProfile{
			scored("github:bravo", 80),
			scored("github:alpha", 80),
			scored("github:charlie", 95),
			{ID: "websearch:unscored"},
		},
		Outcomes: map[string]model.SourceOutcome{
			"github": {Source: "github", Records: []model.RawCandidateRecord{{SourceID: "x"}}},
		},
		TotalTime: 1200 * time.Millisecond,
	}

	result := Build(in)

	ids := make([]string, len(result.Candidates))
	for i, c := range result.Candidates {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{"github:charlie", "github:alpha", "github:bravo", "websearch:unscored"}, ids)
	assert.Equal(t, int64(1200), result.PerformanceMetrics.TotalTimeMS)
	assert.Equal(t, 100.0, result.PerformanceMetrics.SuccessRate)
	assert.False(t, result.Degraded)
	assert.Empty(t, result.Errors)
}

func TestBuildTruncatesToLimit(t *testing.T) {
	in := Input{
		Criteria: model.SearchCriteria{Query: "go", Sources: []string{"github"}, Limit: 2},
		Profiles: []model.CanonicalProfile{
			scored("a", 10),
			scored("b", 30),
			scored("c", 20),
		},
		Outcomes: map[string]model.SourceOutcome{"github": {Source: "github"}},
	}

	result := Build(in)

	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "b", result.Candidates[0].ID)
	assert.Equal(t, "c", result.Candidates[1].ID)
}

func TestBuildSuccessRateAndErrors(t *testing.T) {
	in := Input{
		Criteria: model.SearchCriteria{Query: "go", Sources: []string{"github", "stackoverflow"}},
		Outcomes: map[string]model.SourceOutcome{
			"github":        {Source: "github", Records: []model.RawCandidateRecord{{SourceID: "x"}}},
			"stackoverflow": {Source: "stackoverflow", Error: model.ErrTimeout},
			"websearch":     {Source: "websearch", Error: "connection refused"},
		},
	}

	result := Build(in)

	assert.InDelta(t, 33.33, result.PerformanceMetrics.SuccessRate, 0.01)
	require.Len(t, result.Errors, 2)
	// Errors are sorted by source name.
	assert.Equal(t, "stackoverflow", result.Errors[0].Source)
	assert.Equal(t, model.ErrTimeout, result.Errors[0].Error)
	assert.Equal(t, "websearch", result.Errors[1].Source)
	assert.False(t, result.Degraded)
}

func TestBuildDegradedWhenEverythingFailed(t *testing.T) {
	in := Input{
		Criteria: model.SearchCriteria{Query: "go", Sources: []string{"github", "websearch"}},
		Outcomes: map[string]model.SourceOutcome{
			"github":    {Source: "github", Error: model.ErrTimeout},
			"websearch": {Source: "websearch", Error: "503"},
		},
	}

	result := Build(in)

	assert.True(t, result.Degraded)
	assert.Empty(t, result.Candidates)
	assert.Equal(t, 0.0, result.PerformanceMetrics.SuccessRate)
}

func TestBuildFailedSourceWithPartialRecordsIsNotDegraded(t *testing.T) {
	in := Input{
		Criteria: model.SearchCriteria{Query: "go", Sources: []string{"github"}},
		Outcomes: map[string]model.SourceOutcome{
			"github": {
				Source:  "github",
				Error:   "quota exhausted",
				Records: []model.RawCandidateRecord{{SourceID: "partial"}},
			},
		},
	}

	result := Build(in)

	assert.False(t, result.Degraded)
}
