package orchestrate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/sourcing-cli/internal/config"
	"github.com/scoutline/sourcing-cli/internal/dedup"
	"github.com/scoutline/sourcing-cli/internal/model"
	"github.com/scoutline/sourcing-cli/internal/scoring"
	"github.com/scoutline/sourcing-cli/internal/source"
)

// stubCollector settles after delay with canned records, or hangs until the
// run context is cancelled when hang is set.
type stubCollector struct {
	name    string
	delay   time.Duration
	hang    bool
	records []model.RawCandidateRecord
	err     string
}

func (s *stubCollector) Name() string { return s.name }

func (s *stubCollector) Collect(ctx context.Context, _ model.SearchCriteria) model.SourceOutcome {
	if s.hang {
		<-ctx.Done()
		// Simulate a worker that never delivers: block well past the grace
		// window the run loop allows for late partials.
		time.Sleep(2 * time.Second)
		return model.SourceOutcome{}
	}
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return model.SourceOutcome{Error: model.ErrTimeout}
	}
	return model.SourceOutcome{
		Records:    s.records,
		TotalFound: len(s.records),
		Error:      s.err,
	}
}

func rec(platform, id, name string) model.RawCandidateRecord {
	return model.RawCandidateRecord{
		SourceID:    id,
		Platform:    platform,
		Name:        name,
		Skills:      []string{"go", "sql", "docker"},
		Summary:     "A summary comfortably past the validity screening threshold.",
		YearsActive: 4,
	}
}

func newTestOrchestrator(collectors ...source.Collector) *Orchestrator {
	reg := source.NewRegistry()
	for _, c := range collectors {
		reg.Register(c)
	}
	return New(reg, dedup.NewEngine(), scoring.NewEngine(scoring.DefaultWeights()), config.SearchConfig{
		MaxSources:          4,
		MaxRecordsPerSource: 20,
	})
}

func TestRunValidationFailure(t *testing.T) {
	o := newTestOrchestrator(&stubCollector{name: "github"})

	_, err := o.Run(context.Background(), model.SearchCriteria{Sources: []string{"github"}})

	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
}

func TestRunHappyPath(t *testing.T) {
	o := newTestOrchestrator(
		&stubCollector{name: "github", records: []model.RawCandidateRecord{rec("github", "jdoe", "Jane Doe")}},
		&stubCollector{name: "stackoverflow", records: []model.RawCandidateRecord{rec("stackoverflow", "12345", "Jane Doe")}},
	)

	criteria := model.SearchCriteria{
		Query:   "backend engineer",
		Skills:  []string{"go"},
		Sources: []string{"github", "stackoverflow"},
	}
	result, err := o.Run(context.Background(), criteria)

	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results["github"].Succeeded())
	assert.True(t, result.Results["stackoverflow"].Succeeded())

	// Same name, no conflicting locations: one canonical profile, fully scored.
	require.Len(t, result.Candidates, 1)
	require.NotNil(t, result.Candidates[0].Score)
	assert.Equal(t, 2, result.DeduplicationMetrics.OriginalCount)
	assert.Equal(t, 1, result.DeduplicationMetrics.DeduplicatedCount)
	assert.Equal(t, 100.0, result.PerformanceMetrics.SuccessRate)
	assert.False(t, result.Degraded)
}

func TestRunHungSourceDoesNotBlockOthers(t *testing.T) {
	o := newTestOrchestrator(
		&stubCollector{name: "github", records: []model.RawCandidateRecord{rec("github", "jdoe", "Jane Doe")}},
		&stubCollector{name: "websearch", hang: true},
	)

	criteria := model.SearchCriteria{
		Query:          "go",
		Sources:        []string{"github", "websearch"},
		TimeBudgetSecs: 1,
	}

	start := time.Now()
	result, err := o.Run(context.Background(), criteria)
	elapsed := time.Since(start)

	require.NoError(t, err)
	// The run settles near the budget, not at the hung worker's leisure.
	assert.Less(t, elapsed, 2*time.Second)

	require.Len(t, result.Results, 2)
	assert.True(t, result.Results["github"].Succeeded())
	assert.Equal(t, model.ErrTimeout, result.Results["websearch"].Error)
	require.Len(t, result.Candidates, 1)
	assert.InDelta(t, 50.0, result.PerformanceMetrics.SuccessRate, 0.001)
}

func TestRunAllSourcesTimeOut(t *testing.T) {
	o := newTestOrchestrator(
		&stubCollector{name: "github", hang: true},
		&stubCollector{name: "websearch", hang: true},
	)

	criteria := model.SearchCriteria{
		Query:          "go",
		Sources:        []string{"github", "websearch"},
		TimeBudgetSecs: 1,
	}

	result, err := o.Run(context.Background(), criteria)

	require.NoError(t, err, "a total wipeout is a degraded result, not an error")
	assert.True(t, result.Degraded)
	assert.Empty(t, result.Candidates)
	require.Len(t, result.Results, 2)
	for name, out := range result.Results {
		assert.Equal(t, model.ErrTimeout, out.Error, "source %s", name)
	}
	require.Len(t, result.Errors, 2)
}

func TestRunUnknownSourceGetsOutcome(t *testing.T) {
	o := newTestOrchestrator(
		&stubCollector{name: "github", records: []model.RawCandidateRecord{rec("github", "jdoe", "Jane Doe")}},
	)

	criteria := model.SearchCriteria{
		Query:   "go",
		Sources: []string{"github", "gitlab"},
	}
	result, err := o.Run(context.Background(), criteria)

	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "unknown source", result.Results["gitlab"].Error)
	assert.True(t, result.Results["github"].Succeeded())
}

func TestRunCapsSourceListAndRecords(t *testing.T) {
	var records []model.RawCandidateRecord
	for i := 0; i < 30; i++ {
		records = append(records, rec("github", fmt.Sprintf("user%d", i), fmt.Sprintf("User %d", i)))
	}

	var collectors []source.Collector
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		collectors = append(collectors, &stubCollector{name: name, records: records})
	}
	o := newTestOrchestrator(collectors...)

	criteria := model.SearchCriteria{
		Query:   "go",
		Sources: []string{"a", "b", "c", "d", "e"},
	}
	result, err := o.Run(context.Background(), criteria)

	require.NoError(t, err)
	// Every requested source has an outcome even though only four ran: the
	// fifth carries the cap error and no records.
	require.Len(t, result.Results, 5)
	assert.Equal(t, model.ErrSourceCapExceeded, result.Results["e"].Error)
	assert.Empty(t, result.Results["e"].Records)
	for _, name := range []string{"a", "b", "c", "d"} {
		out := result.Results[name]
		assert.Empty(t, out.Error, "source %s", name)
		assert.Len(t, out.Records, 20, "source %s", name)
	}

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "e", result.Errors[0].Source)
	assert.InDelta(t, 80.0, result.PerformanceMetrics.SuccessRate, 0.001)
}

func TestRunPartialSuccessKeepsRecords(t *testing.T) {
	o := newTestOrchestrator(
		&stubCollector{
			name:    "github",
			records: []model.RawCandidateRecord{rec("github", "jdoe", "Jane Doe")},
			err:     "quota exhausted",
		},
	)

	criteria := model.SearchCriteria{Query: "go", Sources: []string{"github"}}
	result, err := o.Run(context.Background(), criteria)

	require.NoError(t, err)
	assert.False(t, result.Results["github"].Succeeded())
	require.Len(t, result.Candidates, 1)
	assert.False(t, result.Degraded)
}

func TestRunProgressPhases(t *testing.T) {
	ch := make(chan Phase, 16)
	o := newTestOrchestrator(
		&stubCollector{name: "github", records: []model.RawCandidateRecord{rec("github", "jdoe", "Jane Doe")}},
	).WithProgress(ch)

	_, err := o.Run(context.Background(), model.SearchCriteria{Query: "go", Sources: []string{"github"}})
	require.NoError(t, err)

	close(ch)
	var phases []Phase
	for p := range ch {
		phases = append(phases, p)
	}
	assert.Equal(t, []Phase{PhaseCollecting, PhaseDeduplicating, PhaseScoring, PhaseAssembling, PhaseDone}, phases)
}
