package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutline/sourcing-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteSaveRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	result := &model.SearchResult{RunID: "run-1", Degraded: false}
	require.NoError(t, s.SaveRun(ctx, result))

	// Saving the same run again overwrites rather than failing.
	result.Degraded = true
	require.NoError(t, s.SaveRun(ctx, result))

	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM runs WHERE id = ?", "run-1").Scan(&payload)
	require.NoError(t, err)
	assert.Contains(t, payload, `"degraded":true`)

	var count int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteUpsertProfiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	profiles := []model.CanonicalProfile{
		{
			ID:   "github:jdoe",
			Name: "Jane Doe",
			Sources: []model.SourceReference{
				{Platform: "github", ExternalID: "jdoe", URL: "https://github.com/jdoe"},
				{Platform: "stackoverflow", ExternalID: "12345"},
			},
			Score: &model.ScoreBreakdown{FinalScore: 82.5},
		},
		{ID: "websearch:janedoe.dev/about", Name: "Jane Doe"},
	}

	n, err := s.UpsertProfiles(ctx, "run-1", profiles)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A later run re-upserting the same profile moves it to the new run.
	profiles[0].Score.FinalScore = 90
	n, err = s.UpsertProfiles(ctx, "run-2", profiles[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var runID string
	var score float64
	err = s.db.QueryRowContext(ctx,
		"SELECT run_id, final_score FROM profiles WHERE id = ?", "github:jdoe").Scan(&runID, &score)
	require.NoError(t, err)
	assert.Equal(t, "run-2", runID)
	assert.Equal(t, 90.0, score)

	var profileCount, refCount int
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profiles").Scan(&profileCount))
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profile_sources").Scan(&refCount))
	assert.Equal(t, 2, profileCount)
	assert.Equal(t, 2, refCount)
}

func TestSQLiteUpsertProfilesEmpty(t *testing.T) {
	s := newTestStore(t)

	n, err := s.UpsertProfiles(context.Background(), "run-1", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
