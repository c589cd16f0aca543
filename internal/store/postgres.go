package store

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/scoutline/sourcing-cli/internal/model"
)

// PgxPool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgres creates a PostgresStore from a connection string.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool (used by tests).
func NewPostgresFromPool(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profiles (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	name        TEXT NOT NULL,
	data        JSONB NOT NULL,
	final_score DOUBLE PRECISION,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS profile_sources (
	platform    TEXT NOT NULL,
	external_id TEXT NOT NULL,
	profile_id  TEXT NOT NULL REFERENCES profiles(id),
	url         TEXT,
	PRIMARY KEY (platform, external_id)
);

CREATE INDEX IF NOT EXISTS idx_profiles_run_id ON profiles(run_id);
CREATE INDEX IF NOT EXISTS idx_profile_sources_profile_id ON profile_sources(profile_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, result *model.SearchResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal run payload")
	}

	id := result.RunID
	if id == "" {
		id = uuid.NewString()
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, payload) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`,
		id, payload)
	return eris.Wrap(err, "postgres: save run")
}

func (s *PostgresStore) UpsertProfiles(ctx context.Context, runID string, profiles []model.CanonicalProfile) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin upsert")
	}
	defer tx.Rollback(ctx)

	count := 0
	for _, p := range profiles {
		data, err := json.Marshal(p)
		if err != nil {
			return count, eris.Wrap(err, "postgres: marshal profile")
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO profiles (id, run_id, name, data, final_score, updated_at)
			 VALUES ($1, $2, $3, $4, $5, now())
			 ON CONFLICT (id) DO UPDATE SET
			   run_id = EXCLUDED.run_id,
			   name = EXCLUDED.name,
			   data = EXCLUDED.data,
			   final_score = EXCLUDED.final_score,
			   updated_at = now()`,
			p.ID, runID, p.Name, data, finalScore(p))
		if err != nil {
			return count, eris.Wrapf(err, "postgres: upsert profile %s", p.ID)
		}

		for _, ref := range p.Sources {
			_, err = tx.Exec(ctx,
				`INSERT INTO profile_sources (platform, external_id, profile_id, url)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (platform, external_id) DO UPDATE SET
				   profile_id = EXCLUDED.profile_id,
				   url = EXCLUDED.url`,
				ref.Platform, ref.ExternalID, p.ID, ref.URL)
			if err != nil {
				return count, eris.Wrapf(err, "postgres: upsert source ref %s/%s", ref.Platform, ref.ExternalID)
			}
		}
		count++
	}

	if err := tx.Commit(ctx); err != nil {
		return count, eris.Wrap(err, "postgres: commit upsert")
	}
	return count, nil
}
