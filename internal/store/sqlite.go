package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/scoutline/sourcing-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	name         TEXT NOT NULL,
	data         TEXT NOT NULL,
	final_score  REAL,
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
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

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, result *model.SearchResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal run payload")
	}

	id := result.RunID
	if id == "" {
		id = uuid.NewString()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, payload) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
		id, string(payload))
	return eris.Wrap(err, "sqlite: save run")
}

func (s *SQLiteStore) UpsertProfiles(ctx context.Context, runID string, profiles []model.CanonicalProfile) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert")
	}
	defer tx.Rollback()

	count := 0
	for _, p := range profiles {
		data, err := json.Marshal(p)
		if err != nil {
			return count, eris.Wrap(err, "sqlite: marshal profile")
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO profiles (id, run_id, name, data, final_score, updated_at)
			 VALUES (?, ?, ?, ?, ?, datetime('now'))
			 ON CONFLICT(id) DO UPDATE SET
			   run_id = excluded.run_id,
			   name = excluded.name,
			   data = excluded.data,
			   final_score = excluded.final_score,
			   updated_at = datetime('now')`,
			p.ID, runID, p.Name, string(data), finalScore(p))
		if err != nil {
			return count, eris.Wrapf(err, "sqlite: upsert profile %s", p.ID)
		}

		for _, ref := range p.Sources {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO profile_sources (platform, external_id, profile_id, url)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT(platform, external_id) DO UPDATE SET
				   profile_id = excluded.profile_id,
				   url = excluded.url`,
				ref.Platform, ref.ExternalID, p.ID, ref.URL)
			if err != nil {
				return count, eris.Wrapf(err, "sqlite: upsert source ref %s/%s", ref.Platform, ref.ExternalID)
			}
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return count, eris.Wrap(err, "sqlite: commit upsert")
	}
	return count, nil
}

func finalScore(p model.CanonicalProfile) float64 {
	if p.Score == nil {
		return 0
	}
	return p.Score.FinalScore
}
