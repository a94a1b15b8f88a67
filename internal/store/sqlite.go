package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
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
CREATE TABLE IF NOT EXISTS plan_runs (
	id          TEXT PRIMARY KEY,
	result      TEXT NOT NULL,
	items       INTEGER NOT NULL,
	unfulfilled INTEGER NOT NULL,
	recommended REAL NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_plan_runs_created_at ON plan_runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run StoredRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plan_runs (id, result, items, unfulfilled, recommended) VALUES (?, ?, ?, ?, ?)`,
		run.RunID, string(run.Result), run.Items, run.Unfulfilled, run.Recommended,
	)
	return eris.Wrap(err, "sqlite: save run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) ([]byte, error) {
	var result string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM plan_runs WHERE id = ?`, runID,
	).Scan(&result)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrRunNotFound, "sqlite: run %s", runID)
		}
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	return []byte(result), nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]RunSummary, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, items, unfulfilled, recommended, created_at
		 FROM plan_runs ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.Items, &s.Unfulfilled, &s.Recommended, &s.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		summaries = append(summaries, s)
	}
	return summaries, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}
