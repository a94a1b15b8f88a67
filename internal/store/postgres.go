package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// pgPool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for unit tests.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool pgPool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS plan_runs (
	id          TEXT PRIMARY KEY,
	result      JSONB NOT NULL,
	items       INTEGER NOT NULL,
	unfulfilled INTEGER NOT NULL,
	recommended DOUBLE PRECISION NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_plan_runs_created_at ON plan_runs(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run StoredRun) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO plan_runs (id, result, items, unfulfilled, recommended) VALUES ($1, $2, $3, $4, $5)`,
		run.RunID, run.Result, run.Items, run.Unfulfilled, run.Recommended,
	)
	return eris.Wrap(err, "postgres: save run")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) ([]byte, error) {
	var result []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM plan_runs WHERE id = $1`, runID,
	).Scan(&result)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrRunNotFound, "postgres: run %s", runID)
		}
		return nil, eris.Wrap(err, "postgres: get run")
	}
	return result, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]RunSummary, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, items, unfulfilled, recommended, created_at
		 FROM plan_runs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, filter.Offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.RunID, &s.Items, &s.Unfulfilled, &s.Recommended, &s.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		summaries = append(summaries, s)
	}
	return summaries, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
