package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS plan_runs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveRun(t *testing.T) {
	s, mock := newMockStore(t)

	run, err := NewStoredRun(testResult("run-1"))
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO plan_runs").
		WithArgs(run.RunID, run.Result, run.Items, run.Unfulfilled, run.Recommended).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRun(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT result FROM plan_runs").
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"result"}).AddRow([]byte(`{"run_id":"run-1"}`)))

	raw, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"run_id":"run-1"}`, string(raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRunNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT result FROM plan_runs").
		WithArgs("nope").
		WillReturnRows(pgxmock.NewRows([]string{"result"}))

	_, err := s.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestPostgresListRuns(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now()
	mock.ExpectQuery("SELECT id, items, unfulfilled, recommended, created_at").
		WithArgs(50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "items", "unfulfilled", "recommended", "created_at"}).
			AddRow("run-2", 3, 1, 24.50, now).
			AddRow("run-1", 2, 0, 11.25, now.Add(-time.Hour)))

	summaries, err := s.ListRuns(context.Background(), RunFilter{})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "run-2", summaries[0].RunID)
	assert.Equal(t, 3, summaries[0].Items)
	assert.Equal(t, 1, summaries[0].Unfulfilled)
	assert.InDelta(t, 24.50, summaries[0].Recommended, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}
