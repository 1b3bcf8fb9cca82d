package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

var runCols = []string{"id", "source", "dry_run", "status", "total", "successful", "failed", "started_at", "finished_at"}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS runs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "prospects.csv", true, "running", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "prospects.csv", true)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_FinishRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status = \$1`).
		WithArgs("complete", 1, 1, 0, pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.FinishRun(context.Background(), "missing", model.RunTotals{
		Status: model.RunStatusComplete, Total: 1, Successful: 1,
	})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, source, dry_run, status, total, successful, failed, started_at, finished_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	finished := started.Add(10 * time.Minute)

	mock.ExpectQuery(`SELECT .+ FROM runs ORDER BY started_at DESC LIMIT \$1`).
		WithArgs(DefaultListLimit).
		WillReturnRows(pgxmock.NewRows(runCols).
			AddRow("run-2", "b.csv", false, "running", 0, 0, 0, started.Add(time.Hour), (*time.Time)(nil)).
			AddRow("run-1", "a.csv", true, "complete", 3, 2, 1, started, &finished))

	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Nil(t, runs[0].FinishedAt)
	assert.Equal(t, model.RunStatusComplete, runs[1].Status)
	assert.Equal(t, 2, runs[1].Successful)
	require.NotNil(t, runs[1].FinishedAt)
	assert.Equal(t, finished, *runs[1].FinishedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	r := sampleResult("ann@acme.test", "Acme", true)

	mock.ExpectExec(`INSERT INTO results`).
		WithArgs(pgxmock.AnyArg(), "run-1", "ann@acme.test", "Acme", true, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveResult(context.Background(), "run-1", r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDelivery_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO deliveries`).
		WithArgs(pgxmock.AnyArg(), "run-1", "a@b.test", pgxmock.AnyArg(), false,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(eris.New("connection reset"))

	err := s.SaveDelivery(context.Background(), "run-1", model.DeliveryOutcome{RecipientEmail: "a@b.test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert delivery")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListResults(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	r := sampleResult("bo@beta.test", "Beta", false)
	raw, err := json.Marshal(r)
	require.NoError(t, err)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, run_id, email, company, success, result, created_at FROM results`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "run_id", "email", "company", "success", "result", "created_at"}).
			AddRow("res-1", "run-1", "bo@beta.test", "Beta", false, raw, created))

	results, err := s.ListResults(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Beta", results[0].Company)
	require.NotNil(t, results[0].Result)
	assert.Equal(t, r.Errors, results[0].Result.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}
