package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runColumns = []string{
	"id", "goal_title", "education_level", "want_connections", "want_programs",
	"iterations", "broaden_level", "pool_size", "connection_count", "connections",
	"error_kind", "error_message", "created_at",
}

func TestPGMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS connection_runs")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	s := NewPGStore(mock)
	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGSaveRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := RunRecord{
		ID:              "run-1",
		GoalTitle:       "Backend engineer",
		WantConnections: true,
		WantPrograms:    true,
		Iterations:      1,
		PoolSize:        6,
		ConnectionCount: 5,
		Connections:     json.RawMessage(`[]`),
		CreatedAt:       created,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO connection_runs")).
		WithArgs(
			"run-1", "Backend engineer", "", true, true,
			1, 0, 6, 5, []byte(`[]`),
			"", "", created,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPGStore(mock)
	require.NoError(t, s.SaveRun(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGGetRun(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(runColumns).
		AddRow("run-1", "Backend engineer", "graduate", true, false,
			2, 1, 9, 1, []byte(`[{"name":"Jane"}]`),
			"", "", created)

	mock.ExpectQuery(regexp.QuoteMeta("FROM connection_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnRows(rows)

	s := NewPGStore(mock)
	got, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "graduate", got.EducationLevel)
	assert.Equal(t, 2, got.Iterations)
	assert.Equal(t, 9, got.PoolSize)
	assert.JSONEq(t, `[{"name":"Jane"}]`, string(got.Connections))
	assert.Equal(t, created, got.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGGetRunNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM connection_runs WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	s := NewPGStore(mock)
	_, err = s.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGListRuns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	rows := pgxmock.NewRows(runColumns).
		AddRow("b", "goal b", "", true, true, 1, 0, 3, 0, []byte(`[]`), ErrorKindCoverage, "insufficient coverage", now).
		AddRow("a", "goal a", "", true, true, 3, 2, 12, 5, []byte(`[]`), "", "", now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $1")).
		WithArgs(defaultListLimit).
		WillReturnRows(rows)

	s := NewPGStore(mock)
	runs, err := s.ListRuns(context.Background(), -1)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "b", runs[0].ID)
	assert.Equal(t, ErrorKindCoverage, runs[0].ErrorKind)
	assert.Equal(t, 5, runs[1].ConnectionCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
