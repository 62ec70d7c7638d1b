package postgres

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/riskibarqy/prediction-pool/internal/domain/jobscheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRunRepository_UpsertEvent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRunRepository(db)
	at := time.Date(2026, 6, 3, 3, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO job_runs (run_id, job_name, payload, status`)+`.*`+regexp.QuoteMeta(`ON CONFLICT (run_id)`)).
		WithArgs("run-001", "cleanup-invites", `{"removed":2}`, "failed",
			nil, nil, at, "store unavailable", nil, nil, nil, nil, "trace-1", "span-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpsertEvent(t.Context(), jobscheduler.RunEvent{
		RunID:        "run-001",
		JobName:      "cleanup-invites",
		Status:       jobscheduler.StatusFailed,
		Payload:      map[string]any{"removed": 2},
		ErrorMessage: "store unavailable",
		OccurredAt:   at,
		TraceID:      "trace-1",
		SpanID:       "span-1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRunRepository_UpsertEvent_Validation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRunRepository(db)

	require.Error(t, repo.UpsertEvent(t.Context(), jobscheduler.RunEvent{RunID: " ", Status: jobscheduler.StatusStarted}))
	require.Error(t, repo.UpsertEvent(t.Context(), jobscheduler.RunEvent{RunID: "run-1", Status: "paused"}))

	err := repo.UpsertEvent(t.Context(), jobscheduler.RunEvent{
		RunID:   "run-1",
		Status:  jobscheduler.StatusStarted,
		Payload: map[string]any{"done": make(chan struct{})},
	})
	require.ErrorContains(t, err, "marshal job run payload")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRunRepository_UpsertEvent_DefaultsTime(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRunRepository(db)
	fixed := time.Date(2026, 6, 3, 3, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO job_runs`)).
		WithArgs("run-002", "unknown", "{}", "started",
			fixed, nil, nil, nil, nil, nil, nil, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpsertEvent(t.Context(), jobscheduler.RunEvent{RunID: "run-002", Status: jobscheduler.StatusStarted}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
