package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/prediction-pool/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/prediction-pool/internal/platform/querybuilder"
)

// jobRunUpsertSuffix folds successive events of one run into its row. Each
// terminal status keeps its own timestamp and trace ids.
const jobRunUpsertSuffix = `ON CONFLICT (run_id)
DO UPDATE SET
    job_name = EXCLUDED.job_name,
    payload = CASE
        WHEN EXCLUDED.payload = '{}' THEN job_runs.payload
        ELSE EXCLUDED.payload
    END,
    status = EXCLUDED.status,
    started_at = COALESCE(job_runs.started_at, EXCLUDED.started_at),
    completed_at = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_at
        ELSE job_runs.completed_at
    END,
    failed_at = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_at
        WHEN EXCLUDED.status = 'completed' THEN NULL
        ELSE job_runs.failed_at
    END,
    last_error = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.last_error
        ELSE NULL
    END,
    started_trace_id = COALESCE(job_runs.started_trace_id, EXCLUDED.started_trace_id),
    started_span_id = COALESCE(job_runs.started_span_id, EXCLUDED.started_span_id),
    completed_trace_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_trace_id
        ELSE job_runs.completed_trace_id
    END,
    completed_span_id = CASE
        WHEN EXCLUDED.status = 'completed' THEN EXCLUDED.completed_span_id
        ELSE job_runs.completed_span_id
    END,
    failed_trace_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_trace_id
        ELSE job_runs.failed_trace_id
    END,
    failed_span_id = CASE
        WHEN EXCLUDED.status = 'failed' THEN EXCLUDED.failed_span_id
        ELSE job_runs.failed_span_id
    END`

type JobRunRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewJobRunRepository(db *sqlx.DB) *JobRunRepository {
	return &JobRunRepository{db: db, now: time.Now}
}

func (r *JobRunRepository) UpsertEvent(ctx context.Context, event jobscheduler.RunEvent) error {
	runID := strings.TrimSpace(event.RunID)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	jobName := strings.TrimSpace(event.JobName)
	if jobName == "" {
		jobName = "unknown"
	}

	occurredAt := event.OccurredAt.UTC()
	if event.OccurredAt.IsZero() {
		occurredAt = r.now().UTC()
	}

	payloadJSON := "{}"
	if len(event.Payload) > 0 {
		raw, err := jsoniter.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal job run payload: %w", err)
		}
		payloadJSON = string(raw)
	}

	model := jobRunInsertModel{
		RunID:   runID,
		JobName: jobName,
		Payload: payloadJSON,
		Status:  string(event.Status),
	}

	switch event.Status {
	case jobscheduler.StatusStarted:
		model.StartedAt = &occurredAt
		model.StartedTraceID = optionalString(event.TraceID)
		model.StartedSpanID = optionalString(event.SpanID)
	case jobscheduler.StatusCompleted:
		model.CompletedAt = &occurredAt
		model.CompletedTraceID = optionalString(event.TraceID)
		model.CompletedSpanID = optionalString(event.SpanID)
	case jobscheduler.StatusFailed:
		model.FailedAt = &occurredAt
		model.FailedTraceID = optionalString(event.TraceID)
		model.FailedSpanID = optionalString(event.SpanID)
		model.LastError = optionalString(event.ErrorMessage)
	default:
		return fmt.Errorf("unknown job run status %q", event.Status)
	}

	query, args, err := qb.InsertModel(jobRunsTable, model, jobRunUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert job run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job run run_id=%s status=%s: %w", runID, event.Status, err)
	}
	return nil
}
