package jobscheduler

import "time"

type RunStatus string

const (
	StatusStarted   RunStatus = "started"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// RunEvent is one state change of a scheduled job run. Events of the same run
// share RunID and are folded into a single row by the repository.
type RunEvent struct {
	RunID        string
	JobName      string
	Status       RunStatus
	Payload      map[string]any
	ErrorMessage string
	OccurredAt   time.Time
	TraceID      string
	SpanID       string
}
