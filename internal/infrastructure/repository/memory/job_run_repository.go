package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/prediction-pool/internal/domain/jobscheduler"
)

// JobRunRepository keeps the latest event per run.
type JobRunRepository struct {
	mu    sync.RWMutex
	items map[string]jobscheduler.RunEvent
}

func NewJobRunRepository() *JobRunRepository {
	return &JobRunRepository{items: make(map[string]jobscheduler.RunEvent)}
}

func (r *JobRunRepository) UpsertEvent(_ context.Context, event jobscheduler.RunEvent) error {
	runID := strings.TrimSpace(event.RunID)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[runID] = event
	return nil
}

func (r *JobRunRepository) Latest(runID string) (jobscheduler.RunEvent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.items[runID]
	return event, ok
}
