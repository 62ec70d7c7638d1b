package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/jobscheduler"
	idgen "github.com/riskibarqy/prediction-pool/internal/platform/id"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
)

const (
	JobRecomputeScores = "recompute-scores"
	JobCleanupInvites  = "cleanup-invites"
)

type JobSchedulerConfig struct {
	RecomputeSchedule string
	CleanupSchedule   string
	JobTimeout        time.Duration
}

type scoreRecomputer interface {
	RecomputeAll(ctx context.Context) (RecomputeReport, error)
}

type inviteExpirer interface {
	ExpireInvites(ctx context.Context) (int, error)
}

type jobFunc func(ctx context.Context) (map[string]any, error)

// JobScheduler runs the periodic maintenance jobs on cron schedules and
// records every run.
type JobScheduler struct {
	cron    *cron.Cron
	jobs    map[string]jobFunc
	timeout time.Duration
	runRepo jobscheduler.Repository
	idGen   idgen.Generator
	logger  *logging.Logger
	now     func() time.Time

	mu      sync.Mutex
	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewJobScheduler(
	cfg JobSchedulerConfig,
	scorer scoreRecomputer,
	expirer inviteExpirer,
	runRepo jobscheduler.Repository,
	idGen idgen.Generator,
	logger *logging.Logger,
) (*JobScheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("jobs")
	cronLog := cronLogger{logger: logger}

	s := &JobScheduler{
		cron: cron.New(cron.WithLogger(cronLog), cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
		jobs:    make(map[string]jobFunc, 2),
		timeout: cfg.JobTimeout,
		runRepo: runRepo,
		idGen:   idGen,
		logger:  logger,
		now:     time.Now,
		baseCtx: context.Background(),
	}

	if err := s.register(JobRecomputeScores, cfg.RecomputeSchedule, func(ctx context.Context) (map[string]any, error) {
		report, err := scorer.RecomputeAll(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"groups":        report.Groups,
			"succeeded":     report.Succeeded,
			"failed_groups": report.FailedGroups,
			"updated":       report.Updated,
		}, nil
	}); err != nil {
		return nil, err
	}
	if err := s.register(JobCleanupInvites, cfg.CleanupSchedule, func(ctx context.Context) (map[string]any, error) {
		removed, err := expirer.ExpireInvites(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"expired_invites": removed}, nil
	}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JobScheduler) register(name, schedule string, fn jobFunc) error {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return fmt.Errorf("%w: schedule for job %s is required", ErrConfiguration, name)
	}
	if _, err := s.cron.AddFunc(schedule, func() { _ = s.RunJob(s.rootContext(), name) }); err != nil {
		return fmt.Errorf("%w: schedule %q for job %s: %v", ErrConfiguration, schedule, name, err)
	}
	s.jobs[name] = fn
	return nil
}

func (s *JobScheduler) JobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start begins firing jobs. Runs triggered by the schedule inherit ctx.
func (s *JobScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.InfoContext(ctx, "job scheduler started", "jobs", s.JobNames())
}

// Stop prevents new runs and waits for running ones until ctx expires.
func (s *JobScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	s.mu.Lock()
	if s.cancel != nil {
		defer s.cancel()
	}
	s.mu.Unlock()

	select {
	case <-done:
		s.logger.Info("job scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
}

func (s *JobScheduler) rootContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

// RunJob executes a job immediately.
func (s *JobScheduler) RunJob(ctx context.Context, name string) error {
	fn, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: unknown job %q", ErrNotFound, name)
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.JobScheduler."+name)
	var err error
	defer func() { endSpan(span, err) }()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	runID, idErr := s.idGen.NewID()
	if idErr != nil {
		s.logger.WarnContext(ctx, "generate job run id failed", "job", name, "error", idErr)
	}

	start := s.now()
	s.recordEvent(ctx, jobscheduler.RunEvent{RunID: runID, JobName: name, Status: jobscheduler.StatusStarted})

	var payload map[string]any
	payload, err = fn(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "job failed", "job", name, "run_id", runID, "error", err)
		s.recordEvent(ctx, jobscheduler.RunEvent{
			RunID:        runID,
			JobName:      name,
			Status:       jobscheduler.StatusFailed,
			ErrorMessage: err.Error(),
		})
		return fmt.Errorf("run job %s: %w", name, err)
	}

	s.logger.InfoContext(ctx, "job completed", "job", name, "run_id", runID,
		"duration_ms", s.now().Sub(start).Milliseconds())
	s.recordEvent(ctx, jobscheduler.RunEvent{
		RunID:   runID,
		JobName: name,
		Status:  jobscheduler.StatusCompleted,
		Payload: payload,
	})
	return nil
}

func (s *JobScheduler) recordEvent(ctx context.Context, event jobscheduler.RunEvent) {
	if s.runRepo == nil || strings.TrimSpace(event.RunID) == "" {
		return
	}
	event.TraceID, event.SpanID = traceMetaFromContext(ctx)
	event.OccurredAt = s.now().UTC()
	if err := s.runRepo.UpsertEvent(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WarnContext(ctx, "record job run event failed",
			"run_id", event.RunID,
			"status", event.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}

// cronLogger adapts the process logger to cron.Logger.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
