package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-pool/internal/domain/pool"
	"github.com/riskibarqy/prediction-pool/internal/domain/prediction"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const defaultRecomputeWorkers = 4

type ScoringService struct {
	groupRepo      pool.Repository
	predictionRepo prediction.Repository
	rules          prediction.Rules
	maxWorkers     int
	logger         *logging.Logger
	now            func() time.Time
}

// RecomputeReport summarises one full recompute run.
type RecomputeReport struct {
	Groups       int
	Succeeded    int
	FailedGroups []string
	Updated      int
	DurationMs   int64
}

func NewScoringService(
	groupRepo pool.Repository,
	predictionRepo prediction.Repository,
	rules prediction.Rules,
	maxWorkers int,
	logger *logging.Logger,
) *ScoringService {
	if maxWorkers <= 0 {
		maxWorkers = defaultRecomputeWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		groupRepo:      groupRepo,
		predictionRepo: predictionRepo,
		rules:          rules,
		maxWorkers:     maxWorkers,
		logger:         logger.Named("scoring"),
		now:            time.Now,
	}
}

// CalculateScores stores fresh points on every prediction of the group and
// returns the ranked member totals.
func (s *ScoringService) CalculateScores(ctx context.Context, groupID string) ([]prediction.MemberTotal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.CalculateScores", attribute.String("group.id", groupID))
	defer span.End()

	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	group, exists, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}

	totals, _, err := s.calculate(ctx, group)
	return totals, err
}

func (s *ScoringService) calculate(ctx context.Context, group pool.Group) ([]prediction.MemberTotal, int, error) {
	preds, err := s.predictionRepo.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("list predictions for group=%s: %w", group.ID, err)
	}

	updates := prediction.Evaluate(preds, group.Structure, s.rules)
	if len(updates) > 0 {
		if err := s.predictionRepo.UpdatePoints(ctx, group.ID, updates); err != nil {
			return nil, 0, fmt.Errorf("update points for group=%s: %w", group.ID, err)
		}
	}

	return prediction.Tally(memberIDs(group), preds, group.Structure), len(updates), nil
}

// RecomputeAll rescans every group. It is idempotent; a failing group is
// logged and the run continues.
func (s *ScoringService) RecomputeAll(ctx context.Context) (RecomputeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.RecomputeAll")
	defer span.End()

	start := s.now()
	groupIDs, err := s.groupRepo.ListIDs(ctx)
	if err != nil {
		return RecomputeReport{}, fmt.Errorf("list group ids: %w", err)
	}
	report := RecomputeReport{Groups: len(groupIDs)}
	if len(groupIDs) == 0 {
		return report, nil
	}

	workers, err := ants.NewPool(min(s.maxWorkers, len(groupIDs)))
	if err != nil {
		return RecomputeReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workers.Release()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, groupID := range groupIDs {
		wg.Add(1)
		if err := workers.Submit(func() {
			defer wg.Done()

			updated, err := s.recomputeGroup(ctx, groupID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.FailedGroups = append(report.FailedGroups, groupID)
				s.logger.WarnContext(ctx, "recompute group failed", "group_id", groupID, "error", err)
				return
			}
			report.Succeeded++
			report.Updated += updated
		}); err != nil {
			wg.Done()
			return RecomputeReport{}, fmt.Errorf("submit recompute task: %w", err)
		}
	}
	wg.Wait()

	sort.Strings(report.FailedGroups)
	report.DurationMs = s.now().Sub(start).Milliseconds()
	s.logger.InfoContext(ctx, "recompute finished",
		"groups", report.Groups,
		"succeeded", report.Succeeded,
		"failed", len(report.FailedGroups),
		"updated", report.Updated,
		"duration_ms", report.DurationMs,
	)
	return report, nil
}

func (s *ScoringService) recomputeGroup(ctx context.Context, groupID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	group, exists, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return 0, fmt.Errorf("get group: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	_, updated, err := s.calculate(ctx, group)
	return updated, err
}

// Leaderboard ranks the members of a group from the current results without
// writing anything.
func (s *ScoringService) Leaderboard(ctx context.Context, caller Principal, groupID string) ([]prediction.MemberTotal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Leaderboard", attribute.String("group.id", groupID))
	defer span.End()

	caller = caller.normalized()
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}

	var (
		group  pool.Group
		exists bool
		preds  []prediction.Prediction
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		group, exists, err = s.groupRepo.GetByID(gCtx, groupID)
		if err != nil {
			return fmt.Errorf("get group: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		preds, err = s.predictionRepo.ListByGroup(gCtx, groupID)
		if err != nil {
			return fmt.Errorf("list predictions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !exists {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	if !caller.IsAdmin && !group.IsMember(caller.UserID) {
		return nil, fmt.Errorf("%w: you are not a member of this group", ErrPermissionDenied)
	}

	prediction.Evaluate(preds, group.Structure, s.rules)
	return prediction.Tally(memberIDs(group), preds, group.Structure), nil
}

func memberIDs(group pool.Group) []string {
	out := make([]string, 0, len(group.Members))
	for _, m := range group.Members {
		out = append(out, m.UserID)
	}
	return out
}
