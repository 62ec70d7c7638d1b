package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/pool"
	"github.com/riskibarqy/prediction-pool/internal/domain/prediction"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type RecordResultInput struct {
	GroupID       string `validate:"required"`
	MatchID       string `validate:"required"`
	Score1        int    `validate:"min=0"`
	Score2        int    `validate:"min=0"`
	ExtraTime     bool
	Penalties     bool
	PenaltyScore1 *int `validate:"omitempty,min=0"`
	PenaltyScore2 *int `validate:"omitempty,min=0"`
}

type scoreCalculator interface {
	CalculateScores(ctx context.Context, groupID string) ([]prediction.MemberTotal, error)
}

// ResultService applies authoritative results to a group's tournament. Only
// admins may write results.
type ResultService struct {
	groupRepo pool.Repository
	scorer    scoreCalculator
	logger    *logging.Logger
	now       func() time.Time
}

func NewResultService(groupRepo pool.Repository, scorer scoreCalculator, logger *logging.Logger) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultService{
		groupRepo: groupRepo,
		scorer:    scorer,
		logger:    logger.Named("result"),
		now:       time.Now,
	}
}

func (s *ResultService) RecordResult(ctx context.Context, caller Principal, input RecordResultInput) (pool.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.RecordResult",
		attribute.String("group.id", input.GroupID),
		attribute.String("match.id", input.MatchID),
	)
	var err error
	defer func() { endSpan(span, err) }()

	input.GroupID = strings.TrimSpace(input.GroupID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	if !caller.IsAdmin {
		err = fmt.Errorf("%w: only admins can record results", ErrPermissionDenied)
		return pool.Group{}, err
	}
	if err = validateInput(ctx, input); err != nil {
		return pool.Group{}, err
	}

	result := tournament.Result{
		Score1:        input.Score1,
		Score2:        input.Score2,
		ExtraTime:     input.ExtraTime,
		Penalties:     input.Penalties,
		PenaltyScore1: input.PenaltyScore1,
		PenaltyScore2: input.PenaltyScore2,
	}
	var group pool.Group
	group, err = s.mutateStructure(ctx, "record result", input.GroupID, func(st *tournament.Structure) error {
		return st.RecordResult(input.MatchID, result)
	})
	if err != nil {
		return pool.Group{}, err
	}

	s.logger.InfoContext(ctx, "result recorded", "group_id", input.GroupID, "match_id", input.MatchID,
		"score", fmt.Sprintf("%d-%d", input.Score1, input.Score2))
	s.rescore(ctx, input.GroupID)
	return group, nil
}

// ClearResult reverts a match to unplayed, undoing standings and advancement.
func (s *ResultService) ClearResult(ctx context.Context, caller Principal, groupID, matchID string) (pool.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.ClearResult",
		attribute.String("group.id", groupID),
		attribute.String("match.id", matchID),
	)
	var err error
	defer func() { endSpan(span, err) }()

	groupID = strings.TrimSpace(groupID)
	matchID = strings.TrimSpace(matchID)
	if !caller.IsAdmin {
		err = fmt.Errorf("%w: only admins can clear results", ErrPermissionDenied)
		return pool.Group{}, err
	}
	if groupID == "" || matchID == "" {
		err = fmt.Errorf("%w: group id and match id are required", ErrInvalidInput)
		return pool.Group{}, err
	}

	var group pool.Group
	group, err = s.mutateStructure(ctx, "clear result", groupID, func(st *tournament.Structure) error {
		return st.ClearResult(matchID)
	})
	if err != nil {
		return pool.Group{}, err
	}

	s.logger.InfoContext(ctx, "result cleared", "group_id", groupID, "match_id", matchID)
	s.rescore(ctx, groupID)
	return group, nil
}

// SetMatchday stores a matchday given either as a number or as a date.
func (s *ResultService) SetMatchday(ctx context.Context, caller Principal, groupID, matchID, raw string) (pool.Group, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.SetMatchday",
		attribute.String("group.id", groupID),
		attribute.String("match.id", matchID),
	)
	var err error
	defer func() { endSpan(span, err) }()

	groupID = strings.TrimSpace(groupID)
	matchID = strings.TrimSpace(matchID)
	if !caller.IsAdmin {
		err = fmt.Errorf("%w: only admins can schedule matches", ErrPermissionDenied)
		return pool.Group{}, err
	}
	if groupID == "" || matchID == "" {
		err = fmt.Errorf("%w: group id and match id are required", ErrInvalidInput)
		return pool.Group{}, err
	}
	var value tournament.MatchdayValue
	if value, err = tournament.ParseMatchdayText(raw); err != nil {
		err = classify("set matchday", err)
		return pool.Group{}, err
	}

	var group pool.Group
	group, err = s.mutateStructure(ctx, "set matchday", groupID, func(st *tournament.Structure) error {
		m, _, _, ok := st.FindMatch(matchID)
		if !ok {
			return fmt.Errorf("%w: %s", tournament.ErrMatchNotFound, matchID)
		}
		value.Apply(m)
		return nil
	})
	if err != nil {
		return pool.Group{}, err
	}
	return group, nil
}

func (s *ResultService) mutateStructure(ctx context.Context, op, groupID string, fn func(st *tournament.Structure) error) (pool.Group, error) {
	group, err := s.groupRepo.Update(ctx, groupID, func(g *pool.Group) error {
		if g.Structure == nil {
			return fmt.Errorf("%w: group %s has no tournament", ErrConfiguration, groupID)
		}
		if err := fn(g.Structure); err != nil {
			return err
		}
		g.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, pool.ErrGroupNotFound) {
			return pool.Group{}, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
		}
		return pool.Group{}, classify(op, err)
	}
	return group, nil
}

// rescore is best effort; the periodic recompute repairs any miss.
func (s *ResultService) rescore(ctx context.Context, groupID string) {
	if s.scorer == nil {
		return
	}
	if _, err := s.scorer.CalculateScores(ctx, groupID); err != nil {
		s.logger.WarnContext(ctx, "rescore after result change failed", "group_id", groupID, "error", err)
	}
}
