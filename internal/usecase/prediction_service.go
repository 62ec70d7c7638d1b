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
	"go.opentelemetry.io/otel/attribute"
)

type SubmitPredictionInput struct {
	GroupID       string `validate:"required"`
	MatchID       string `validate:"required"`
	Score1        int    `validate:"min=0"`
	Score2        int    `validate:"min=0"`
	ExtraTime     bool
	Penalties     bool
	PenaltyScore1 *int `validate:"omitempty,min=0"`
	PenaltyScore2 *int `validate:"omitempty,min=0"`
}

type PredictionService struct {
	groupRepo      pool.Repository
	predictionRepo prediction.Repository
	now            func() time.Time
}

func NewPredictionService(groupRepo pool.Repository, predictionRepo prediction.Repository) *PredictionService {
	return &PredictionService{
		groupRepo:      groupRepo,
		predictionRepo: predictionRepo,
		now:            time.Now,
	}
}

// Submit creates or replaces the caller's pick for a match that has not been
// played yet.
func (s *PredictionService) Submit(ctx context.Context, caller Principal, input SubmitPredictionInput) (prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.Submit",
		attribute.String("group.id", input.GroupID),
		attribute.String("match.id", input.MatchID),
	)
	defer span.End()

	caller = caller.normalized()
	input.GroupID = strings.TrimSpace(input.GroupID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	if caller.UserID == "" {
		return prediction.Prediction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := validateInput(ctx, input); err != nil {
		return prediction.Prediction{}, err
	}

	if _, err := s.memberGroup(ctx, caller, input.GroupID); err != nil {
		return prediction.Prediction{}, err
	}

	now := s.now().UTC()
	pick := prediction.Prediction{
		GroupID:       input.GroupID,
		UserID:        caller.UserID,
		MatchID:       input.MatchID,
		Score1:        input.Score1,
		Score2:        input.Score2,
		ExtraTime:     input.ExtraTime,
		Penalties:     input.Penalties,
		PenaltyScore1: input.PenaltyScore1,
		PenaltyScore2: input.PenaltyScore2,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// The match state is checked again under the group lock so a result
	// recorded after the read above cannot let a late pick through.
	err := s.groupRepo.Hold(ctx, input.GroupID, func(group pool.Group) error {
		if !group.IsMember(caller.UserID) {
			return fmt.Errorf("%w: you are not a member of this group", ErrPermissionDenied)
		}
		if group.Structure == nil {
			return fmt.Errorf("%w: group %s has no tournament", ErrConfiguration, input.GroupID)
		}
		match, _, _, ok := group.Structure.FindMatch(input.MatchID)
		if !ok {
			return classify("submit prediction", fmt.Errorf("%w: %s", tournament.ErrMatchNotFound, input.MatchID))
		}
		if err := prediction.ValidateSubmission(pick, match); err != nil {
			return classify("submit prediction", err)
		}

		existing, exists, err := s.predictionRepo.Get(ctx, pick.GroupID, pick.UserID, pick.MatchID)
		if err != nil {
			return fmt.Errorf("get existing prediction: %w", err)
		}
		if exists {
			pick.CreatedAt = existing.CreatedAt
		}
		if err := s.predictionRepo.Upsert(ctx, pick); err != nil {
			return fmt.Errorf("upsert prediction: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pool.ErrGroupNotFound) {
			return prediction.Prediction{}, fmt.Errorf("%w: group %s", ErrNotFound, input.GroupID)
		}
		return prediction.Prediction{}, err
	}
	return pick, nil
}

func (s *PredictionService) ListMine(ctx context.Context, caller Principal, groupID string) ([]prediction.Prediction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.ListMine", attribute.String("group.id", groupID))
	defer span.End()

	caller = caller.normalized()
	groupID = strings.TrimSpace(groupID)
	if caller.UserID == "" || groupID == "" {
		return nil, fmt.Errorf("%w: user id and group id are required", ErrInvalidInput)
	}
	if _, err := s.memberGroup(ctx, caller, groupID); err != nil {
		return nil, err
	}

	items, err := s.predictionRepo.ListByGroupUser(ctx, groupID, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return items, nil
}

func (s *PredictionService) memberGroup(ctx context.Context, caller Principal, groupID string) (pool.Group, error) {
	group, exists, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return pool.Group{}, fmt.Errorf("get group: %w", err)
	}
	if !exists {
		return pool.Group{}, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}
	if !group.IsMember(caller.UserID) {
		return pool.Group{}, fmt.Errorf("%w: you are not a member of this group", ErrPermissionDenied)
	}
	if group.Structure == nil {
		return pool.Group{}, fmt.Errorf("%w: group %s has no tournament", ErrConfiguration, groupID)
	}
	return group, nil
}
