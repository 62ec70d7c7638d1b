package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/prediction-pool/internal/domain/competition"
	"github.com/riskibarqy/prediction-pool/internal/platform/resilience"
)

// CompetitionService reads the competition catalog behind a circuit breaker.
type CompetitionService struct {
	repo    competition.Repository
	breaker *resilience.CircuitBreaker
}

func NewCompetitionService(repo competition.Repository, breaker *resilience.CircuitBreaker) *CompetitionService {
	return &CompetitionService{repo: repo, breaker: breaker}
}

func (s *CompetitionService) Get(ctx context.Context, category, id string) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.Get")
	defer span.End()

	key := competition.Key{Category: strings.TrimSpace(category), ID: strings.TrimSpace(id)}
	if key.Category == "" || key.ID == "" {
		return competition.Competition{}, fmt.Errorf("%w: competition category and id are required", ErrInvalidInput)
	}

	var (
		item   competition.Competition
		exists bool
	)
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		item, exists, err = s.repo.Get(ctx, key)
		return err
	})
	if err != nil {
		return competition.Competition{}, fmt.Errorf("%w: get competition %s: %w", ErrDependencyUnavailable, key, err)
	}
	if !exists {
		return competition.Competition{}, fmt.Errorf("%w: competition %s", ErrNotFound, key)
	}
	return item, nil
}

func (s *CompetitionService) ListByCategory(ctx context.Context, category string) ([]competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.ListByCategory")
	defer span.End()

	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	}

	var items []competition.Competition
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		items, err = s.repo.ListByCategory(ctx, category)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list competitions for %s: %w", ErrDependencyUnavailable, category, err)
	}
	return items, nil
}

// Upsert stores a catalog entry; used by seeding and admin imports.
func (s *CompetitionService) Upsert(ctx context.Context, item competition.Competition) error {
	item.Category = strings.TrimSpace(item.Category)
	item.ID = strings.TrimSpace(item.ID)
	if item.Category == "" || item.ID == "" {
		return fmt.Errorf("%w: competition category and id are required", ErrInvalidInput)
	}
	if len(item.Teams) == 0 {
		return fmt.Errorf("%w: competition %s has no teams", ErrInvalidInput, item.Key())
	}
	if err := s.repo.Upsert(ctx, item); err != nil {
		return fmt.Errorf("upsert competition %s: %w", item.Key(), err)
	}
	return nil
}
