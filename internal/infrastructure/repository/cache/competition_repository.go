package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/competition"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
	basecache "github.com/riskibarqy/prediction-pool/internal/platform/cache"
)

type cachedCompetition struct {
	value  competition.Competition
	exists bool
}

// CompetitionRepository is a read-through cache in front of the catalog.
// Concurrent misses for one key share a single load.
type CompetitionRepository struct {
	next       competition.Repository
	byKey      *basecache.Store[cachedCompetition]
	byCategory *basecache.Store[[]competition.Competition]
}

func NewCompetitionRepository(next competition.Repository, ttl time.Duration) *CompetitionRepository {
	return &CompetitionRepository{
		next:       next,
		byKey:      basecache.NewStore[cachedCompetition](ttl),
		byCategory: basecache.NewStore[[]competition.Competition](ttl),
	}
}

func (r *CompetitionRepository) Get(ctx context.Context, key competition.Key) (competition.Competition, bool, error) {
	cached, err := r.byKey.GetOrLoad(ctx, "competition:key:"+key.String(), func(ctx context.Context) (cachedCompetition, error) {
		item, exists, err := r.next.Get(ctx, key)
		if err != nil {
			return cachedCompetition{}, err
		}
		return cachedCompetition{value: cloneCompetition(item), exists: exists}, nil
	})
	if err != nil {
		return competition.Competition{}, false, err
	}
	return cloneCompetition(cached.value), cached.exists, nil
}

func (r *CompetitionRepository) ListByCategory(ctx context.Context, category string) ([]competition.Competition, error) {
	items, err := r.byCategory.GetOrLoad(ctx, "competition:category:"+category, func(ctx context.Context) ([]competition.Competition, error) {
		return r.next.ListByCategory(ctx, category)
	})
	if err != nil {
		return nil, err
	}

	out := make([]competition.Competition, 0, len(items))
	for _, item := range items {
		out = append(out, cloneCompetition(item))
	}
	return out, nil
}

func (r *CompetitionRepository) Upsert(ctx context.Context, c competition.Competition) error {
	if err := r.next.Upsert(ctx, c); err != nil {
		return err
	}
	r.byKey.Delete(ctx, "competition:key:"+c.Key().String())
	r.byCategory.Delete(ctx, "competition:category:"+c.Category)
	return nil
}

func cloneCompetition(c competition.Competition) competition.Competition {
	out := c
	out.Teams = append([]tournament.Team(nil), c.Teams...)
	if c.StartsAt != nil {
		startsAt := *c.StartsAt
		out.StartsAt = &startsAt
	}
	return out
}
