package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-pool/internal/domain/competition"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

type CompetitionRepository struct {
	mu    sync.RWMutex
	items map[competition.Key]competition.Competition
}

func NewCompetitionRepository(seed []competition.Competition) *CompetitionRepository {
	items := make(map[competition.Key]competition.Competition, len(seed))
	for _, c := range seed {
		items[c.Key()] = cloneCompetition(c)
	}
	return &CompetitionRepository{items: items}
}

func (r *CompetitionRepository) Get(_ context.Context, key competition.Key) (competition.Competition, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[key]
	if !ok {
		return competition.Competition{}, false, nil
	}
	return cloneCompetition(c), true, nil
}

func (r *CompetitionRepository) ListByCategory(_ context.Context, category string) ([]competition.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]competition.Competition, 0)
	for key, c := range r.items {
		if key.Category == category {
			out = append(out, cloneCompetition(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CompetitionRepository) Upsert(_ context.Context, c competition.Competition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[c.Key()] = cloneCompetition(c)
	return nil
}

func cloneCompetition(c competition.Competition) competition.Competition {
	copied := c
	copied.Teams = append([]tournament.Team(nil), c.Teams...)
	if c.StartsAt != nil {
		startsAt := *c.StartsAt
		copied.StartsAt = &startsAt
	}
	return copied
}
