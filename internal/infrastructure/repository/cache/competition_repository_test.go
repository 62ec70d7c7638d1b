package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/competition"
	"github.com/riskibarqy/prediction-pool/internal/infrastructure/repository/memory"
)

type countingCompetitionRepo struct {
	competition.Repository
	gets  atomic.Int32
	lists atomic.Int32
	fail  error
}

func (r *countingCompetitionRepo) Get(ctx context.Context, key competition.Key) (competition.Competition, bool, error) {
	r.gets.Add(1)
	if r.fail != nil {
		return competition.Competition{}, false, r.fail
	}
	return r.Repository.Get(ctx, key)
}

func (r *countingCompetitionRepo) ListByCategory(ctx context.Context, category string) ([]competition.Competition, error) {
	r.lists.Add(1)
	return r.Repository.ListByCategory(ctx, category)
}

func worldCupKey() competition.Key {
	return competition.Key{Category: memory.CategoryFootball, ID: memory.CompetitionIDWorldCup26}
}

func TestCompetitionRepository_GetIsCachedAndCloned(t *testing.T) {
	t.Parallel()

	next := &countingCompetitionRepo{Repository: memory.NewCompetitionRepository(memory.SeedCompetitions())}
	repo := NewCompetitionRepository(next, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok, err := repo.Get(context.Background(), worldCupKey()); err != nil || !ok {
				t.Errorf("get: ok=%v err=%v", ok, err)
			}
		}()
	}
	wg.Wait()

	first, _, err := repo.Get(t.Context(), worldCupKey())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	first.Teams[0].Name = "changed"

	second, _, err := repo.Get(t.Context(), worldCupKey())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if second.Teams[0].Name == "changed" {
		t.Fatalf("cached value must not be shared with callers")
	}
	if got := next.gets.Load(); got != 1 {
		t.Fatalf("expected a single backend load, got %d", got)
	}
}

func TestCompetitionRepository_CachesMisses(t *testing.T) {
	t.Parallel()

	next := &countingCompetitionRepo{Repository: memory.NewCompetitionRepository(nil)}
	repo := NewCompetitionRepository(next, time.Minute)
	key := competition.Key{Category: "football", ID: "nope"}

	for i := 0; i < 2; i++ {
		if _, ok, err := repo.Get(t.Context(), key); err != nil || ok {
			t.Fatalf("expected cached miss, ok=%v err=%v", ok, err)
		}
	}
	if got := next.gets.Load(); got != 1 {
		t.Fatalf("miss must be cached too, got %d loads", got)
	}
}

func TestCompetitionRepository_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	next := &countingCompetitionRepo{Repository: memory.NewCompetitionRepository(memory.SeedCompetitions()), fail: errors.New("catalog offline")}
	repo := NewCompetitionRepository(next, time.Minute)

	if _, _, err := repo.Get(t.Context(), worldCupKey()); err == nil {
		t.Fatalf("expected backend error")
	}
	next.fail = nil
	if _, ok, err := repo.Get(t.Context(), worldCupKey()); err != nil || !ok {
		t.Fatalf("expected recovery after error, ok=%v err=%v", ok, err)
	}
	if got := next.gets.Load(); got != 2 {
		t.Fatalf("expected two backend loads, got %d", got)
	}
}

func TestCompetitionRepository_UpsertInvalidates(t *testing.T) {
	t.Parallel()

	next := &countingCompetitionRepo{Repository: memory.NewCompetitionRepository(memory.SeedCompetitions())}
	repo := NewCompetitionRepository(next, time.Minute)
	ctx := t.Context()

	before, err := repo.ListByCategory(ctx, memory.CategoryFootball)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	current, _, err := repo.Get(ctx, worldCupKey())
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	current.Name = "FIFA World Cup 26"
	if err := repo.Upsert(ctx, current); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	after, _, err := repo.Get(ctx, worldCupKey())
	if err != nil {
		t.Fatalf("get after upsert: %v", err)
	}
	if after.Name != "FIFA World Cup 26" {
		t.Fatalf("upsert must invalidate the key entry, got %q", after.Name)
	}
	listed, err := repo.ListByCategory(ctx, memory.CategoryFootball)
	if err != nil {
		t.Fatalf("list after upsert: %v", err)
	}
	if len(listed) != len(before) || next.lists.Load() != 2 {
		t.Fatalf("upsert must invalidate the category list: len=%d loads=%d", len(listed), next.lists.Load())
	}
}
