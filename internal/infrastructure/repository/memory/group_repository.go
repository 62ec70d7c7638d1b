package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-pool/internal/domain/pool"
)

type GroupRepository struct {
	mu    sync.RWMutex
	items map[string]pool.Group
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{items: make(map[string]pool.Group)}
}

func (r *GroupRepository) Create(_ context.Context, g pool.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[g.ID]; exists {
		return fmt.Errorf("group %s already exists", g.ID)
	}
	for _, existing := range r.items {
		if existing.InviteCode == g.InviteCode {
			return fmt.Errorf("invite code %s already in use", g.InviteCode)
		}
	}
	stored := g.Clone()
	stored.Version = 1
	r.items[g.ID] = stored
	return nil
}

func (r *GroupRepository) GetByID(_ context.Context, groupID string) (pool.Group, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.items[groupID]
	if !ok {
		return pool.Group{}, false, nil
	}
	return g.Clone(), true, nil
}

func (r *GroupRepository) GetByInviteCode(_ context.Context, inviteCode string) (pool.Group, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.items {
		if g.InviteCode == inviteCode {
			return g.Clone(), true, nil
		}
	}
	return pool.Group{}, false, nil
}

func (r *GroupRepository) ListIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.items))
	for id := range r.items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (r *GroupRepository) ListByMember(_ context.Context, userID string) ([]pool.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pool.Group, 0)
	for _, g := range r.items {
		if g.IsMember(userID) {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Update runs fn on a private copy under the write lock; the stored group is
// replaced only when fn succeeds.
func (r *GroupRepository) Update(_ context.Context, groupID string, fn pool.MutateFunc) (pool.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[groupID]
	if !ok {
		return pool.Group{}, fmt.Errorf("%w: %s", pool.ErrGroupNotFound, groupID)
	}

	work := current.Clone()
	if err := fn(&work); err != nil {
		return pool.Group{}, err
	}
	work.ID = current.ID
	work.Version = current.Version + 1
	r.items[groupID] = work
	return work.Clone(), nil
}

// Hold keeps the write lock for the duration of fn so no Update interleaves.
func (r *GroupRepository) Hold(_ context.Context, groupID string, fn func(g pool.Group) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[groupID]
	if !ok {
		return fmt.Errorf("%w: %s", pool.ErrGroupNotFound, groupID)
	}
	return fn(current.Clone())
}
