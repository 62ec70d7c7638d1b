package pool

import "context"

// MutateFunc edits a loaded group in place. Returning an error aborts the
// update and nothing is persisted.
type MutateFunc func(g *Group) error

type Repository interface {
	Create(ctx context.Context, g Group) error
	GetByID(ctx context.Context, groupID string) (Group, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (Group, bool, error)
	ListIDs(ctx context.Context) ([]string, error)
	ListByMember(ctx context.Context, userID string) ([]Group, error)
	// Update loads the whole aggregate, applies fn and writes it back as one
	// unit with a bumped version. It returns the persisted state.
	Update(ctx context.Context, groupID string, fn MutateFunc) (Group, error)
	// Hold runs fn against the current group while updates to it are blocked.
	// Writes fn makes to other stores are ordered before any later Update.
	Hold(ctx context.Context, groupID string, fn func(g Group) error) error
}
