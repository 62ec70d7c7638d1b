package competition

import "context"

type Repository interface {
	Get(ctx context.Context, key Key) (Competition, bool, error)
	ListByCategory(ctx context.Context, category string) ([]Competition, error)
	Upsert(ctx context.Context, c Competition) error
}
