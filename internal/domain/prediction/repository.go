package prediction

import "context"

type Repository interface {
	Upsert(ctx context.Context, p Prediction) error
	Get(ctx context.Context, groupID, userID, matchID string) (Prediction, bool, error)
	ListByGroup(ctx context.Context, groupID string) ([]Prediction, error)
	ListByGroupUser(ctx context.Context, groupID, userID string) ([]Prediction, error)
	UpdatePoints(ctx context.Context, groupID string, updates []PointsUpdate) error
	DeleteByGroupUser(ctx context.Context, groupID, userID string) error
}
