package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-pool/internal/domain/prediction"
)

type PredictionRepository struct {
	mu    sync.RWMutex
	items map[string]prediction.Prediction
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{items: make(map[string]prediction.Prediction)}
}

func (r *PredictionRepository) Upsert(_ context.Context, p prediction.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[predictionKey(p.GroupID, p.UserID, p.MatchID)] = clonePrediction(p)
	return nil
}

func (r *PredictionRepository) Get(_ context.Context, groupID, userID, matchID string) (prediction.Prediction, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[predictionKey(groupID, userID, matchID)]
	if !ok {
		return prediction.Prediction{}, false, nil
	}
	return clonePrediction(p), true, nil
}

func (r *PredictionRepository) ListByGroup(_ context.Context, groupID string) ([]prediction.Prediction, error) {
	return r.list(func(p prediction.Prediction) bool { return p.GroupID == groupID }), nil
}

func (r *PredictionRepository) ListByGroupUser(_ context.Context, groupID, userID string) ([]prediction.Prediction, error) {
	return r.list(func(p prediction.Prediction) bool { return p.GroupID == groupID && p.UserID == userID }), nil
}

func (r *PredictionRepository) UpdatePoints(_ context.Context, groupID string, updates []prediction.PointsUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range updates {
		key := predictionKey(groupID, u.UserID, u.MatchID)
		p, ok := r.items[key]
		if !ok {
			continue
		}
		p.Points = copyInt(u.Points)
		r.items[key] = p
	}
	return nil
}

func (r *PredictionRepository) DeleteByGroupUser(_ context.Context, groupID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, p := range r.items {
		if p.GroupID == groupID && p.UserID == userID {
			delete(r.items, key)
		}
	}
	return nil
}

func (r *PredictionRepository) list(keep func(prediction.Prediction) bool) []prediction.Prediction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]prediction.Prediction, 0)
	for _, p := range r.items {
		if keep(p) {
			out = append(out, clonePrediction(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchID != out[j].MatchID {
			return out[i].MatchID < out[j].MatchID
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func predictionKey(groupID, userID, matchID string) string {
	return groupID + "::" + userID + "::" + matchID
}

func clonePrediction(p prediction.Prediction) prediction.Prediction {
	copied := p
	copied.PenaltyScore1 = copyInt(p.PenaltyScore1)
	copied.PenaltyScore2 = copyInt(p.PenaltyScore2)
	copied.Points = copyInt(p.Points)
	return copied
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
