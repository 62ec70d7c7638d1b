package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-pool/internal/domain/prediction"
	qb "github.com/riskibarqy/prediction-pool/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Upsert(ctx context.Context, p prediction.Prediction) error {
	query, args, err := qb.InsertModel(predictionsTable, predictionInsertFromDomain(p), `ON CONFLICT (group_public_id, user_id, match_id)
DO UPDATE SET
    score1 = EXCLUDED.score1,
    score2 = EXCLUDED.score2,
    extra_time = EXCLUDED.extra_time,
    penalties = EXCLUDED.penalties,
    penalty_score1 = EXCLUDED.penalty_score1,
    penalty_score2 = EXCLUDED.penalty_score2,
    points = EXCLUDED.points,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert prediction query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert prediction group=%s user=%s match=%s: %w", p.GroupID, p.UserID, p.MatchID, err)
	}
	return nil
}

func (r *PredictionRepository) Get(ctx context.Context, groupID, userID, matchID string) (prediction.Prediction, bool, error) {
	query, args, err := qb.Select(predictionColumns...).
		From(predictionsTable).
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("user_id", userID),
			qb.Eq("match_id", matchID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return prediction.Prediction{}, false, fmt.Errorf("build get prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return prediction.Prediction{}, false, nil
		}
		return prediction.Prediction{}, false, fmt.Errorf("get prediction: %w", err)
	}
	return predictionFromRow(row), true, nil
}

func (r *PredictionRepository) ListByGroup(ctx context.Context, groupID string) ([]prediction.Prediction, error) {
	return r.list(ctx, qb.Eq("group_public_id", groupID))
}

func (r *PredictionRepository) ListByGroupUser(ctx context.Context, groupID, userID string) ([]prediction.Prediction, error) {
	return r.list(ctx, qb.Eq("group_public_id", groupID), qb.Eq("user_id", userID))
}

func (r *PredictionRepository) list(ctx context.Context, conds ...qb.Condition) ([]prediction.Prediction, error) {
	query, args, err := qb.Select(predictionColumns...).
		From(predictionsTable).
		Where(conds...).
		OrderBy("match_id ASC", "user_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list predictions query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out, nil
}

// UpdatePoints writes the whole batch in one transaction. Rows that no longer
// exist are skipped.
func (r *PredictionRepository) UpdatePoints(ctx context.Context, groupID string, updates []prediction.PointsUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx update prediction points: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, u := range updates {
		query, args, err := qb.Update(predictionsTable).
			Set("points", nullableInt(u.Points)).
			Where(
				qb.Eq("group_public_id", groupID),
				qb.Eq("user_id", u.UserID),
				qb.Eq("match_id", u.MatchID),
			).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update prediction points query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update prediction points user=%s match=%s: %w", u.UserID, u.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update prediction points: %w", err)
	}
	return nil
}

func (r *PredictionRepository) DeleteByGroupUser(ctx context.Context, groupID, userID string) error {
	query, args, err := qb.DeleteFrom(predictionsTable).
		Where(
			qb.Eq("group_public_id", groupID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete predictions query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete predictions group=%s user=%s: %w", groupID, userID, err)
	}
	return nil
}
