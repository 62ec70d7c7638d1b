package postgres

import (
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/prediction"
)

const predictionsTable = "predictions"

var predictionColumns = []string{
	"group_public_id",
	"user_id",
	"match_id",
	"score1",
	"score2",
	"extra_time",
	"penalties",
	"penalty_score1",
	"penalty_score2",
	"points",
	"created_at",
	"updated_at",
}

type predictionTableModel struct {
	GroupID       string    `db:"group_public_id"`
	UserID        string    `db:"user_id"`
	MatchID       string    `db:"match_id"`
	Score1        int       `db:"score1"`
	Score2        int       `db:"score2"`
	ExtraTime     bool      `db:"extra_time"`
	Penalties     bool      `db:"penalties"`
	PenaltyScore1 *int64    `db:"penalty_score1"`
	PenaltyScore2 *int64    `db:"penalty_score2"`
	Points        *int64    `db:"points"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type predictionInsertModel struct {
	GroupID       string    `db:"group_public_id"`
	UserID        string    `db:"user_id"`
	MatchID       string    `db:"match_id"`
	Score1        int       `db:"score1"`
	Score2        int       `db:"score2"`
	ExtraTime     bool      `db:"extra_time"`
	Penalties     bool      `db:"penalties"`
	PenaltyScore1 *int64    `db:"penalty_score1"`
	PenaltyScore2 *int64    `db:"penalty_score2"`
	Points        *int64    `db:"points"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func predictionInsertFromDomain(p prediction.Prediction) predictionInsertModel {
	return predictionInsertModel{
		GroupID:       p.GroupID,
		UserID:        p.UserID,
		MatchID:       p.MatchID,
		Score1:        p.Score1,
		Score2:        p.Score2,
		ExtraTime:     p.ExtraTime,
		Penalties:     p.Penalties,
		PenaltyScore1: nullableInt(p.PenaltyScore1),
		PenaltyScore2: nullableInt(p.PenaltyScore2),
		Points:        nullableInt(p.Points),
		CreatedAt:     p.CreatedAt.UTC(),
		UpdatedAt:     p.UpdatedAt.UTC(),
	}
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	return prediction.Prediction{
		GroupID:       row.GroupID,
		UserID:        row.UserID,
		MatchID:       row.MatchID,
		Score1:        row.Score1,
		Score2:        row.Score2,
		ExtraTime:     row.ExtraTime,
		Penalties:     row.Penalties,
		PenaltyScore1: intFromNullable(row.PenaltyScore1),
		PenaltyScore2: intFromNullable(row.PenaltyScore2),
		Points:        intFromNullable(row.Points),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func nullableInt(v *int) *int64 {
	if v == nil {
		return nil
	}
	out := int64(*v)
	return &out
}

func intFromNullable(v *int64) *int {
	if v == nil {
		return nil
	}
	out := int(*v)
	return &out
}
