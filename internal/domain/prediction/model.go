package prediction

import "time"

// Prediction is one member's guess for one match of a group's tournament.
type Prediction struct {
	GroupID       string
	UserID        string
	MatchID       string
	Score1        int
	Score2        int
	ExtraTime     bool
	Penalties     bool
	PenaltyScore1 *int
	PenaltyScore2 *int
	// Points stays nil until the match has an authoritative result.
	Points    *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PointsUpdate struct {
	UserID  string
	MatchID string
	Points  *int
}

type MemberTotal struct {
	UserID      string
	Points      int
	Rank        int
	Scored      int
	ExactScores int
}
