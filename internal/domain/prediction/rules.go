package prediction

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

var (
	ErrAlreadyPlayed = errors.New("match already played")
	ErrInvalidPick   = errors.New("invalid prediction")
)

// Rules stores the point values of the single scoring rule set.
type Rules struct {
	ExactScore        int
	CorrectOutcome    int
	ExtraTimeBonus    int
	PenaltiesBonus    int
	PenaltyScoreBonus int
}

func DefaultRules() Rules {
	return Rules{
		ExactScore:        5,
		CorrectOutcome:    3,
		ExtraTimeBonus:    1,
		PenaltiesBonus:    2,
		PenaltyScoreBonus: 3,
	}
}

// Outcome is the authoritative result a prediction is scored against.
type Outcome struct {
	Score1        int
	Score2        int
	Knockout      bool
	ExtraTime     bool
	Penalties     bool
	PenaltyScore1 *int
	PenaltyScore2 *int
}

// OutcomeOf returns false while the match has no result.
func OutcomeOf(m *tournament.Match) (Outcome, bool) {
	if m == nil || !m.IsPlayed || m.Score1 == nil || m.Score2 == nil {
		return Outcome{}, false
	}
	return Outcome{
		Score1:        *m.Score1,
		Score2:        *m.Score2,
		Knockout:      !m.IsGroupMatch(),
		ExtraTime:     m.ExtraTime,
		Penalties:     m.Penalties,
		PenaltyScore1: m.PenaltyScore1,
		PenaltyScore2: m.PenaltyScore2,
	}, true
}

func Score(p Prediction, actual Outcome, rules Rules) int {
	points := 0
	switch {
	case p.Score1 == actual.Score1 && p.Score2 == actual.Score2:
		points = rules.ExactScore
	case sign(p.Score1-p.Score2) == sign(actual.Score1-actual.Score2):
		points = rules.CorrectOutcome
	}

	if !actual.Knockout {
		return points
	}
	if p.ExtraTime && actual.ExtraTime {
		points += rules.ExtraTimeBonus
	}
	if p.Penalties && actual.Penalties {
		points += rules.PenaltiesBonus
		if samePenaltyScore(p, actual) {
			points += rules.PenaltyScoreBonus
		}
	}
	return points
}

func samePenaltyScore(p Prediction, actual Outcome) bool {
	if p.PenaltyScore1 == nil || p.PenaltyScore2 == nil || actual.PenaltyScore1 == nil || actual.PenaltyScore2 == nil {
		return false
	}
	return *p.PenaltyScore1 == *actual.PenaltyScore1 && *p.PenaltyScore2 == *actual.PenaltyScore2
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// ValidateSubmission checks a pick against the current state of its match.
// Predictions lock when the result is recorded.
func ValidateSubmission(p Prediction, m *tournament.Match) error {
	if m == nil {
		return fmt.Errorf("%w: match is required", ErrInvalidPick)
	}
	if m.IsPlayed {
		return fmt.Errorf("%w: %s", ErrAlreadyPlayed, m.ID)
	}
	if m.Status == tournament.MatchStatusSkipped {
		return fmt.Errorf("%w: %s is not part of the bracket", ErrInvalidPick, m.ID)
	}
	if p.Score1 < 0 || p.Score2 < 0 {
		return fmt.Errorf("%w: scores must be >= 0, got %d-%d", ErrInvalidPick, p.Score1, p.Score2)
	}
	if m.IsGroupMatch() && (p.ExtraTime || p.Penalties) {
		return fmt.Errorf("%w: extra time and penalties only apply to knockout matches", ErrInvalidPick)
	}
	if !p.Penalties && (p.PenaltyScore1 != nil || p.PenaltyScore2 != nil) {
		return fmt.Errorf("%w: penalty score given without penalties", ErrInvalidPick)
	}
	if p.Penalties {
		if (p.PenaltyScore1 != nil && *p.PenaltyScore1 < 0) || (p.PenaltyScore2 != nil && *p.PenaltyScore2 < 0) {
			return fmt.Errorf("%w: penalty scores must be >= 0", ErrInvalidPick)
		}
		if p.Score1 != p.Score2 {
			return fmt.Errorf("%w: penalties need a level score, got %d-%d", ErrInvalidPick, p.Score1, p.Score2)
		}
	}
	return nil
}
