package prediction

import (
	"sort"

	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

// Evaluate sets Points on every prediction from the results in s and returns
// the rows whose stored points changed. Predictions of matches without a
// result, or of matches that no longer exist, are reset to unscored.
func Evaluate(preds []Prediction, s *tournament.Structure, rules Rules) []PointsUpdate {
	var updates []PointsUpdate
	for i := range preds {
		var next *int
		if s != nil {
			if m, _, _, ok := s.FindMatch(preds[i].MatchID); ok {
				if actual, played := OutcomeOf(m); played {
					points := Score(preds[i], actual, rules)
					next = &points
				}
			}
		}
		if samePoints(preds[i].Points, next) {
			continue
		}
		preds[i].Points = next
		updates = append(updates, PointsUpdate{UserID: preds[i].UserID, MatchID: preds[i].MatchID, Points: next})
	}
	return updates
}

// Tally sums scored predictions per member and assigns dense ranks by points.
// Members without any prediction still appear with zero points.
func Tally(memberIDs []string, preds []Prediction, s *tournament.Structure) []MemberTotal {
	index := make(map[string]int, len(memberIDs))
	totals := make([]MemberTotal, 0, len(memberIDs))
	for _, userID := range memberIDs {
		if _, dup := index[userID]; dup {
			continue
		}
		index[userID] = len(totals)
		totals = append(totals, MemberTotal{UserID: userID})
	}

	for _, p := range preds {
		idx, ok := index[p.UserID]
		if !ok || p.Points == nil {
			continue
		}
		totals[idx].Points += *p.Points
		totals[idx].Scored++
		if isExact(p, s) {
			totals[idx].ExactScores++
		}
	}

	sort.SliceStable(totals, func(i, j int) bool {
		if totals[i].Points != totals[j].Points {
			return totals[i].Points > totals[j].Points
		}
		if totals[i].ExactScores != totals[j].ExactScores {
			return totals[i].ExactScores > totals[j].ExactScores
		}
		return totals[i].UserID < totals[j].UserID
	})

	lastPoints := 0
	currentRank := 0
	for idx := range totals {
		if idx == 0 || totals[idx].Points != lastPoints {
			currentRank++
			lastPoints = totals[idx].Points
		}
		totals[idx].Rank = currentRank
	}
	return totals
}

func isExact(p Prediction, s *tournament.Structure) bool {
	if s == nil {
		return false
	}
	m, _, _, ok := s.FindMatch(p.MatchID)
	if !ok {
		return false
	}
	actual, played := OutcomeOf(m)
	return played && actual.Score1 == p.Score1 && actual.Score2 == p.Score2
}

func samePoints(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
