package tournament

import "sort"

// RankStandings orders a group table by points, goal difference and goals
// scored, all descending, and assigns 1-based positions. Full ties keep their
// incoming order; there is no head-to-head rule.
func RankStandings(in []TeamStanding) []TeamStanding {
	out := append([]TeamStanding(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].GoalDifference != out[j].GoalDifference {
			return out[i].GoalDifference > out[j].GoalDifference
		}
		return out[i].GoalsFor > out[j].GoalsFor
	})
	for i := range out {
		out[i].Position = i + 1
	}
	return out
}

func (g *GroupBracket) standingIndex(teamID string) int {
	for i := range g.Standings {
		if g.Standings[i].TeamID == teamID {
			return i
		}
	}
	return -1
}

// applyMatch adds (sign=1) or removes (sign=-1) one played match from the
// table of both teams.
func (g *GroupBracket) applyMatch(m *Match, score1, score2, sign int) error {
	idx1 := g.standingIndex(m.Team1.ID)
	idx2 := g.standingIndex(m.Team2.ID)
	if idx1 < 0 || idx2 < 0 {
		return ErrTeamsNotAssigned
	}

	applyStandingDelta(&g.Standings[idx1], score1, score2, sign)
	applyStandingDelta(&g.Standings[idx2], score2, score1, sign)

	g.Standings = RankStandings(g.Standings)
	g.refreshQualified()
	return nil
}

func applyStandingDelta(s *TeamStanding, scored, conceded, sign int) {
	s.Played += sign
	s.GoalsFor += sign * scored
	s.GoalsAgainst += sign * conceded
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst

	switch {
	case scored > conceded:
		s.Won += sign
		s.Points += sign * 3
	case scored == conceded:
		s.Drawn += sign
		s.Points += sign
	default:
		s.Lost += sign
	}
}

func (g *GroupBracket) refreshQualified() {
	n := min(g.TeamsQualify, len(g.Standings))
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, g.Standings[i].TeamID)
	}
	g.QualifiedTeamIDs = ids
}
