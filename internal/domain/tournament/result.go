package tournament

import "fmt"

// RecordResult applies an authoritative score to a match. Group results update
// the table and qualification; knockout results move the winner into the next
// match. Recording over an existing result replaces it. On error the structure
// is left untouched.
func (s *Structure) RecordResult(matchID string, r Result) error {
	if err := validateResult(r); err != nil {
		return err
	}
	work := s.Clone()
	if err := work.recordResult(matchID, r); err != nil {
		return err
	}
	*s = *work
	return nil
}

// ClearResult reverts a recorded result: the table arithmetic is undone and
// the teams it placed downstream are removed. Clearing an unplayed match is a
// no-op.
func (s *Structure) ClearResult(matchID string) error {
	work := s.Clone()
	if err := work.clearResult(matchID); err != nil {
		return err
	}
	*s = *work
	return nil
}

func (s *Structure) recordResult(matchID string, r Result) error {
	m, stage, group, ok := s.FindMatch(matchID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if m.Team1 == nil || m.Team2 == nil {
		return fmt.Errorf("%w: %s", ErrTeamsNotAssigned, matchID)
	}

	knockout := stage.Type == StageTypeKnockout
	if knockout && r.Score1 == r.Score2 {
		if !r.Penalties || r.PenaltyScore1 == nil || r.PenaltyScore2 == nil || *r.PenaltyScore1 == *r.PenaltyScore2 {
			return fmt.Errorf("%w: %s ended %d-%d without a penalty decision", ErrUndecidedKnockout, matchID, r.Score1, r.Score2)
		}
	}

	if m.IsPlayed {
		if err := s.clearResult(matchID); err != nil {
			return fmt.Errorf("replace result of %s: %w", matchID, err)
		}
	}

	winner, loser := decide(m, r, knockout)
	if knockout {
		if err := s.checkAdvancement(m, winner, loser); err != nil {
			return err
		}
	}

	m.Score1 = intPtr(r.Score1)
	m.Score2 = intPtr(r.Score2)
	m.IsPlayed = true
	m.Status = MatchStatusFinished
	m.IsDraw = winner == nil
	m.WinnerID, m.LoserID = "", ""
	if winner != nil {
		m.WinnerID = winner.ID
		m.LoserID = loser.ID
	}
	if knockout {
		m.ExtraTime = r.ExtraTime
		m.Penalties = r.Penalties && r.PenaltyScore1 != nil && r.PenaltyScore2 != nil
		if m.Penalties {
			m.PenaltyScore1 = intPtr(*r.PenaltyScore1)
			m.PenaltyScore2 = intPtr(*r.PenaltyScore2)
		}
	}

	if group != nil {
		if err := group.applyMatch(m, r.Score1, r.Score2, 1); err != nil {
			return fmt.Errorf("apply standings for %s: %w", matchID, err)
		}
	} else if winner != nil {
		s.advance(m, *winner, *loser)
	}

	s.refreshProgress()
	return nil
}

func (s *Structure) clearResult(matchID string) error {
	m, stage, group, ok := s.FindMatch(matchID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	if !m.IsPlayed {
		return nil
	}

	if group != nil {
		if s.knockoutStarted() {
			return fmt.Errorf("%w: knockout stage already started", ErrDownstreamPlayed)
		}
		if err := group.applyMatch(m, deref(m.Score1), deref(m.Score2), -1); err != nil {
			return fmt.Errorf("revert standings for %s: %w", matchID, err)
		}
	} else if stage.Type == StageTypeKnockout && m.WinnerID != "" {
		if err := s.retract(m); err != nil {
			return err
		}
	}

	m.Score1, m.Score2 = nil, nil
	m.WinnerID, m.LoserID = "", ""
	m.IsDraw = false
	m.IsPlayed = false
	m.Status = MatchStatusScheduled
	m.ExtraTime = false
	m.Penalties = false
	m.PenaltyScore1, m.PenaltyScore2 = nil, nil

	s.refreshProgress()
	return nil
}

func validateResult(r Result) error {
	if r.Score1 < 0 || r.Score2 < 0 {
		return fmt.Errorf("%w: scores must be >= 0, got %d-%d", ErrInvalidScore, r.Score1, r.Score2)
	}
	if (r.PenaltyScore1 != nil && *r.PenaltyScore1 < 0) || (r.PenaltyScore2 != nil && *r.PenaltyScore2 < 0) {
		return fmt.Errorf("%w: penalty scores must be >= 0", ErrInvalidScore)
	}
	return nil
}

// decide returns nil slots for a draw.
func decide(m *Match, r Result, knockout bool) (winner, loser *TeamSlot) {
	switch {
	case r.Score1 > r.Score2:
		return m.Team1, m.Team2
	case r.Score2 > r.Score1:
		return m.Team2, m.Team1
	case knockout && *r.PenaltyScore1 > *r.PenaltyScore2:
		return m.Team1, m.Team2
	case knockout:
		return m.Team2, m.Team1
	default:
		return nil, nil
	}
}

// checkAdvancement verifies the downstream matches can take the teams before
// anything is mutated.
func (s *Structure) checkAdvancement(m *Match, winner, loser *TeamSlot) error {
	if m.NextMatchID != "" {
		if err := s.checkFreeSlot(m.NextMatchID, winner); err != nil {
			return err
		}
	}
	if _, loserMatchID, ok := LoserMatchFor(m.StageID, m.Number); ok {
		if err := s.checkFreeSlot(loserMatchID, loser); err != nil {
			return err
		}
	}
	return nil
}

func (s *Structure) checkFreeSlot(matchID string, team *TeamSlot) error {
	target, _, _, ok := s.FindMatch(matchID)
	if !ok {
		// Third place is optional in stored structures.
		return nil
	}
	if target.IsPlayed {
		return fmt.Errorf("%w: %s", ErrDownstreamPlayed, matchID)
	}
	if target.Team1 != nil && target.Team2 != nil && target.Team1.ID != team.ID && target.Team2.ID != team.ID {
		return fmt.Errorf("%w: %s has no free slot", ErrInvalidStage, matchID)
	}
	return nil
}

func (s *Structure) advance(m *Match, winner, loser TeamSlot) {
	if m.NextMatchID != "" {
		if target, _, _, ok := s.FindMatch(m.NextMatchID); ok {
			placeTeam(target, winner)
		}
	}
	if _, loserMatchID, ok := LoserMatchFor(m.StageID, m.Number); ok {
		if target, _, _, ok := s.FindMatch(loserMatchID); ok {
			placeTeam(target, loser)
		}
	}
}

type placement struct {
	matchID string
	teamID  string
}

func (s *Structure) retract(m *Match) error {
	targets := make([]placement, 0, 2)
	if m.NextMatchID != "" {
		targets = append(targets, placement{matchID: m.NextMatchID, teamID: m.WinnerID})
	}
	if _, loserMatchID, ok := LoserMatchFor(m.StageID, m.Number); ok && m.LoserID != "" {
		targets = append(targets, placement{matchID: loserMatchID, teamID: m.LoserID})
	}

	for _, t := range targets {
		target, _, _, ok := s.FindMatch(t.matchID)
		if ok && target.IsPlayed && holdsTeam(target, t.teamID) {
			return fmt.Errorf("%w: %s", ErrDownstreamPlayed, t.matchID)
		}
	}
	for _, t := range targets {
		if target, _, _, ok := s.FindMatch(t.matchID); ok {
			removeTeam(target, t.teamID)
		}
	}
	return nil
}

// placeTeam fills the first empty slot, team1 before team2.
func placeTeam(target *Match, team TeamSlot) {
	if holdsTeam(target, team.ID) {
		return
	}
	slot := team
	if target.Team1 == nil {
		target.Team1 = &slot
		return
	}
	if target.Team2 == nil {
		target.Team2 = &slot
	}
}

func removeTeam(target *Match, teamID string) {
	if target.Team1 != nil && target.Team1.ID == teamID {
		target.Team1 = nil
		return
	}
	if target.Team2 != nil && target.Team2.ID == teamID {
		target.Team2 = nil
	}
}

func holdsTeam(m *Match, teamID string) bool {
	return (m.Team1 != nil && m.Team1.ID == teamID) || (m.Team2 != nil && m.Team2.ID == teamID)
}

func stageHasPlayedMatch(stage *Stage) bool {
	for _, m := range stage.AllMatches() {
		if m.IsPlayed {
			return true
		}
	}
	return false
}

func intPtr(v int) *int {
	return &v
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
