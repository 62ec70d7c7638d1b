package tournament

import "sort"

// refreshProgress recomputes stage completion, qualified ids, the current
// stage and the seeding of the first knockout round. It is idempotent.
func (s *Structure) refreshProgress() {
	groupStage := s.groupStage()
	if groupStage != nil {
		groupStage.IsCompleted = stageComplete(groupStage)
		groupStage.QualifiedTeamIDs = nil
		if groupStage.IsCompleted {
			for _, g := range groupStage.groups {
				groupStage.QualifiedTeamIDs = append(groupStage.QualifiedTeamIDs, g.QualifiedTeamIDs...)
			}
		}
		s.syncSeeding(groupStage)
	}

	for _, stage := range s.Stages {
		if stage.Type != StageTypeKnockout {
			continue
		}
		stage.IsCompleted = stageComplete(stage)
		stage.QualifiedTeamIDs = nil
		if stage.IsCompleted {
			for _, m := range stage.matches {
				if m.WinnerID != "" {
					stage.QualifiedTeamIDs = append(stage.QualifiedTeamIDs, m.WinnerID)
				}
			}
		}
	}

	ordered := s.orderedStages()
	current := ""
	for _, stage := range ordered {
		if !stage.IsCompleted {
			current = stage.ID
			break
		}
	}
	if current == "" && len(ordered) > 0 {
		current = ordered[len(ordered)-1].ID
	}
	s.CurrentStageID = current
	for _, stage := range s.Stages {
		stage.IsActive = stage.ID == current
	}
}

// syncSeeding derives the knockout entry from the group tables. Once the group
// stage is complete the ranked qualifiers enter the largest round they can
// fill; rounds before it are skipped. While the group stage is open every
// knockout slot stays empty. Nothing changes after a knockout match is played.
func (s *Structure) syncSeeding(groupStage *Stage) {
	if s.knockoutStarted() {
		return
	}
	rounds := s.knockoutStages()
	for _, stage := range rounds {
		for _, m := range stage.matches {
			m.Team1, m.Team2 = nil, nil
			m.Status = MatchStatusScheduled
		}
	}
	if !groupStage.IsCompleted {
		return
	}

	entry := entryRound(rounds, countQualifiers(groupStage.groups))
	for _, stage := range rounds {
		skip := entry == nil || stage.Order < entry.Order ||
			(stage.ID == StageIDThirdPlace && entry.ID == StageIDFinal)
		if !skip {
			continue
		}
		for _, m := range stage.matches {
			m.Status = MatchStatusSkipped
		}
	}
	if entry == nil {
		return
	}

	pairings, ok := seedPairings(groupStage.groups, len(entry.matches))
	if !ok {
		pairings = rankedPairings(groupStage.groups, len(entry.matches))
	}
	for i, m := range entry.matches {
		m.Team1 = pairings[i][0]
		m.Team2 = pairings[i][1]
	}
}

// entryRound picks the first round, in bracket order, whose slots the
// qualifiers can fill. The third place match is never an entry round.
func entryRound(rounds []*Stage, qualifiers int) *Stage {
	for _, stage := range rounds {
		if stage.ID == StageIDThirdPlace {
			continue
		}
		if slots := 2 * len(stage.matches); slots > 0 && slots <= qualifiers {
			return stage
		}
	}
	return nil
}

func countQualifiers(groups []*GroupBracket) int {
	n := 0
	for _, g := range groups {
		n += len(g.QualifiedTeamIDs)
	}
	return n
}

// seedPairings pairs adjacent groups (A with B, C with D, ...) when the round
// has exactly one match per group. Winners of the first group of each pair
// fill the top half of the round and winners of the second group the bottom
// half, so teams from one group can only meet again in the final.
func seedPairings(groups []*GroupBracket, matchCount int) ([][2]*TeamSlot, bool) {
	if len(groups) == 0 || len(groups)%2 != 0 || len(groups) != matchCount {
		return nil, false
	}
	for _, g := range groups {
		if len(g.Standings) < 2 || g.TeamsQualify != 2 {
			return nil, false
		}
	}

	pairs := len(groups) / 2
	out := make([][2]*TeamSlot, matchCount)
	for p := 0; p < pairs; p++ {
		a, b := groups[2*p], groups[2*p+1]
		out[p] = [2]*TeamSlot{standingSlot(a.Standings[0]), standingSlot(b.Standings[1])}
		out[p+pairs] = [2]*TeamSlot{standingSlot(b.Standings[0]), standingSlot(a.Standings[1])}
	}
	return out, true
}

// rankedPairings seeds the best qualifiers across all groups. Group winners
// rank ahead of runners-up and so on; within one finishing place teams are
// compared like a table. Seeds are laid out so the top two can only meet in
// the final.
func rankedPairings(groups []*GroupBracket, matchCount int) [][2]*TeamSlot {
	seeds := rankQualifiers(groups)
	order := bracketOrder(2 * matchCount)
	out := make([][2]*TeamSlot, matchCount)
	for i := range out {
		out[i] = [2]*TeamSlot{
			standingSlot(seeds[order[2*i]-1]),
			standingSlot(seeds[order[2*i+1]-1]),
		}
	}
	return out
}

func rankQualifiers(groups []*GroupBracket) []TeamStanding {
	tiers := 0
	for _, g := range groups {
		tiers = max(tiers, len(g.QualifiedTeamIDs))
	}
	out := make([]TeamStanding, 0)
	for place := 0; place < tiers; place++ {
		tier := make([]TeamStanding, 0, len(groups))
		for _, g := range groups {
			if place < len(g.QualifiedTeamIDs) && place < len(g.Standings) {
				tier = append(tier, g.Standings[place])
			}
		}
		out = append(out, RankStandings(tier)...)
	}
	return out
}

// bracketOrder lists seed numbers in slot order for a round of size slots, a
// power of two: 8 gives 1 8 4 5 2 7 3 6.
func bracketOrder(slots int) []int {
	order := []int{1}
	for size := 2; size <= slots; size *= 2 {
		next := make([]int, 0, size)
		for _, seed := range order {
			next = append(next, seed, size+1-seed)
		}
		order = next
	}
	return order
}

func standingSlot(st TeamStanding) *TeamSlot {
	return &TeamSlot{ID: st.TeamID, Name: st.Name, Flag: st.Flag}
}

func (s *Structure) groupStage() *Stage {
	for _, stage := range s.Stages {
		if stage.Type == StageTypeGroups {
			return stage
		}
	}
	return nil
}

func (s *Structure) knockoutStages() []*Stage {
	out := make([]*Stage, 0, len(s.Stages))
	for _, stage := range s.orderedStages() {
		if stage.Type == StageTypeKnockout {
			out = append(out, stage)
		}
	}
	return out
}

func (s *Structure) knockoutStarted() bool {
	for _, stage := range s.knockoutStages() {
		if stageHasPlayedMatch(stage) {
			return true
		}
	}
	return false
}

func (s *Structure) orderedStages() []*Stage {
	out := append([]*Stage(nil), s.Stages...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// stageComplete reports whether nothing is left to play. A stage without
// matches, such as a group of one, is complete from the start.
func stageComplete(stage *Stage) bool {
	for _, m := range stage.AllMatches() {
		if !m.IsPlayed && m.Status != MatchStatusSkipped {
			return false
		}
	}
	return true
}
