package tournament

// Clone returns a deep copy that shares no pointers with s.
func (s *Structure) Clone() *Structure {
	if s == nil {
		return nil
	}
	out := &Structure{
		Format:         s.Format,
		CurrentStageID: s.CurrentStageID,
		Stages:         make([]*Stage, 0, len(s.Stages)),
		Config:         s.Config,
	}
	out.Config.KnockoutRounds = append([]string(nil), s.Config.KnockoutRounds...)
	for _, stage := range s.Stages {
		out.Stages = append(out.Stages, stage.clone())
	}
	return out
}

func (s *Stage) clone() *Stage {
	out := &Stage{
		ID:               s.ID,
		Name:             s.Name,
		Type:             s.Type,
		IsActive:         s.IsActive,
		IsCompleted:      s.IsCompleted,
		Order:            s.Order,
		QualifiedTeamIDs: append([]string(nil), s.QualifiedTeamIDs...),
	}
	if s.groups != nil {
		out.groups = make([]*GroupBracket, 0, len(s.groups))
		for _, g := range s.groups {
			out.groups = append(out.groups, g.clone())
		}
	}
	if s.matches != nil {
		out.matches = cloneMatches(s.matches)
	}
	return out
}

func (g *GroupBracket) clone() *GroupBracket {
	return &GroupBracket{
		Letter:           g.Letter,
		Name:             g.Name,
		Standings:        append([]TeamStanding(nil), g.Standings...),
		Matches:          cloneMatches(g.Matches),
		TeamsPerGroup:    g.TeamsPerGroup,
		TeamsQualify:     g.TeamsQualify,
		QualifiedTeamIDs: append([]string(nil), g.QualifiedTeamIDs...),
	}
}

func cloneMatches(in []*Match) []*Match {
	out := make([]*Match, 0, len(in))
	for _, m := range in {
		out = append(out, m.Clone())
	}
	return out
}

func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	out := *m
	out.Team1 = cloneSlot(m.Team1)
	out.Team2 = cloneSlot(m.Team2)
	out.Score1 = cloneInt(m.Score1)
	out.Score2 = cloneInt(m.Score2)
	out.Matchday = cloneInt(m.Matchday)
	out.PenaltyScore1 = cloneInt(m.PenaltyScore1)
	out.PenaltyScore2 = cloneInt(m.PenaltyScore2)
	if m.MatchDate != nil {
		d := *m.MatchDate
		out.MatchDate = &d
	}
	return &out
}

func cloneSlot(s *TeamSlot) *TeamSlot {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
