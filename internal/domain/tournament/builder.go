package tournament

import (
	"fmt"
	"strings"
)

const maxGroups = 26

// BuildConfig holds the group sizing used by Build.
type BuildConfig struct {
	TeamsPerGroup        int
	TeamsQualifyPerGroup int
}

func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		TeamsPerGroup:        4,
		TeamsQualifyPerGroup: 2,
	}
}

type knockoutRound struct {
	id    string
	name  string
	slots int
}

var knockoutRounds = []knockoutRound{
	{id: StageIDRoundOf16, name: "Round of 16", slots: 16},
	{id: StageIDQuarterFinals, name: "Quarter-finals", slots: 8},
	{id: StageIDSemiFinals, name: "Semi-finals", slots: 4},
	{id: StageIDThirdPlace, name: "Third place", slots: 2},
	{id: StageIDFinal, name: "Final", slots: 2},
}

// Build creates the full group and knockout skeleton for an ordered team list.
// Teams are split into groups sequentially, so the last group may be short.
func Build(teams []Team, cfg BuildConfig) (*Structure, error) {
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: team list is empty", ErrInvalidConfiguration)
	}
	if cfg.TeamsPerGroup <= 0 {
		return nil, fmt.Errorf("%w: teams per group must be > 0, got %d", ErrInvalidConfiguration, cfg.TeamsPerGroup)
	}
	if cfg.TeamsQualifyPerGroup <= 0 || cfg.TeamsQualifyPerGroup > cfg.TeamsPerGroup {
		return nil, fmt.Errorf("%w: teams qualifying per group must be within 1..%d, got %d",
			ErrInvalidConfiguration, cfg.TeamsPerGroup, cfg.TeamsQualifyPerGroup)
	}

	seen := make(map[string]struct{}, len(teams))
	for _, t := range teams {
		id := strings.TrimSpace(t.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: team id is required (name=%q)", ErrInvalidConfiguration, t.Name)
		}
		if _, exists := seen[id]; exists {
			return nil, fmt.Errorf("%w: duplicate team %s", ErrInvalidConfiguration, id)
		}
		seen[id] = struct{}{}
	}

	numberOfGroups := (len(teams) + cfg.TeamsPerGroup - 1) / cfg.TeamsPerGroup
	if numberOfGroups > maxGroups {
		return nil, fmt.Errorf("%w: %d groups exceed the %d available group letters", ErrInvalidConfiguration, numberOfGroups, maxGroups)
	}

	groups := make([]*GroupBracket, 0, numberOfGroups)
	for i := 0; i < numberOfGroups; i++ {
		start := i * cfg.TeamsPerGroup
		end := min(start+cfg.TeamsPerGroup, len(teams))
		groups = append(groups, buildGroup(string(rune('A'+i)), teams[start:end], cfg))
	}

	groupStage := NewGroupStage(StageIDGroups, "Group Stage", 1, groups)
	groupStage.IsActive = true

	stages := []*Stage{groupStage}
	roundIDs := make([]string, 0, len(knockoutRounds))
	qualifiers := numberOfGroups * cfg.TeamsQualifyPerGroup
	for _, round := range knockoutRounds {
		if round.id == StageIDRoundOf16 && qualifiers < round.slots {
			continue
		}
		stages = append(stages, buildKnockoutStage(round, len(stages)+1))
		roundIDs = append(roundIDs, round.id)
	}
	LinkKnockout(stages)

	out := &Structure{
		Format:         FormatGroupsKnockout,
		CurrentStageID: groupStage.ID,
		Stages:         stages,
		Config: Config{
			TotalTeams:           len(teams),
			NumberOfGroups:       numberOfGroups,
			TeamsPerGroup:        cfg.TeamsPerGroup,
			TeamsQualifyPerGroup: cfg.TeamsQualifyPerGroup,
			KnockoutRounds:       roundIDs,
		},
	}
	out.refreshProgress()
	return out, nil
}

func buildGroup(letter string, teams []Team, cfg BuildConfig) *GroupBracket {
	standings := make([]TeamStanding, 0, len(teams))
	for i, t := range teams {
		standings = append(standings, TeamStanding{
			TeamID:   t.ID,
			Name:     t.Name,
			Flag:     t.Flag,
			Position: i + 1,
		})
	}

	matches := make([]*Match, 0, len(teams)*(len(teams)-1)/2)
	n := 0
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			n++
			matchday := (n-1)/2 + 1
			matches = append(matches, &Match{
				ID:          groupMatchID(letter, n),
				Number:      n,
				StageID:     StageIDGroups,
				GroupLetter: letter,
				Team1:       slotFromTeam(teams[i]),
				Team2:       slotFromTeam(teams[j]),
				Status:      MatchStatusScheduled,
				Matchday:    &matchday,
			})
		}
	}

	g := &GroupBracket{
		Letter:        letter,
		Name:          "Group " + letter,
		Standings:     standings,
		Matches:       matches,
		TeamsPerGroup: cfg.TeamsPerGroup,
		TeamsQualify:  min(cfg.TeamsQualifyPerGroup, len(teams)),
	}
	if len(matches) == 0 {
		// A lone team has nothing to play and qualifies as it stands.
		g.refreshQualified()
	}
	return g
}

func buildKnockoutStage(round knockoutRound, order int) *Stage {
	count := round.slots / 2
	matches := make([]*Match, 0, count)
	for n := 1; n <= count; n++ {
		matches = append(matches, &Match{
			ID:      knockoutMatchID(round.id, n),
			Number:  n,
			StageID: round.id,
			Status:  MatchStatusScheduled,
		})
	}
	return NewKnockoutStage(round.id, round.name, order, matches)
}

func groupMatchID(letter string, n int) string {
	return fmt.Sprintf("group-%s-match-%d", letter, n)
}
