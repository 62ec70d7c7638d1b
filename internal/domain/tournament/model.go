package tournament

import (
	"fmt"
	"time"
)

type StageType string

const (
	StageTypeGroups   StageType = "groups"
	StageTypeKnockout StageType = "knockout"
)

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusFinished  MatchStatus = "finished"
	// MatchStatusSkipped marks knockout matches of rounds the qualifiers do
	// not reach.
	MatchStatusSkipped MatchStatus = "skipped"
)

const FormatGroupsKnockout = "groups-knockout"

const (
	StageIDGroups        = "group-stage"
	StageIDRoundOf16     = "round-of-16"
	StageIDQuarterFinals = "quarter-finals"
	StageIDSemiFinals    = "semi-finals"
	StageIDThirdPlace    = "third-place"
	StageIDFinal         = "final"
)

// Team is a qualified competitor as supplied by the competition catalog.
type Team struct {
	ID   string
	Name string
	Flag string
}

// TeamSlot is one side of a match; nil on a Match until a team is assigned.
type TeamSlot struct {
	ID   string
	Name string
	Flag string
}

func slotFromTeam(t Team) *TeamSlot {
	return &TeamSlot{ID: t.ID, Name: t.Name, Flag: t.Flag}
}

type Config struct {
	TotalTeams           int
	NumberOfGroups       int
	TeamsPerGroup        int
	TeamsQualifyPerGroup int
	KnockoutRounds       []string
}

// Structure is the full stage/group/match skeleton of one tournament.
type Structure struct {
	Format         string
	CurrentStageID string
	Stages         []*Stage
	Config         Config
}

// Stage is either a group stage (Groups populated) or a knockout round
// (Matches populated), never both.
type Stage struct {
	ID               string
	Name             string
	Type             StageType
	IsActive         bool
	IsCompleted      bool
	Order            int
	QualifiedTeamIDs []string

	groups  []*GroupBracket
	matches []*Match
}

func NewGroupStage(id, name string, order int, groups []*GroupBracket) *Stage {
	return &Stage{ID: id, Name: name, Type: StageTypeGroups, Order: order, groups: groups}
}

func NewKnockoutStage(id, name string, order int, matches []*Match) *Stage {
	return &Stage{ID: id, Name: name, Type: StageTypeKnockout, Order: order, matches: matches}
}

// Groups returns the brackets of a group stage and nil for knockout stages.
func (s *Stage) Groups() []*GroupBracket {
	if s.Type != StageTypeGroups {
		return nil
	}
	return s.groups
}

// Matches returns the fixtures of a knockout stage and nil for group stages.
func (s *Stage) Matches() []*Match {
	if s.Type != StageTypeKnockout {
		return nil
	}
	return s.matches
}

// AllMatches flattens the stage fixtures regardless of the variant.
func (s *Stage) AllMatches() []*Match {
	if s.Type == StageTypeKnockout {
		return s.matches
	}
	out := make([]*Match, 0)
	for _, g := range s.groups {
		out = append(out, g.Matches...)
	}
	return out
}

func (s *Stage) Validate() error {
	switch s.Type {
	case StageTypeGroups:
		if s.matches != nil {
			return fmt.Errorf("%w: group stage %s carries knockout matches", ErrInvalidStage, s.ID)
		}
	case StageTypeKnockout:
		if s.groups != nil {
			return fmt.Errorf("%w: knockout stage %s carries groups", ErrInvalidStage, s.ID)
		}
	default:
		return fmt.Errorf("%w: stage %s has unknown type %q", ErrInvalidStage, s.ID, s.Type)
	}
	return nil
}

type GroupBracket struct {
	Letter           string
	Name             string
	Standings        []TeamStanding
	Matches          []*Match
	TeamsPerGroup    int
	TeamsQualify     int
	QualifiedTeamIDs []string
}

type Match struct {
	ID            string
	Number        int
	StageID       string
	GroupLetter   string
	Team1         *TeamSlot
	Team2         *TeamSlot
	Score1        *int
	Score2        *int
	WinnerID      string
	LoserID       string
	IsDraw        bool
	IsPlayed      bool
	Status        MatchStatus
	NextMatchID   string
	NextStageID   string
	Matchday      *int
	MatchDate     *time.Time
	ExtraTime     bool
	Penalties     bool
	PenaltyScore1 *int
	PenaltyScore2 *int
}

func (m *Match) IsGroupMatch() bool {
	return m.GroupLetter != ""
}

type TeamStanding struct {
	TeamID         string
	Name           string
	Flag           string
	Played         int
	Won            int
	Drawn          int
	Lost           int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
	Position       int
}

// Result is an authoritative score for one match.
type Result struct {
	Score1        int
	Score2        int
	ExtraTime     bool
	Penalties     bool
	PenaltyScore1 *int
	PenaltyScore2 *int
}

func (s *Structure) StageByID(id string) (*Stage, bool) {
	for _, stage := range s.Stages {
		if stage.ID == id {
			return stage, true
		}
	}
	return nil, false
}

// FindMatch locates a match across every stage and group.
func (s *Structure) FindMatch(matchID string) (*Match, *Stage, *GroupBracket, bool) {
	for _, stage := range s.Stages {
		if stage.Type == StageTypeKnockout {
			for _, m := range stage.matches {
				if m.ID == matchID {
					return m, stage, nil, true
				}
			}
			continue
		}
		for _, g := range stage.groups {
			for _, m := range g.Matches {
				if m.ID == matchID {
					return m, stage, g, true
				}
			}
		}
	}
	return nil, nil, nil, false
}

// Matches returns every match of the structure in stage order.
func (s *Structure) Matches() []*Match {
	out := make([]*Match, 0)
	for _, stage := range s.Stages {
		out = append(out, stage.AllMatches()...)
	}
	return out
}

func (s *Structure) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: structure is nil", ErrInvalidStage)
	}
	for _, stage := range s.Stages {
		if err := stage.Validate(); err != nil {
			return err
		}
	}
	return nil
}
