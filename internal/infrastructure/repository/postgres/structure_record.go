package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

// structureRecord is the stored shape of tournament.Structure. Stage variants
// are explicit because Stage keeps its groups and matches unexported.
type structureRecord struct {
	Format         string        `json:"format"`
	CurrentStageID string        `json:"current_stage_id"`
	Config         configRecord  `json:"config"`
	Stages         []stageRecord `json:"stages"`
}

type configRecord struct {
	TotalTeams           int      `json:"total_teams"`
	NumberOfGroups       int      `json:"number_of_groups"`
	TeamsPerGroup        int      `json:"teams_per_group"`
	TeamsQualifyPerGroup int      `json:"teams_qualify_per_group"`
	KnockoutRounds       []string `json:"knockout_rounds,omitempty"`
}

type stageRecord struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Type             tournament.StageType `json:"type"`
	IsActive         bool                 `json:"is_active"`
	IsCompleted      bool                 `json:"is_completed"`
	Order            int                  `json:"order"`
	QualifiedTeamIDs []string             `json:"qualified_team_ids,omitempty"`
	Groups           []groupRecord        `json:"groups,omitempty"`
	Matches          []matchRecord        `json:"matches,omitempty"`
}

type groupRecord struct {
	Letter           string           `json:"letter"`
	Name             string           `json:"name"`
	Standings        []standingRecord `json:"standings"`
	Matches          []matchRecord    `json:"matches"`
	TeamsPerGroup    int              `json:"teams_per_group"`
	TeamsQualify     int              `json:"teams_qualify"`
	QualifiedTeamIDs []string         `json:"qualified_team_ids,omitempty"`
}

type standingRecord struct {
	TeamID         string `json:"team_id"`
	Name           string `json:"name"`
	Flag           string `json:"flag,omitempty"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
	Position       int    `json:"position"`
}

type slotRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Flag string `json:"flag,omitempty"`
}

type matchRecord struct {
	ID          string      `json:"id"`
	Number      int         `json:"number"`
	StageID     string      `json:"stage_id"`
	GroupLetter string      `json:"group_letter,omitempty"`
	Team1       *slotRecord `json:"team1"`
	Team2       *slotRecord `json:"team2"`
	Score1      *int        `json:"score1"`
	Score2      *int        `json:"score2"`
	WinnerID    string      `json:"winner_id,omitempty"`
	LoserID     string      `json:"loser_id,omitempty"`
	IsDraw      bool        `json:"is_draw"`
	IsPlayed    bool        `json:"is_played"`
	Status      string      `json:"status"`
	NextMatchID string      `json:"next_match_id,omitempty"`
	NextStageID string      `json:"next_stage_id,omitempty"`
	// Matchday holds either a round number or a date string; older rows
	// carry both shapes.
	Matchday      any  `json:"matchday,omitempty"`
	ExtraTime     bool `json:"extra_time"`
	Penalties     bool `json:"penalties"`
	PenaltyScore1 *int `json:"penalty_score1,omitempty"`
	PenaltyScore2 *int `json:"penalty_score2,omitempty"`
}

func encodeStructure(s *tournament.Structure) (string, error) {
	if s == nil {
		return "null", nil
	}
	record := structureRecord{
		Format:         s.Format,
		CurrentStageID: s.CurrentStageID,
		Config: configRecord{
			TotalTeams:           s.Config.TotalTeams,
			NumberOfGroups:       s.Config.NumberOfGroups,
			TeamsPerGroup:        s.Config.TeamsPerGroup,
			TeamsQualifyPerGroup: s.Config.TeamsQualifyPerGroup,
			KnockoutRounds:       s.Config.KnockoutRounds,
		},
		Stages: make([]stageRecord, 0, len(s.Stages)),
	}
	for _, stage := range s.Stages {
		sr := stageRecord{
			ID:               stage.ID,
			Name:             stage.Name,
			Type:             stage.Type,
			IsActive:         stage.IsActive,
			IsCompleted:      stage.IsCompleted,
			Order:            stage.Order,
			QualifiedTeamIDs: stage.QualifiedTeamIDs,
		}
		for _, g := range stage.Groups() {
			sr.Groups = append(sr.Groups, groupToRecord(g))
		}
		for _, m := range stage.Matches() {
			sr.Matches = append(sr.Matches, matchToRecord(m))
		}
		record.Stages = append(record.Stages, sr)
	}
	return encodeJSON(record)
}

func decodeStructure(raw []byte) (*tournament.Structure, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var record structureRecord
	if err := sonic.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	out := &tournament.Structure{
		Format:         record.Format,
		CurrentStageID: record.CurrentStageID,
		Config: tournament.Config{
			TotalTeams:           record.Config.TotalTeams,
			NumberOfGroups:       record.Config.NumberOfGroups,
			TeamsPerGroup:        record.Config.TeamsPerGroup,
			TeamsQualifyPerGroup: record.Config.TeamsQualifyPerGroup,
			KnockoutRounds:       record.Config.KnockoutRounds,
		},
		Stages: make([]*tournament.Stage, 0, len(record.Stages)),
	}
	for _, sr := range record.Stages {
		var stage *tournament.Stage
		switch sr.Type {
		case tournament.StageTypeGroups:
			groups := make([]*tournament.GroupBracket, 0, len(sr.Groups))
			for _, gr := range sr.Groups {
				g, err := groupFromRecord(gr)
				if err != nil {
					return nil, err
				}
				groups = append(groups, g)
			}
			stage = tournament.NewGroupStage(sr.ID, sr.Name, sr.Order, groups)
		case tournament.StageTypeKnockout:
			matches, err := matchesFromRecords(sr.Matches)
			if err != nil {
				return nil, err
			}
			stage = tournament.NewKnockoutStage(sr.ID, sr.Name, sr.Order, matches)
		default:
			return nil, crerr.Newf("stage %s has unknown type %q", sr.ID, sr.Type)
		}
		stage.IsActive = sr.IsActive
		stage.IsCompleted = sr.IsCompleted
		stage.QualifiedTeamIDs = sr.QualifiedTeamIDs
		out.Stages = append(out.Stages, stage)
	}
	if err := out.Validate(); err != nil {
		return nil, crerr.Wrap(err, "validate structure")
	}
	return out, nil
}

func groupToRecord(g *tournament.GroupBracket) groupRecord {
	out := groupRecord{
		Letter:           g.Letter,
		Name:             g.Name,
		Standings:        make([]standingRecord, 0, len(g.Standings)),
		Matches:          make([]matchRecord, 0, len(g.Matches)),
		TeamsPerGroup:    g.TeamsPerGroup,
		TeamsQualify:     g.TeamsQualify,
		QualifiedTeamIDs: g.QualifiedTeamIDs,
	}
	for _, st := range g.Standings {
		out.Standings = append(out.Standings, standingRecord(st))
	}
	for _, m := range g.Matches {
		out.Matches = append(out.Matches, matchToRecord(m))
	}
	return out
}

func groupFromRecord(r groupRecord) (*tournament.GroupBracket, error) {
	matches, err := matchesFromRecords(r.Matches)
	if err != nil {
		return nil, err
	}
	out := &tournament.GroupBracket{
		Letter:           r.Letter,
		Name:             r.Name,
		Standings:        make([]tournament.TeamStanding, 0, len(r.Standings)),
		Matches:          matches,
		TeamsPerGroup:    r.TeamsPerGroup,
		TeamsQualify:     r.TeamsQualify,
		QualifiedTeamIDs: r.QualifiedTeamIDs,
	}
	for _, st := range r.Standings {
		out.Standings = append(out.Standings, tournament.TeamStanding(st))
	}
	return out, nil
}

func matchToRecord(m *tournament.Match) matchRecord {
	out := matchRecord{
		ID:            m.ID,
		Number:        m.Number,
		StageID:       m.StageID,
		GroupLetter:   m.GroupLetter,
		Team1:         slotToRecord(m.Team1),
		Team2:         slotToRecord(m.Team2),
		Score1:        m.Score1,
		Score2:        m.Score2,
		WinnerID:      m.WinnerID,
		LoserID:       m.LoserID,
		IsDraw:        m.IsDraw,
		IsPlayed:      m.IsPlayed,
		Status:        string(m.Status),
		NextMatchID:   m.NextMatchID,
		NextStageID:   m.NextStageID,
		ExtraTime:     m.ExtraTime,
		Penalties:     m.Penalties,
		PenaltyScore1: m.PenaltyScore1,
		PenaltyScore2: m.PenaltyScore2,
	}
	switch md := tournament.MatchdayOf(m); md.Kind {
	case tournament.MatchdayNumber:
		out.Matchday = md.Number
	case tournament.MatchdayDate:
		out.Matchday = md.Date.UTC().Format(time.RFC3339)
	}
	return out
}

func matchesFromRecords(records []matchRecord) ([]*tournament.Match, error) {
	out := make([]*tournament.Match, 0, len(records))
	for _, r := range records {
		m := &tournament.Match{
			ID:            r.ID,
			Number:        r.Number,
			StageID:       r.StageID,
			GroupLetter:   r.GroupLetter,
			Team1:         slotFromRecord(r.Team1),
			Team2:         slotFromRecord(r.Team2),
			Score1:        r.Score1,
			Score2:        r.Score2,
			WinnerID:      r.WinnerID,
			LoserID:       r.LoserID,
			IsDraw:        r.IsDraw,
			IsPlayed:      r.IsPlayed,
			Status:        tournament.MatchStatus(r.Status),
			NextMatchID:   r.NextMatchID,
			NextStageID:   r.NextStageID,
			ExtraTime:     r.ExtraTime,
			Penalties:     r.Penalties,
			PenaltyScore1: r.PenaltyScore1,
			PenaltyScore2: r.PenaltyScore2,
		}
		if r.Matchday != nil {
			md, err := tournament.ParseMatchdayText(fmt.Sprint(r.Matchday))
			if err != nil {
				return nil, crerr.Wrapf(err, "matchday of match %s", r.ID)
			}
			md.Apply(m)
		}
		out = append(out, m)
	}
	return out, nil
}

func slotToRecord(s *tournament.TeamSlot) *slotRecord {
	if s == nil {
		return nil
	}
	return &slotRecord{ID: s.ID, Name: s.Name, Flag: s.Flag}
}

func slotFromRecord(s *slotRecord) *tournament.TeamSlot {
	if s == nil {
		return nil
	}
	return &tournament.TeamSlot{ID: s.ID, Name: s.Name, Flag: s.Flag}
}
