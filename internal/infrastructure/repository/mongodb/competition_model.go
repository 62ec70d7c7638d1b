package mongodb

import (
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/competition"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

type competitionDocument struct {
	Category      string         `bson:"category"`
	CompetitionID string         `bson:"competition_id"`
	Name          string         `bson:"name"`
	Season        string         `bson:"season,omitempty"`
	Teams         []teamDocument `bson:"teams"`
	StartsAt      *time.Time     `bson:"starts_at,omitempty"`
	UpdatedAt     time.Time      `bson:"updated_at"`
}

type teamDocument struct {
	ID   string `bson:"id"`
	Name string `bson:"name"`
	Flag string `bson:"flag,omitempty"`
}

func competitionToDocument(c competition.Competition) competitionDocument {
	doc := competitionDocument{
		Category:      c.Category,
		CompetitionID: c.ID,
		Name:          c.Name,
		Season:        c.Season,
		Teams:         make([]teamDocument, 0, len(c.Teams)),
		StartsAt:      c.StartsAt,
		UpdatedAt:     c.UpdatedAt.UTC(),
	}
	for _, t := range c.Teams {
		doc.Teams = append(doc.Teams, teamDocument{ID: t.ID, Name: t.Name, Flag: t.Flag})
	}
	return doc
}

func competitionFromDocument(doc competitionDocument) competition.Competition {
	out := competition.Competition{
		Category:  doc.Category,
		ID:        doc.CompetitionID,
		Name:      doc.Name,
		Season:    doc.Season,
		Teams:     make([]tournament.Team, 0, len(doc.Teams)),
		StartsAt:  doc.StartsAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, t := range doc.Teams {
		out.Teams = append(out.Teams, tournament.Team{ID: t.ID, Name: t.Name, Flag: t.Flag})
	}
	return out
}
