package memory

import (
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/competition"
	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

const (
	CategoryFootball        = "football"
	CompetitionIDWorldCup26 = "fifa-world-cup-2026"
	CompetitionIDEuro28     = "uefa-euro-2028"
)

// SeedCompetitions returns the catalog used by the memory store. Team order
// decides the group draw.
func SeedCompetitions() []competition.Competition {
	worldCupStart := time.Date(2026, time.June, 11, 0, 0, 0, 0, time.UTC)
	return []competition.Competition{
		{
			Category: CategoryFootball,
			ID:       CompetitionIDWorldCup26,
			Name:     "FIFA World Cup",
			Season:   "2026",
			StartsAt: &worldCupStart,
			Teams: []tournament.Team{
				{ID: "mex", Name: "Mexico", Flag: "🇲🇽"},
				{ID: "kor", Name: "Korea Republic", Flag: "🇰🇷"},
				{ID: "rsa", Name: "South Africa", Flag: "🇿🇦"},
				{ID: "den", Name: "Denmark", Flag: "🇩🇰"},
				{ID: "can", Name: "Canada", Flag: "🇨🇦"},
				{ID: "sui", Name: "Switzerland", Flag: "🇨🇭"},
				{ID: "qat", Name: "Qatar", Flag: "🇶🇦"},
				{ID: "ita", Name: "Italy", Flag: "🇮🇹"},
				{ID: "bra", Name: "Brazil", Flag: "🇧🇷"},
				{ID: "mar", Name: "Morocco", Flag: "🇲🇦"},
				{ID: "sco", Name: "Scotland", Flag: "🏴"},
				{ID: "hai", Name: "Haiti", Flag: "🇭🇹"},
				{ID: "usa", Name: "United States", Flag: "🇺🇸"},
				{ID: "par", Name: "Paraguay", Flag: "🇵🇾"},
				{ID: "aus", Name: "Australia", Flag: "🇦🇺"},
				{ID: "tur", Name: "Türkiye", Flag: "🇹🇷"},
				{ID: "ger", Name: "Germany", Flag: "🇩🇪"},
				{ID: "ecu", Name: "Ecuador", Flag: "🇪🇨"},
				{ID: "civ", Name: "Côte d'Ivoire", Flag: "🇨🇮"},
				{ID: "cuw", Name: "Curaçao", Flag: "🇨🇼"},
				{ID: "ned", Name: "Netherlands", Flag: "🇳🇱"},
				{ID: "jpn", Name: "Japan", Flag: "🇯🇵"},
				{ID: "tun", Name: "Tunisia", Flag: "🇹🇳"},
				{ID: "ukr", Name: "Ukraine", Flag: "🇺🇦"},
				{ID: "bel", Name: "Belgium", Flag: "🇧🇪"},
				{ID: "egy", Name: "Egypt", Flag: "🇪🇬"},
				{ID: "irn", Name: "Iran", Flag: "🇮🇷"},
				{ID: "nzl", Name: "New Zealand", Flag: "🇳🇿"},
				{ID: "esp", Name: "Spain", Flag: "🇪🇸"},
				{ID: "uru", Name: "Uruguay", Flag: "🇺🇾"},
				{ID: "ksa", Name: "Saudi Arabia", Flag: "🇸🇦"},
				{ID: "cpv", Name: "Cabo Verde", Flag: "🇨🇻"},
			},
		},
		{
			Category: CategoryFootball,
			ID:       CompetitionIDEuro28,
			Name:     "UEFA European Championship",
			Season:   "2028",
			Teams: []tournament.Team{
				{ID: "eng", Name: "England", Flag: "🏴"},
				{ID: "fra", Name: "France", Flag: "🇫🇷"},
				{ID: "esp", Name: "Spain", Flag: "🇪🇸"},
				{ID: "por", Name: "Portugal", Flag: "🇵🇹"},
				{ID: "ger", Name: "Germany", Flag: "🇩🇪"},
				{ID: "ita", Name: "Italy", Flag: "🇮🇹"},
				{ID: "ned", Name: "Netherlands", Flag: "🇳🇱"},
				{ID: "cro", Name: "Croatia", Flag: "🇭🇷"},
			},
		},
	}
}
