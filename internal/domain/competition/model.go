package competition

import (
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/tournament"
)

// Competition is one catalog entry, unique per (Category, ID).
type Competition struct {
	Category  string
	ID        string
	Name      string
	Season    string
	Teams     []tournament.Team
	StartsAt  *time.Time
	UpdatedAt time.Time
}

type Key struct {
	Category string
	ID       string
}

func (c Competition) Key() Key {
	return Key{Category: c.Category, ID: c.ID}
}

func (k Key) String() string {
	return k.Category + "/" + k.ID
}
