package tournament

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type MatchdayKind int

const (
	MatchdayUnset MatchdayKind = iota
	MatchdayNumber
	MatchdayDate
)

// MatchdayValue is the normalized form of a stored matchday, which older
// records keep either as a round number or as a calendar date.
type MatchdayValue struct {
	Kind   MatchdayKind
	Number int
	Date   time.Time
}

var matchdayDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func NewMatchdayNumber(n int) (MatchdayValue, error) {
	if n < 1 {
		return MatchdayValue{}, fmt.Errorf("%w: matchday number must be >= 1, got %d", ErrInvalidMatchday, n)
	}
	return MatchdayValue{Kind: MatchdayNumber, Number: n}, nil
}

// ParseMatchdayText accepts a decimal round number or a date in one of the
// supported layouts. Blank input yields an unset value.
func ParseMatchdayText(raw string) (MatchdayValue, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MatchdayValue{}, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return NewMatchdayNumber(n)
	}
	for _, layout := range matchdayDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return MatchdayValue{Kind: MatchdayDate, Date: t.UTC()}, nil
		}
	}
	return MatchdayValue{}, fmt.Errorf("%w: %q", ErrInvalidMatchday, raw)
}

// Apply stores the value on the match, resetting the other representation.
func (v MatchdayValue) Apply(m *Match) {
	m.Matchday = nil
	m.MatchDate = nil
	switch v.Kind {
	case MatchdayNumber:
		n := v.Number
		m.Matchday = &n
	case MatchdayDate:
		d := v.Date
		m.MatchDate = &d
	}
}

// MatchdayOf reads the normalized value back from a match.
func MatchdayOf(m *Match) MatchdayValue {
	switch {
	case m.Matchday != nil:
		return MatchdayValue{Kind: MatchdayNumber, Number: *m.Matchday}
	case m.MatchDate != nil:
		return MatchdayValue{Kind: MatchdayDate, Date: *m.MatchDate}
	default:
		return MatchdayValue{}
	}
}
