package app

import (
	"strings"
	"unicode/utf8"

	"github.com/lib/pq"
)

const maxTracedQueryLength = 512

// dbNameFromURL reports the database name for span attributes. Both URL and
// key/value DSNs are accepted; an unparsable DSN yields an empty name.
func dbNameFromURL(raw string) string {
	cfg, err := pq.NewConfig(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return cfg.Database
}

// formatDBQueryForTrace collapses whitespace and caps the statement length so
// generated SQL stays readable in span attributes.
func formatDBQueryForTrace(query string) string {
	collapsed := strings.Join(strings.Fields(query), " ")
	if len(collapsed) <= maxTracedQueryLength {
		return collapsed
	}
	cut := maxTracedQueryLength
	for cut > 0 && !utf8.RuneStart(collapsed[cut]) {
		cut--
	}
	return collapsed[:cut] + "..."
}
