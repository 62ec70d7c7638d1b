package resilience

import "time"

// Settings configures one named breaker. Zero counts and durations fall back
// to the catalog defaults.
type Settings struct {
	Name                string
	Enabled             bool
	MaxFailures         int
	Cooldown            time.Duration
	HalfOpenMaxRequests int
}

func DefaultSettings(name string) Settings {
	return Settings{
		Name:                name,
		Enabled:             true,
		MaxFailures:         5,
		Cooldown:            15 * time.Second,
		HalfOpenMaxRequests: 2,
	}
}

func (s Settings) withDefaults() Settings {
	defaults := DefaultSettings(s.Name)
	if s.MaxFailures < 1 {
		s.MaxFailures = defaults.MaxFailures
	}
	if s.Cooldown <= 0 {
		s.Cooldown = defaults.Cooldown
	}
	if s.HalfOpenMaxRequests < 1 {
		s.HalfOpenMaxRequests = defaults.HalfOpenMaxRequests
	}
	return s
}
