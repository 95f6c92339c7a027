// Package player holds the canonical player record and the funnel that every
// feed row goes through: identity slugging, field normalization and the
// max-based merge across sources.
package player

import (
	"math"
	"strings"
)

// Sentinels written when a feed leaves a string field blank.
const (
	DefaultPosition = "N/A"
	DefaultTeam     = "Unknown"
)

// Record is the canonical player entity persisted in the players snapshot.
// Counters are cumulative season totals and never negative.
type Record struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Position      string  `json:"position"`
	Team          string  `json:"team"`
	Competition   string  `json:"competition,omitempty"`
	Minutes       float64 `json:"minutes"`
	Goals         float64 `json:"goals"`
	Assists       float64 `json:"assists"`
	Shots         float64 `json:"shots"`
	ShotsOnTarget float64 `json:"shotsOnTarget"`
}

// Valid reports whether the record may be persisted.
func (r Record) Valid() bool {
	return r.ID != "" && r.Name != ""
}

// Canonical re-applies the normalizer's defaults to an already typed record.
// An existing id is kept (slugging is idempotent); a blank one is derived
// from the name.
func (r Record) Canonical() Record {
	r.Name = strings.TrimSpace(r.Name)
	r.Position = orDefault(r.Position, DefaultPosition)
	r.Team = orDefault(r.Team, DefaultTeam)
	r.Competition = strings.TrimSpace(r.Competition)

	r.ID = Slugify(r.ID)
	if r.ID == "" {
		r.ID = Slugify(r.Name)
	}

	r.Minutes = counter(r.Minutes)
	r.Goals = counter(r.Goals)
	r.Assists = counter(r.Assists)
	r.Shots = counter(r.Shots)
	r.ShotsOnTarget = counter(r.ShotsOnTarget)
	return r
}

func orDefault(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

func counter(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
