// Package standings models league tables as football-data.org returns them and
// derives the two scalar signals the scorer needs: a per-competition league
// difficulty and a per-team form multiplier. Both are bounded to
// [MinMultiplier, MaxMultiplier].
package standings

import "strings"

// Multiplier bounds shared by league difficulty and team form.
const (
	MinMultiplier = 0.85
	MaxMultiplier = 1.15
	Neutral       = 1.0
)

// Team is the nested team reference on a table row.
type Team struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// Row is one team's line in a league table.
type Row struct {
	Position    int    `json:"position,omitempty"`
	Team        Team   `json:"team"`
	PlayedGames int    `json:"playedGames"`
	Points      int    `json:"points"`
	Form        string `json:"form,omitempty"`
}

// Table is one standings block (TOTAL, HOME, AWAY or a group table).
type Table struct {
	Stage string `json:"stage,omitempty"`
	Type  string `json:"type,omitempty"`
	Group string `json:"group,omitempty"`
	Table []Row  `json:"table"`
}

// Competition is one competition's standings slice. Error is set instead of
// Standings when the fetch for that competition failed.
type Competition struct {
	Code      string  `json:"code"`
	Name      string  `json:"name,omitempty"`
	Season    int     `json:"season,omitempty"`
	Standings []Table `json:"standings"`
	Error     string  `json:"error,omitempty"`
}

// Snapshot is the persisted standings file.
type Snapshot struct {
	GeneratedAt  string        `json:"generated_at"`
	Competitions []Competition `json:"competitions"`
}

// Rows returns the rows of the overall table. Group-stage competitions have
// several TOTAL blocks; their rows are concatenated. Without any TOTAL block
// the first block is used.
func (c Competition) Rows() []Row {
	var rows []Row
	for _, t := range c.Standings {
		if strings.EqualFold(t.Type, "TOTAL") {
			rows = append(rows, t.Table...)
		}
	}
	if rows == nil && len(c.Standings) > 0 {
		rows = c.Standings[0].Table
	}
	return rows
}

// AveragePPG is the mean points-per-game across teams that have played.
func (c Competition) AveragePPG() (float64, bool) {
	var sum float64
	n := 0
	for _, r := range c.Rows() {
		if r.PlayedGames <= 0 {
			continue
		}
		sum += float64(r.Points) / float64(r.PlayedGames)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
