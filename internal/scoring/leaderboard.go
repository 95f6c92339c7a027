package scoring

import (
	"sort"

	"github.com/albapepper/scoracle-site/internal/player"
	"github.com/albapepper/scoracle-site/internal/standings"
)

// Entry is one leaderboard row.
type Entry struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Team             string  `json:"team"`
	Position         string  `json:"position"`
	Competition      string  `json:"competition,omitempty"`
	Minutes          float64 `json:"minutes"`
	LeagueDifficulty float64 `json:"leagueDifficulty"`
	TeamForm         float64 `json:"teamForm"`
	Rival            string  `json:"rival,omitempty"`
	Result
}

// Options controls which players make the board.
type Options struct {
	// MinMinutes drops players below this playing time; per-90 rates over a
	// handful of minutes are noise.
	MinMinutes float64
	// Limit caps the number of rows; zero keeps all.
	Limit int
	// Rivals pairs player ids for head-to-head callouts. Pairs apply both ways.
	Rivals map[string]string
}

// Signals is the lookup the leaderboard needs from a standings snapshot.
type Signals interface {
	LeagueDifficulty(competition string) float64
	TeamForm(competition, team string) float64
}

var _ Signals = standings.Signals{}

// BuildLeaderboard scores every player and orders them by form score, highest
// first. Ties fall back to name so the board is deterministic.
func BuildLeaderboard(players []player.Record, sig Signals, opts Options) []Entry {
	rivals := symmetric(opts.Rivals)

	entries := make([]Entry, 0, len(players))
	for _, p := range players {
		if !p.Valid() || p.Minutes < opts.MinMinutes {
			continue
		}
		ld := sig.LeagueDifficulty(p.Competition)
		tf := sig.TeamForm(p.Competition, p.Team)
		entries = append(entries, Entry{
			ID:               p.ID,
			Name:             p.Name,
			Team:             p.Team,
			Position:         p.Position,
			Competition:      p.Competition,
			Minutes:          p.Minutes,
			LeagueDifficulty: ld,
			TeamForm:         tf,
			Rival:            rivals[p.ID],
			Result:           Score(p, ld, tf),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].FormScore != entries[j].FormScore {
			return entries[i].FormScore > entries[j].FormScore
		}
		return entries[i].Name < entries[j].Name
	})

	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	return entries
}

// symmetric applies each configured pair in both directions. An explicit
// entry always wins over a mirrored one.
func symmetric(pairs map[string]string) map[string]string {
	explicit := make(map[string]string, len(pairs))
	for a, b := range pairs {
		a, b = player.Slugify(a), player.Slugify(b)
		if a == "" || b == "" || a == b {
			continue
		}
		explicit[a] = b
	}

	keys := make([]string, 0, len(explicit))
	for a := range explicit {
		keys = append(keys, a)
	}
	sort.Strings(keys)

	out := make(map[string]string, len(explicit)*2)
	for a, b := range explicit {
		out[a] = b
	}
	for _, a := range keys {
		b := explicit[a]
		if _, taken := out[b]; !taken {
			out[b] = a
		}
	}
	return out
}
