package standings

import (
	"strings"

	"github.com/albapepper/scoracle-site/internal/player"
)

// NeutralForm is the raw form average assumed when a team has no results.
const NeutralForm = 0.5

const formWindow = 5

// Signals holds the normalized multipliers derived from one standings snapshot.
type Signals struct {
	league map[string]float64
	// form is keyed by competition key, then team key.
	form map[string]map[string]float64
	// order lists form keys in snapshot order for the fallback search.
	order []string
}

// BuildSignals derives league difficulty and team form from a snapshot.
//
// League difficulty rescales each competition's average points-per-game into
// [MinMultiplier, MaxMultiplier] using the min and max across the snapshot.
// With fewer than two usable competitions (or no spread) every competition
// is neutral.
func BuildSignals(snap Snapshot) Signals {
	sig := Signals{
		league: make(map[string]float64),
		form:   make(map[string]map[string]float64),
	}

	type avg struct {
		keys []string
		ppg  float64
	}
	var avgs []avg
	lo, hi := 0.0, 0.0

	for _, c := range snap.Competitions {
		keys := competitionKeys(c.Code, c.Name)
		if len(keys) == 0 {
			continue
		}

		teams := make(map[string]float64)
		for _, r := range c.Rows() {
			tk := TeamKey(r.Team.Name)
			if tk == "" {
				continue
			}
			teams[tk] = FormMultiplier(r.Form)
		}
		for _, k := range keys {
			sig.form[k] = teams
		}
		sig.order = append(sig.order, keys[0])

		ppg, ok := c.AveragePPG()
		if !ok {
			continue
		}
		if len(avgs) == 0 || ppg < lo {
			lo = ppg
		}
		if len(avgs) == 0 || ppg > hi {
			hi = ppg
		}
		avgs = append(avgs, avg{keys: keys, ppg: ppg})
	}

	for _, a := range avgs {
		v := Neutral
		if len(avgs) > 1 && hi > lo {
			v = rescale((a.ppg - lo) / (hi - lo))
		}
		for _, k := range a.keys {
			sig.league[k] = v
		}
	}
	return sig
}

// LeagueDifficulty returns the multiplier for a competition code or name, or
// Neutral when the snapshot has no signal for it.
func (s Signals) LeagueDifficulty(competition string) float64 {
	for _, k := range competitionKeys(competition, competition) {
		if v, ok := s.league[k]; ok {
			return v
		}
	}
	return Neutral
}

// TeamForm returns the form multiplier for a team. The competition narrows the
// lookup when given; otherwise (or when it misses) every competition is
// searched. Unknown teams get the neutral form.
func (s Signals) TeamForm(competition, team string) float64 {
	tk := TeamKey(team)
	if tk == "" {
		return FormMultiplier("")
	}
	for _, k := range competitionKeys(competition, competition) {
		if v, ok := s.form[k][tk]; ok {
			return v
		}
	}
	for _, k := range s.order {
		if v, ok := s.form[k][tk]; ok {
			return v
		}
	}
	return FormMultiplier("")
}

// FormAverage scores up to the five most recent results (listed first) as
// W=1, D=0.5, L=0. Results may be comma separated ("W,D,L") or packed
// ("WDL"); anything else is ignored. ok is false when no result was found.
func FormAverage(form string) (avg float64, ok bool) {
	var total float64
	n := 0
	for _, r := range strings.ToUpper(form) {
		if n == formWindow {
			break
		}
		switch r {
		case 'W':
			total++
		case 'D':
			total += 0.5
		case 'L':
		default:
			continue
		}
		n++
	}
	if n == 0 {
		return NeutralForm, false
	}
	return total / float64(n), true
}

// FormMultiplier maps a form string into [MinMultiplier, MaxMultiplier];
// missing form is neutral.
func FormMultiplier(form string) float64 {
	avg, _ := FormAverage(form)
	return rescale(avg)
}

func rescale(unit float64) float64 {
	if unit < 0 {
		unit = 0
	}
	if unit > 1 {
		unit = 1
	}
	return MinMultiplier + unit*(MaxMultiplier-MinMultiplier)
}

// Suffix tokens stripped so "Arsenal FC" and "Arsenal" share a key.
var clubTokens = map[string]bool{"fc": true, "afc": true, "cf": true, "sc": true}

// TeamKey is the join key for team names across feeds.
func TeamKey(name string) string {
	parts := strings.Split(player.Slugify(name), "-")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || clubTokens[p] {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "-")
}

func competitionKeys(code, name string) []string {
	var keys []string
	if c := strings.ToUpper(strings.TrimSpace(code)); c != "" {
		keys = append(keys, c)
	}
	if n := player.Slugify(name); n != "" {
		keys = append(keys, n)
	}
	return keys
}
