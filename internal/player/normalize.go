package player

import (
	"github.com/albapepper/scoracle-site/internal/provider"
)

// fieldAliases lists, per canonical field, the raw keys a source may use.
// Keys are probed in order and the first present value wins.
type fieldAliases struct {
	ID            []string
	Name          []string
	Position      []string
	Team          []string
	Competition   []string
	Minutes       []string
	Goals         []string
	Assists       []string
	Shots         []string
	ShotsOnTarget []string
}

// idAliases is shared by every source; an explicit id joins the record it
// names instead of the one derived from the name.
var idAliases = []string{"id", "slug", "code"}

// seedAliases covers the hand-maintained players file, which has picked up
// every spelling over the years.
var seedAliases = fieldAliases{
	ID:            idAliases,
	Name:          []string{"name", "player", "player_name"},
	Position:      []string{"position", "pos"},
	Team:          []string{"team", "squad", "club"},
	Competition:   []string{"competition", "league", "comp"},
	Minutes:       []string{"minutes", "min", "mins", "minutes_estimate"},
	Goals:         []string{"goals", "gls"},
	Assists:       []string{"assists", "ast"},
	Shots:         []string{"shots", "sh"},
	ShotsOnTarget: []string{"shotsOnTarget", "shots_on_target", "sot"},
}

var sourceAliases = map[provider.Source]fieldAliases{
	provider.SourceSeed: seedAliases,
	provider.SourceFootballData: {
		ID:            idAliases,
		Name:          []string{"name"},
		Position:      []string{"position", "section"},
		Team:          []string{"team"},
		Competition:   []string{"competition"},
		Minutes:       []string{"minutes", "minutes_estimate"},
		Goals:         []string{"goals"},
		Assists:       []string{"assists"},
		Shots:         []string{"shots"},
		ShotsOnTarget: []string{"shotsOnTarget"},
	},
	provider.SourceFBref: {
		ID:            idAliases,
		Name:          []string{"player"},
		Position:      []string{"pos"},
		Team:          []string{"squad"},
		Competition:   []string{"comp", "competition"},
		Minutes:       []string{"min", "minutes"},
		Goals:         []string{"gls", "goals"},
		Assists:       []string{"ast", "assists"},
		Shots:         []string{"sh", "shots"},
		ShotsOnTarget: []string{"sot", "shots_on_target"},
	},
	provider.SourceStatsBomb: {
		ID:            idAliases,
		Name:          []string{"player_name", "name"},
		Position:      []string{"position"},
		Team:          []string{"team_name", "team"},
		Competition:   []string{"competition"},
		Minutes:       []string{"minutes"},
		Goals:         []string{"goals"},
		Assists:       []string{"assists"},
		Shots:         []string{"shots"},
		ShotsOnTarget: []string{"shots_on_target"},
	},
}

func aliasesFor(src provider.Source) fieldAliases {
	if a, ok := sourceAliases[src]; ok {
		return a
	}
	return seedAliases
}

// Normalize shapes one raw feed row into a canonical record. It never fails:
// unknown or malformed values fall back to defaults, and a row without a name
// or derivable id comes back with Valid() == false for the caller to drop.
func Normalize(row provider.RawRow) Record {
	a := aliasesFor(row.Source)

	rec := Record{
		Name:          stringField(row, a.Name),
		Position:      stringField(row, a.Position),
		Team:          stringField(row, a.Team),
		Competition:   stringField(row, a.Competition),
		Minutes:       numberField(row, a.Minutes),
		Goals:         numberField(row, a.Goals),
		Assists:       numberField(row, a.Assists),
		Shots:         numberField(row, a.Shots),
		ShotsOnTarget: numberField(row, a.ShotsOnTarget),
	}
	rec.ID = stringField(row, a.ID)
	return rec.Canonical()
}

// FromRows normalizes a batch and drops rows without an identity.
func FromRows(rows []provider.RawRow) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := Normalize(row)
		if !rec.Valid() {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func stringField(row provider.RawRow, aliases []string) string {
	v, ok := row.Lookup(aliases...)
	if !ok {
		return ""
	}
	return provider.ExtractString(v)
}

func numberField(row provider.RawRow, aliases []string) float64 {
	v, ok := row.Lookup(aliases...)
	if !ok {
		return 0
	}
	f, ok := provider.ExtractValue(v)
	if !ok {
		return 0
	}
	return counter(f)
}
