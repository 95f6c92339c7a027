package player

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/albapepper/scoracle-site/internal/provider"
)

// Merge reconciles an incoming feed batch against the current canonical set.
//
// Records are joined on id. For a shared id the existing name is kept,
// position/team/competition take the incoming value unless it is a default,
// and every counter takes the maximum of the two sides. Counters are never
// summed, so re-running a merge with the same (or a subset of the) feed
// cannot inflate totals: Merge(Merge(A, B), B) == Merge(A, B).
//
// An empty batch returns existing untouched so a failed fetch can never
// replace a good snapshot.
func Merge(existing []Record, incoming []provider.RawRow) []Record {
	if len(incoming) == 0 {
		return existing
	}

	out := make([]Record, 0, len(existing)+len(incoming))
	index := make(map[string]int, len(existing)+len(incoming))

	add := func(rec Record) {
		if !rec.Valid() {
			return
		}
		if i, ok := index[rec.ID]; ok {
			out[i] = combine(out[i], rec)
			return
		}
		index[rec.ID] = len(out)
		out = append(out, rec)
	}

	for _, rec := range existing {
		add(rec.Canonical())
	}
	for _, row := range incoming {
		add(Normalize(row))
	}

	SortByName(out)
	return out
}

// SortByName orders records by display name using English collation, so
// "Özil" and "Ödegaard" sort among the O's. Equal names keep their relative
// order.
func SortByName(recs []Record) {
	c := collate.New(language.English)
	sort.SliceStable(recs, func(i, j int) bool {
		return c.CompareString(recs[i].Name, recs[j].Name) < 0
	})
}

func combine(prev, next Record) Record {
	merged := prev
	merged.Position = preferSpecific(prev.Position, next.Position, DefaultPosition)
	merged.Team = preferSpecific(prev.Team, next.Team, DefaultTeam)
	merged.Competition = preferSpecific(prev.Competition, next.Competition, "")

	merged.Minutes = max(prev.Minutes, next.Minutes)
	merged.Goals = max(prev.Goals, next.Goals)
	merged.Assists = max(prev.Assists, next.Assists)
	merged.Shots = max(prev.Shots, next.Shots)
	merged.ShotsOnTarget = max(prev.ShotsOnTarget, next.ShotsOnTarget)
	return merged
}

// preferSpecific never lets a thinner feed downgrade a field to its default.
func preferSpecific(prev, next, fallback string) string {
	if next == "" || next == fallback {
		return prev
	}
	return next
}
