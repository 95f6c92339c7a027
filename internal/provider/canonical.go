// Package provider defines the raw row shape every feed hands to the player
// normalizer. Feeds differ in field names (goals vs gls) and nesting, so each
// one tags its rows with a Source and the normalizer probes that source's
// aliases. Adding a feed means adding a Source and its alias table; the merge
// and snapshot code never change.
package provider

// Source identifies which upstream produced a RawRow.
type Source string

const (
	SourceSeed         Source = "seed"
	SourceFootballData Source = "football-data"
	SourceFBref        Source = "fbref"
	SourceStatsBomb    Source = "statsbomb"
)

// Valid reports whether s names a known feed.
func (s Source) Valid() bool {
	switch s {
	case SourceSeed, SourceFootballData, SourceFBref, SourceStatsBomb:
		return true
	}
	return false
}

// RawRow is one loosely typed player row from an upstream feed.
type RawRow struct {
	Source Source                 `json:"source"`
	Fields map[string]interface{} `json:"fields"`
}

// NewRawRow wraps decoded JSON fields with their source tag.
func NewRawRow(src Source, fields map[string]interface{}) RawRow {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	return RawRow{Source: src, Fields: fields}
}

// Lookup returns the first alias present with a non-nil value.
func (r RawRow) Lookup(aliases ...string) (interface{}, bool) {
	for _, a := range aliases {
		if v, ok := r.Fields[a]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// RowsFrom tags a batch of decoded objects with a source.
func RowsFrom(src Source, items []map[string]interface{}) []RawRow {
	rows := make([]RawRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, NewRawRow(src, item))
	}
	return rows
}

// Truncate shortens an upstream body for inclusion in error messages.
func Truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
