package player

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/scoracle-site/internal/provider"
)

func TestNormalizeSeedRow(t *testing.T) {
	t.Parallel()

	rec := Normalize(provider.NewRawRow(provider.SourceSeed, map[string]interface{}{
		"id":            "Kane",
		"name":          " Harry Kane ",
		"position":      "FW",
		"team":          "Bayern Munich",
		"minutes":       900.0,
		"goals":         "10",
		"assists":       2.0,
		"shots":         30.0,
		"shotsOnTarget": 15.0,
	}))

	assert.Equal(t, Record{
		ID: "kane", Name: "Harry Kane", Position: "FW", Team: "Bayern Munich",
		Minutes: 900, Goals: 10, Assists: 2, Shots: 30, ShotsOnTarget: 15,
	}, rec)
	assert.True(t, rec.Valid())
}

func TestNormalizeDefaultsAndDerivedID(t *testing.T) {
	t.Parallel()

	rec := Normalize(provider.NewRawRow(provider.SourceSeed, map[string]interface{}{
		"name":     "Bukayo Saka",
		"position": "   ",
		"goals":    "lots",
		"assists":  -3.0,
		"minutes":  "NaN",
	}))

	assert.Equal(t, "bukayo-saka", rec.ID)
	assert.Equal(t, DefaultPosition, rec.Position)
	assert.Equal(t, DefaultTeam, rec.Team)
	assert.Zero(t, rec.Goals)
	assert.Zero(t, rec.Assists)
	assert.Zero(t, rec.Minutes)
}

func TestNormalizeExplicitIDThatSlugsToEmptyFallsBackToName(t *testing.T) {
	t.Parallel()

	rec := Normalize(provider.NewRawRow(provider.SourceSeed, map[string]interface{}{
		"id":   "???",
		"name": "Declan Rice",
	}))
	assert.Equal(t, "declan-rice", rec.ID)
}

func TestNormalizeUsesSourceAliases(t *testing.T) {
	t.Parallel()

	fbref := Normalize(provider.NewRawRow(provider.SourceFBref, map[string]interface{}{
		"player": "Erling Haaland",
		"pos":    "FW",
		"squad":  "Manchester City",
		"comp":   "PL",
		"min":    "2,430",
		"gls":    "27",
		"ast":    "5",
		"sh":     "112",
		"sot":    "51",
	}))
	assert.Equal(t, Record{
		ID: "erling-haaland", Name: "Erling Haaland", Position: "FW", Team: "Manchester City",
		Competition: "PL", Minutes: 2430, Goals: 27, Assists: 5, Shots: 112, ShotsOnTarget: 51,
	}, fbref)

	fd := Normalize(provider.NewRawRow(provider.SourceFootballData, map[string]interface{}{
		"provider_id":      44.0,
		"name":             "Mohamed Salah",
		"team":             map[string]interface{}{"name": "Liverpool FC"},
		"goals":            18.0,
		"assists":          nil,
		"minutes_estimate": 2550.0,
	}))
	assert.Equal(t, "mohamed-salah", fd.ID)
	assert.Equal(t, "Liverpool FC", fd.Team)
	assert.Equal(t, 2550.0, fd.Minutes)
	assert.Zero(t, fd.Assists)
}

func TestFromRowsDropsRowsWithoutIdentity(t *testing.T) {
	t.Parallel()

	rows := []provider.RawRow{
		provider.NewRawRow(provider.SourceSeed, map[string]interface{}{"name": ""}),
		provider.NewRawRow(provider.SourceSeed, map[string]interface{}{"name": "   ", "goals": 3.0}),
		provider.NewRawRow(provider.SourceSeed, map[string]interface{}{"id": "ghost"}),
		provider.NewRawRow(provider.SourceSeed, map[string]interface{}{"name": "!!!"}),
		provider.NewRawRow(provider.SourceSeed, map[string]interface{}{"name": "Phil Foden"}),
		provider.NewRawRow(provider.SourceSeed, nil),
	}

	recs := FromRows(rows)
	if assert.Len(t, recs, 1) {
		assert.Equal(t, "phil-foden", recs[0].ID)
	}
}

func TestExplicitIDJoinsExistingRecordForEverySource(t *testing.T) {
	t.Parallel()

	existing := []Record{{ID: "kane", Name: "Harry Kane", Position: "FW", Team: "Bayern", Minutes: 900, Goals: 10}}
	rows := map[provider.Source]map[string]interface{}{
		provider.SourceSeed:         {"id": "kane", "name": "Harry Kane", "minutes": 950.0, "goals": 9.0},
		provider.SourceFootballData: {"id": "kane", "name": "Harry Kane", "minutes_estimate": 950.0, "goals": 9.0},
		provider.SourceFBref:        {"code": "Kane", "player": "Harry Kane", "min": "950", "gls": "9"},
		provider.SourceStatsBomb:    {"slug": "kane", "player_name": "Harry Kane", "minutes": 950.0, "goals": 9.0},
	}
	for src, fields := range rows {
		t.Run(string(src), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, "kane", Normalize(provider.NewRawRow(src, fields)).ID)

			merged := Merge(existing, []provider.RawRow{provider.NewRawRow(src, fields)})
			if assert.Len(t, merged, 1) {
				assert.Equal(t, "kane", merged[0].ID)
				assert.Equal(t, 950.0, merged[0].Minutes)
				assert.Equal(t, 10.0, merged[0].Goals)
			}
		})
	}
}
