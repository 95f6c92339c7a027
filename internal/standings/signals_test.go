package standings

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func table(rows ...Row) []Table {
	return []Table{{Stage: "REGULAR_SEASON", Type: "TOTAL", Table: rows}}
}

func row(team string, played, points int, form string) Row {
	return Row{Team: Team{Name: team}, PlayedGames: played, Points: points, Form: form}
}

func TestFormAverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		form   string
		want   float64
		wantOK bool
	}{
		{"W,W,W,W,W", 1, true},
		{"L,L,L,L,L", 0, true},
		{"W,D,L", 0.5, true},
		{"wdlww", 0.7, true},
		{"W,W,W,W,W,L,L,L", 1, true},
		{"D", 0.5, true},
		{"", NeutralForm, false},
		{"?,-,", NeutralForm, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.form, func(t *testing.T) {
			t.Parallel()
			got, ok := FormAverage(tt.form)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFormMultiplierRange(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, MaxMultiplier, FormMultiplier("W,W,W,W,W"), 1e-9)
	assert.InDelta(t, MinMultiplier, FormMultiplier("L,L,L,L,L"), 1e-9)
	assert.InDelta(t, Neutral, FormMultiplier(""), 1e-9)
}

func TestBuildSignalsLeagueDifficulty(t *testing.T) {
	t.Parallel()

	snap := Snapshot{Competitions: []Competition{
		{Code: "PL", Name: "Premier League", Standings: table(
			row("Arsenal FC", 10, 25, "W,W,D,W,L"),
			row("Chelsea FC", 10, 15, "L,L,D,W,W"),
		)}, // 2.0 ppg
		{Code: "ELC", Name: "Championship", Standings: table(
			row("Leeds United FC", 10, 10, ""),
			row("Burnley FC", 10, 10, ""),
		)}, // 1.0 ppg
		{Code: "BL1", Name: "Bundesliga", Standings: table(
			row("FC Bayern München", 10, 20, ""),
			row("Borussia Dortmund", 10, 10, ""),
		)}, // 1.5 ppg
		{Code: "CL", Error: "fetch failed"},
	}}

	sig := BuildSignals(snap)
	assert.InDelta(t, MaxMultiplier, sig.LeagueDifficulty("PL"), 1e-9)
	assert.InDelta(t, MinMultiplier, sig.LeagueDifficulty("ELC"), 1e-9)
	assert.InDelta(t, 1.0, sig.LeagueDifficulty("bl1"), 1e-9)
	assert.InDelta(t, MaxMultiplier, sig.LeagueDifficulty("Premier League"), 1e-9)
	assert.Equal(t, Neutral, sig.LeagueDifficulty("CL"), "errored slice has no signal")
	assert.Equal(t, Neutral, sig.LeagueDifficulty(""), "missing competition is neutral")
}

func TestBuildSignalsSingleCompetitionIsNeutral(t *testing.T) {
	t.Parallel()

	sig := BuildSignals(Snapshot{Competitions: []Competition{
		{Code: "PL", Standings: table(row("Arsenal FC", 10, 25, ""))},
	}})
	assert.Equal(t, Neutral, sig.LeagueDifficulty("PL"))
}

func TestTeamFormLookup(t *testing.T) {
	t.Parallel()

	sig := BuildSignals(Snapshot{Competitions: []Competition{
		{Code: "PL", Standings: table(row("Arsenal FC", 10, 25, "W,W,W,W,W"))},
		{Code: "CL", Standings: table(row("Arsenal FC", 4, 6, "L,L,L,L,L"))},
	}})

	assert.InDelta(t, MaxMultiplier, sig.TeamForm("PL", "Arsenal"), 1e-9)
	assert.InDelta(t, MinMultiplier, sig.TeamForm("CL", "arsenal fc"), 1e-9)
	assert.InDelta(t, MaxMultiplier, sig.TeamForm("", "Arsenal"), 1e-9, "first competition wins the fallback search")
	assert.InDelta(t, Neutral, sig.TeamForm("PL", "Unknown"), 1e-9)
}

func TestRowsPrefersTotalTables(t *testing.T) {
	t.Parallel()

	c := Competition{Standings: []Table{
		{Type: "HOME", Table: []Row{row("Home", 1, 3, "")}},
		{Type: "TOTAL", Group: "GROUP_A", Table: []Row{row("A", 1, 3, "")}},
		{Type: "TOTAL", Group: "GROUP_B", Table: []Row{row("B", 1, 0, "")}},
	}}
	rows := c.Rows()
	assert.Len(t, rows, 2)

	ppg, ok := c.AveragePPG()
	assert.True(t, ok)
	assert.InDelta(t, 1.5, ppg, 1e-9)

	_, ok = Competition{}.AveragePPG()
	assert.False(t, ok)
}

func TestSignalsStayInBounds(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(3))
	letters := []string{"W", "D", "L", "", "x"}
	for i := 0; i < 200; i++ {
		var comps []Competition
		for c := 0; c < 1+rng.Intn(5); c++ {
			var rows []Row
			for r := 0; r < rng.Intn(6); r++ {
				form := ""
				for k := 0; k < rng.Intn(8); k++ {
					form += letters[rng.Intn(len(letters))] + ","
				}
				rows = append(rows, row(fmt.Sprintf("Team %d", r), rng.Intn(40), rng.Intn(100), form))
			}
			comps = append(comps, Competition{Code: fmt.Sprintf("C%d", c), Standings: table(rows...)})
		}
		sig := BuildSignals(Snapshot{Competitions: comps})
		for c := range comps {
			ld := sig.LeagueDifficulty(fmt.Sprintf("C%d", c))
			assert.GreaterOrEqual(t, ld, MinMultiplier)
			assert.LessOrEqual(t, ld, MaxMultiplier)
			for r := 0; r < 6; r++ {
				tf := sig.TeamForm(fmt.Sprintf("C%d", c), fmt.Sprintf("Team %d", r))
				assert.GreaterOrEqual(t, tf, MinMultiplier)
				assert.LessOrEqual(t, tf, MaxMultiplier)
			}
		}
	}
}
