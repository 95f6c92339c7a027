package ingest

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-site/internal/config"
	"github.com/albapepper/scoracle-site/internal/provider"
	"github.com/albapepper/scoracle-site/internal/provider/statsbomb"
	"github.com/albapepper/scoracle-site/internal/snapshot"
	"github.com/albapepper/scoracle-site/internal/standings"
)

type fakeScorers map[string][]map[string]interface{}

func (f fakeScorers) GetScorers(_ context.Context, code string, _ int) ([]provider.RawRow, error) {
	rows, ok := f[code]
	if !ok {
		return nil, errors.New("football-data /competitions/" + code + "/scorers returned 403")
	}
	return provider.RowsFrom(provider.SourceFootballData, rows), nil
}

type fakeTables map[string][]map[string]interface{}

func (f fakeTables) GetPlayers(_ context.Context, compID, competition string, _ int) ([]provider.RawRow, error) {
	rows, ok := f[compID]
	if !ok {
		return nil, errors.New("fbref returned 429")
	}
	out := provider.RowsFrom(provider.SourceFBref, rows)
	for _, r := range out {
		r.Fields["comp"] = competition
	}
	return out, nil
}

type fakeStandings map[string]standings.Competition

func (f fakeStandings) GetStandings(_ context.Context, code string, _ int) (standings.Competition, error) {
	c, ok := f[code]
	if !ok {
		return standings.Competition{}, errors.New("standings unavailable")
	}
	return c, nil
}

type fakeArchive map[int]statsbomb.Archive

func (f fakeArchive) Archive(_ context.Context, competitionID, _ int) (statsbomb.Archive, error) {
	a, ok := f[competitionID]
	if !ok {
		return statsbomb.Archive{}, errors.New("archive missing")
	}
	return a, nil
}

func total(team string, played, points int, form string) []standings.Table {
	return []standings.Table{{Type: "TOTAL", Table: []standings.Row{
		{Team: standings.Team{Name: team}, PlayedGames: played, Points: points, Form: form},
	}}}
}

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return &Pipeline{
		Store: snapshot.New(t.TempDir(), nil),
		Config: config.Pipeline{
			Season: 2024,
			Competitions: []config.Competition{
				{Code: "PL", Name: "Premier League", FBrefID: "9"},
				{Code: "CL", Name: "Champions League"},
				{Code: "ELC", Name: "Championship"},
			},
			Archive: []config.ArchiveSeason{{CompetitionID: 43, SeasonID: 106}, {CompetitionID: 55, SeasonID: 282}},
			Rivals:  map[string]string{"harry-kane": "erling-haaland"},
		},
		Scorers: fakeScorers{
			"PL": {
				{"name": "Erling Haaland", "team": "Manchester City FC", "competition": "PL", "goals": 12, "minutes_estimate": 850},
				{"name": "Harry Kane", "team": "Tottenham Hotspur FC", "competition": "PL", "goals": 9, "minutes_estimate": 950},
			},
			"ELC": {
				{"name": "Joel Piroe", "team": "Leeds United FC", "competition": "ELC", "goals": 9, "minutes_estimate": 900},
			},
		},
		Tables: fakeTables{
			"9": {{"player": "Erling Haaland", "squad": "Manchester City", "pos": "FW", "min": "860", "sh": "40", "sot": "22"}},
		},
		Standings: fakeStandings{
			"PL":  {Code: "PL", Standings: total("Manchester City FC", 10, 25, "W,W,W,D,W")},
			"ELC": {Code: "ELC", Standings: total("Leeds United FC", 10, 12, "L,D,L,W,L")},
		},
		Archive: fakeArchive{
			43: {CompetitionID: 43, SeasonID: 106, Competition: "FIFA World Cup", Matches: []statsbomb.Match{{ID: 1}, {ID: 2}}},
		},
	}
}

func seedPlayers(t *testing.T, s *snapshot.Store) {
	t.Helper()
	seed := `{"generated_at": "2025-01-01T00:00:00Z", "players": [
  {"id": "harry-kane", "name": "Harry Kane", "position": "FW", "team": "Tottenham Hotspur FC", "competition": "PL",
   "minutes": 900, "goals": 10, "assists": 2, "shots": 30, "shotsOnTarget": 15}
], "competitions": [{"code": "PL"}], "history": []}`
	require.NoError(t, os.WriteFile(s.Path(snapshot.PlayersFile), []byte(seed), 0o644))
}

func TestSyncPlayersIsFailSoft(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)
	seedPlayers(t, p.Store)

	res, err := p.SyncPlayers(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Errors, 1, "CL scorers fail, the rest continue")
	assert.Contains(t, res.Errors[0], "scorers CL")
	assert.Equal(t, 4, res.RowsFetched)
	assert.Equal(t, 3, res.PlayersInOutput)
	assert.Equal(t, 1, res.FilesWritten)

	snap, err := p.Store.ReadPlayers()
	require.NoError(t, err)
	require.Len(t, snap.Players, 3)
	assert.JSONEq(t, `[{"code": "PL"}]`, string(snap.Competitions))

	byID := map[string]int{}
	for i, r := range snap.Players {
		byID[r.ID] = i
	}
	kane := snap.Players[byID["harry-kane"]]
	assert.Equal(t, 950.0, kane.Minutes)
	assert.Equal(t, 10.0, kane.Goals, "counters take the max, never the sum")
	assert.Equal(t, "FW", kane.Position, "a blank incoming position keeps the existing one")

	haaland := snap.Players[byID["erling-haaland"]]
	assert.Equal(t, 860.0, haaland.Minutes)
	assert.Equal(t, 40.0, haaland.Shots)
	assert.Equal(t, "Manchester City", haaland.Team, "later non-default team wins")
}

func TestSyncPlayersTwiceIsIdempotent(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)
	seedPlayers(t, p.Store)

	_, err := p.SyncPlayers(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(p.Store.Path(snapshot.PlayersFile))
	require.NoError(t, err)

	res, err := p.SyncPlayers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.FilesWritten)

	second, err := os.ReadFile(p.Store.Path(snapshot.PlayersFile))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestMergeFeedEmptyLeavesSnapshot(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)
	seedPlayers(t, p.Store)
	before, err := os.ReadFile(p.Store.Path(snapshot.PlayersFile))
	require.NoError(t, err)

	res, err := p.MergeFeed(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.FilesWritten)
	assert.Equal(t, 1, res.PlayersInOutput)

	after, err := os.ReadFile(p.Store.Path(snapshot.PlayersFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMergeFeedRejectsMalformedSnapshot(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)
	require.NoError(t, os.WriteFile(p.Store.Path(snapshot.PlayersFile), []byte(`{"players": 7}`), 0o644))

	_, err := p.MergeFeed(context.Background(), provider.RowsFrom(provider.SourceSeed, []map[string]interface{}{{"name": "X"}}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load players snapshot")
}

func TestSyncStandingsRecordsErrors(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	res, err := p.SyncStandings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Competitions)
	require.Len(t, res.Errors, 1)

	snap, err := p.Store.ReadStandings()
	require.NoError(t, err)
	require.Len(t, snap.Competitions, 3)
	assert.Equal(t, "CL", snap.Competitions[1].Code)
	assert.Equal(t, "standings unavailable", snap.Competitions[1].Error)
	assert.Equal(t, "Champions League", snap.Competitions[1].Name)
	assert.NotNil(t, snap.Competitions[1].Standings)
}

func TestSyncStandingsAllFailedKeepsSnapshot(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)
	p.Standings = fakeStandings{}

	res, err := p.SyncStandings(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Errors, 3)
	_, err = p.Store.ReadStandings()
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestSyncHistory(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)

	res, err := p.SyncHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Matches)
	assert.Len(t, res.Errors, 1)

	h, err := p.Store.ReadHistory()
	require.NoError(t, err)
	require.Len(t, h.Seasons, 2)
	assert.Equal(t, "FIFA World Cup", h.Seasons[0].Competition)
	assert.Equal(t, "archive missing", h.Seasons[1].Error)
}

func TestRunAllBuildsLeaderboard(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)
	p.MinMinutes = 100
	seedPlayers(t, p.Store)

	res, err := p.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.LeaderboardRows)
	assert.Equal(t, 4, res.FilesWritten)

	lb, err := p.Store.ReadLeaderboard()
	require.NoError(t, err)
	require.Len(t, lb.Entries, 3)
	assert.Equal(t, "erling-haaland", lb.Entries[0].ID)
	assert.Equal(t, "harry-kane", lb.Entries[0].Rival)
	assert.InDelta(t, standings.MaxMultiplier, lb.Entries[0].LeagueDifficulty, 1e-9)
	for _, e := range lb.Entries {
		assert.GreaterOrEqual(t, e.TeamForm, standings.MinMultiplier)
		assert.LessOrEqual(t, e.TeamForm, standings.MaxMultiplier)
	}
}

func TestBuildLeaderboardNeedsStandings(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)
	seedPlayers(t, p.Store)

	_, err := p.BuildLeaderboard(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestCancelledContextStops(t *testing.T) {
	t.Parallel()
	p := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.RunAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFromConfigWiresSources(t *testing.T) {
	t.Parallel()
	store := snapshot.New(t.TempDir(), nil)
	cfg := &config.Config{Pipeline: config.DefaultPipeline(), MinMinutes: 270, LeaderboardSize: 50}

	p := FromConfig(cfg, store, nil)
	assert.Nil(t, p.Scorers, "no token means no football-data feed")
	assert.Nil(t, p.Standings)
	assert.NotNil(t, p.Tables)
	assert.NotNil(t, p.Archive)
	assert.Equal(t, 50, p.LeaderboardSize)

	cfg.FootballDataAPIKey = "secret"
	p = FromConfig(cfg, store, nil)
	assert.NotNil(t, p.Scorers)
	assert.NotNil(t, p.Standings)
}
