package footballdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-site/internal/player"
)

const scorersJSON = `{
  "competition": {"code": "PL", "name": "Premier League"},
  "scorers": [
    {"player": {"id": 1, "name": "Erling Haaland", "section": "Offence"}, "team": {"name": "Manchester City FC"},
     "playedMatches": 10, "goals": 12, "assists": null},
    {"player": {"id": 2, "name": "Bukayo Saka", "position": "Right Winger"}, "team": {"name": "Arsenal FC"},
     "playedMatches": 9, "goals": 6, "assists": 5}
  ]
}`

const standingsJSON = `{
  "competition": {"code": "PL", "name": "Premier League"},
  "season": {"startDate": "2024-08-16"},
  "standings": [
    {"stage": "REGULAR_SEASON", "type": "TOTAL", "table": [
      {"position": 1, "team": {"id": 57, "name": "Arsenal FC"}, "playedGames": 10, "points": 24, "form": "W,W,D,W,L"}
    ]},
    {"stage": "REGULAR_SEASON", "type": "HOME", "table": []}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message": "The resource you are looking for is restricted."}`))
			return
		}
		switch r.URL.Path {
		case "/competitions/PL/scorers":
			assert.Equal(t, "2024", r.URL.Query().Get("season"))
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			w.Write([]byte(scorersJSON))
		case "/competitions/PL/standings":
			w.Write([]byte(standingsJSON))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestGetScorers(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 6000, time.Second, nil)
	rows, err := c.GetScorers(context.Background(), "PL", 2024)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	recs := player.FromRows(rows)
	require.Len(t, recs, 2)

	haaland := recs[0]
	assert.Equal(t, "erling-haaland", haaland.ID)
	assert.Equal(t, "Offence", haaland.Position)
	assert.Equal(t, "Manchester City FC", haaland.Team)
	assert.Equal(t, "PL", haaland.Competition)
	assert.Equal(t, float64(10*MinutesPerAppearance), haaland.Minutes)
	assert.Equal(t, 12.0, haaland.Goals)
	assert.Equal(t, 0.0, haaland.Assists, "null assists become zero")

	assert.Equal(t, "Right Winger", recs[1].Position)
	assert.Equal(t, 5.0, recs[1].Assists)
}

func TestGetStandings(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL, "secret", 6000, time.Second, nil)
	comp, err := c.GetStandings(context.Background(), "PL", 0)
	require.NoError(t, err)
	assert.Equal(t, "PL", comp.Code)
	assert.Equal(t, 2024, comp.Season, "season falls back to the start year")
	rows := comp.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Arsenal FC", rows[0].Team.Name)
	assert.Equal(t, "W,W,D,W,L", rows[0].Form)
}

func TestGetForbidden(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL, "wrong", 6000, time.Second, nil)
	_, err := c.GetStandings(context.Background(), "PL", 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 403")
	assert.Contains(t, err.Error(), "restricted")
}
