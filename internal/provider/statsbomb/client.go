// Package statsbomb reads StatsBomb's open-data archive: the competition
// index and per-season match lists. The archive is static JSON served from a
// git host, so there is no auth and no pagination.
package statsbomb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/scoracle-site/internal/provider"
)

// DefaultBaseURL is the raw data root of the public open-data repository.
const DefaultBaseURL = "https://raw.githubusercontent.com/statsbomb/open-data/master/data"

// Client fetches archive files.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an archive client. requestsPerMinute <= 0 disables
// throttling.
func NewClient(baseURL string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if requestsPerMinute > 0 {
		limit = rate.Limit(float64(requestsPerMinute) / 60.0)
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// Competition is one entry of competitions.json.
type Competition struct {
	CompetitionID   int    `json:"competition_id"`
	SeasonID        int    `json:"season_id"`
	CountryName     string `json:"country_name"`
	CompetitionName string `json:"competition_name"`
	SeasonName      string `json:"season_name"`
}

// Match is a finished fixture in the archive.
type Match struct {
	ID        int    `json:"match_id"`
	Date      string `json:"match_date"`
	KickOff   string `json:"kick_off,omitempty"`
	Week      int    `json:"match_week,omitempty"`
	Stage     string `json:"stage,omitempty"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
}

// Archive is one competition season's match list. Error replaces Matches when
// the fetch failed.
type Archive struct {
	CompetitionID int     `json:"competition_id"`
	SeasonID      int     `json:"season_id"`
	Competition   string  `json:"competition"`
	Season        string  `json:"season"`
	Matches       []Match `json:"matches"`
	Error         string  `json:"error,omitempty"`
}

// apiMatch mirrors the archive's nested match shape.
type apiMatch struct {
	MatchID     int    `json:"match_id"`
	MatchDate   string `json:"match_date"`
	KickOff     string `json:"kick_off"`
	MatchWeek   int    `json:"match_week"`
	Competition struct {
		Name string `json:"competition_name"`
	} `json:"competition"`
	Season struct {
		Name string `json:"season_name"`
	} `json:"season"`
	HomeTeam struct {
		Name string `json:"home_team_name"`
	} `json:"home_team"`
	AwayTeam struct {
		Name string `json:"away_team_name"`
	} `json:"away_team"`
	HomeScore        *int `json:"home_score"`
	AwayScore        *int `json:"away_score"`
	CompetitionStage struct {
		Name string `json:"name"`
	} `json:"competition_stage"`
}

// Competitions fetches the archive's competition/season index.
func (c *Client) Competitions(ctx context.Context) ([]Competition, error) {
	var out []Competition
	if err := c.get(ctx, "/competitions.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Archive fetches one competition season and orders its matches by date.
func (c *Client) Archive(ctx context.Context, competitionID, seasonID int) (Archive, error) {
	var raw []apiMatch
	path := fmt.Sprintf("/matches/%d/%d.json", competitionID, seasonID)
	if err := c.get(ctx, path, &raw); err != nil {
		return Archive{}, err
	}

	a := Archive{
		CompetitionID: competitionID,
		SeasonID:      seasonID,
		Matches:       make([]Match, 0, len(raw)),
	}
	for _, m := range raw {
		if a.Competition == "" {
			a.Competition = m.Competition.Name
			a.Season = m.Season.Name
		}
		a.Matches = append(a.Matches, Match{
			ID:        m.MatchID,
			Date:      m.MatchDate,
			KickOff:   m.KickOff,
			Week:      m.MatchWeek,
			Stage:     m.CompetitionStage.Name,
			HomeTeam:  m.HomeTeam.Name,
			AwayTeam:  m.AwayTeam.Name,
			HomeScore: m.HomeScore,
			AwayScore: m.AwayScore,
		})
	}
	sort.SliceStable(a.Matches, func(i, j int) bool {
		if a.Matches[i].Date != a.Matches[j].Date {
			return a.Matches[i].Date < a.Matches[j].Date
		}
		return a.Matches[i].ID < a.Matches[j].ID
	})

	c.logger.Debug("Archive fetched",
		"competition_id", competitionID, "season_id", seasonID, "matches", len(a.Matches))
	return a, nil
}

func (c *Client) get(ctx context.Context, path string, v interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("statsbomb %s returned %d: %s", path, resp.StatusCode, provider.Truncate(body, 200))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
