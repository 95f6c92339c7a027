// Package footballdata provides the football-data.org v4 client used for the
// scorer feed and league standings.
//
// The API authenticates with an X-Auth-Token header and enforces a
// per-minute request quota (10/min on the free tier), so every call waits on
// a token bucket limiter first.
package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/albapepper/scoracle-site/internal/provider"
	"github.com/albapepper/scoracle-site/internal/standings"
)

// DefaultBaseURL is the public v4 endpoint.
const DefaultBaseURL = "https://api.football-data.org/v4"

// MinutesPerAppearance turns the feed's appearance count into a playing-time
// estimate; the scorers endpoint reports no minutes.
const MinutesPerAppearance = 85

// scorerLimit is the largest page the scorers endpoint returns.
const scorerLimit = 100

// Client is the football-data.org HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a football-data client with rate limiting.
func NewClient(baseURL, apiKey string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

type scorersResponse struct {
	Competition struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"competition"`
	Scorers []struct {
		Player struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			Position string `json:"position"`
			Section  string `json:"section"`
		} `json:"player"`
		Team struct {
			Name string `json:"name"`
		} `json:"team"`
		PlayedMatches *int `json:"playedMatches"`
		Goals         *int `json:"goals"`
		Assists       *int `json:"assists"`
	} `json:"scorers"`
}

// GetScorers fetches the top scorers of a competition as raw feed rows.
// season is the starting year; 0 asks for the current season.
func (c *Client) GetScorers(ctx context.Context, code string, season int) ([]provider.RawRow, error) {
	params := url.Values{"limit": {strconv.Itoa(scorerLimit)}}
	if season > 0 {
		params.Set("season", strconv.Itoa(season))
	}

	var resp scorersResponse
	if err := c.get(ctx, "/competitions/"+url.PathEscape(code)+"/scorers", params, &resp); err != nil {
		return nil, err
	}

	comp := resp.Competition.Code
	if comp == "" {
		comp = code
	}

	rows := make([]provider.RawRow, 0, len(resp.Scorers))
	for _, s := range resp.Scorers {
		fields := map[string]interface{}{
			"name":        s.Player.Name,
			"team":        s.Team.Name,
			"competition": comp,
			"goals":       intOrNil(s.Goals),
			"assists":     intOrNil(s.Assists),
		}
		// position is the detailed role; section is the coarse line.
		if s.Player.Position != "" {
			fields["position"] = s.Player.Position
		} else {
			fields["position"] = s.Player.Section
		}
		if s.PlayedMatches != nil {
			fields["minutes_estimate"] = *s.PlayedMatches * MinutesPerAppearance
		}
		rows = append(rows, provider.NewRawRow(provider.SourceFootballData, fields))
	}

	c.logger.Debug("Scorers fetched", "competition", comp, "season", season, "rows", len(rows))
	return rows, nil
}

type standingsResponse struct {
	Competition struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"competition"`
	Season struct {
		StartDate string `json:"startDate"`
	} `json:"season"`
	Standings []standings.Table `json:"standings"`
}

// GetStandings fetches every standings block of a competition.
func (c *Client) GetStandings(ctx context.Context, code string, season int) (standings.Competition, error) {
	var params url.Values
	if season > 0 {
		params = url.Values{"season": {strconv.Itoa(season)}}
	}

	var resp standingsResponse
	if err := c.get(ctx, "/competitions/"+url.PathEscape(code)+"/standings", params, &resp); err != nil {
		return standings.Competition{}, err
	}

	comp := standings.Competition{
		Code:      resp.Competition.Code,
		Name:      resp.Competition.Name,
		Season:    season,
		Standings: resp.Standings,
	}
	if comp.Code == "" {
		comp.Code = code
	}
	if comp.Season == 0 && len(resp.Season.StartDate) >= 4 {
		comp.Season, _ = strconv.Atoi(resp.Season.StartDate[:4])
	}
	if comp.Standings == nil {
		comp.Standings = []standings.Table{}
	}
	return comp, nil
}

// get performs a rate-limited GET request and decodes the JSON body into v.
func (c *Client) get(ctx context.Context, path string, params url.Values, v interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Auth-Token", c.apiKey)
	}

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
		return fmt.Errorf("football-data %s returned %d: %s", path, resp.StatusCode, provider.Truncate(body, 200))
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func intOrNil(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
