// Package fbref scrapes FBref's competition stat tables as a free player
// source. Pages are fetched politely (one request at a time behind a slow
// token bucket) and parsed with goquery by each cell's data-stat attribute.
package fbref

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/albapepper/scoracle-site/internal/provider"
)

// DefaultBaseURL is the public site root.
const DefaultBaseURL = "https://fbref.com"

const userAgent = "scoracle-ingest/1.0 (+https://scoracle.com)"

// statFields maps FBref data-stat names to the keys the normalizer probes.
var statFields = map[string]string{
	"player":          "player",
	"position":        "pos",
	"team":            "squad",
	"minutes":         "min",
	"goals":           "gls",
	"assists":         "ast",
	"shots":           "sh",
	"shots_on_target": "sot",
}

// Client fetches and parses FBref pages.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates an FBref client. FBref bans aggressive crawlers, so the
// default budget is a handful of requests per minute.
func NewClient(baseURL string, requestsPerMinute int, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 6
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
		logger:     logger,
	}
}

// GetPlayers scrapes the standard stats table of a competition and joins the
// shooting table onto it. A failed shooting fetch is logged and the standard
// rows are returned alone. competition is written onto every row.
func (c *Client) GetPlayers(ctx context.Context, compID, competition string, season int) ([]provider.RawRow, error) {
	page, err := c.fetch(ctx, statsPath(compID, "stats", season))
	if err != nil {
		return nil, err
	}
	rows, err := ParseTable(page, "stats_standard")
	if err != nil {
		return nil, err
	}

	shootingPage, err := c.fetch(ctx, statsPath(compID, "shooting", season))
	if err != nil {
		c.logger.Warn("FBref shooting table unavailable", "comp_id", compID, "error", err)
	} else if shooting, err := ParseTable(shootingPage, "stats_shooting"); err != nil {
		c.logger.Warn("FBref shooting table unparsable", "comp_id", compID, "error", err)
	} else {
		joinShooting(rows, shooting)
	}

	out := make([]provider.RawRow, 0, len(rows))
	for _, fields := range rows {
		if competition != "" {
			fields["comp"] = competition
		}
		out = append(out, provider.NewRawRow(provider.SourceFBref, fields))
	}
	c.logger.Debug("FBref players parsed", "comp_id", compID, "season", season, "rows", len(out))
	return out, nil
}

// ParseTable extracts player rows from the first table whose id starts with
// tableID. FBref ships most stat tables inside HTML comments; those are
// unwrapped before parsing.
func ParseTable(page []byte, tableID string) ([]map[string]interface{}, error) {
	clean := bytes.ReplaceAll(page, []byte("<!--"), nil)
	clean = bytes.ReplaceAll(clean, []byte("-->"), nil)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(clean))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find(fmt.Sprintf("table[id^='%s']", tableID)).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("table %s not found", tableID)
	}

	var rows []map[string]interface{}
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.HasClass("thead") || tr.HasClass("spacer") {
			return
		}
		fields := make(map[string]interface{})
		tr.Find("th[data-stat], td[data-stat]").Each(func(_ int, cell *goquery.Selection) {
			stat, _ := cell.Attr("data-stat")
			key, ok := statFields[stat]
			if !ok {
				return
			}
			if text := strings.TrimSpace(cell.Text()); text != "" {
				fields[key] = text
			}
		})
		if _, ok := fields["player"]; !ok {
			return
		}
		rows = append(rows, fields)
	})
	return rows, nil
}

// joinShooting copies shot counters onto standard rows with the same player
// and squad.
func joinShooting(rows, shooting []map[string]interface{}) {
	index := make(map[string]map[string]interface{}, len(shooting))
	for _, s := range shooting {
		index[joinKey(s)] = s
	}
	for _, r := range rows {
		s, ok := index[joinKey(r)]
		if !ok {
			continue
		}
		for _, k := range []string{"sh", "sot"} {
			if v, ok := s[k]; ok {
				if _, has := r[k]; !has {
					r[k] = v
				}
			}
		}
	}
}

func joinKey(fields map[string]interface{}) string {
	return provider.ExtractString(fields["player"]) + "|" + provider.ExtractString(fields["squad"])
}

func statsPath(compID, kind string, season int) string {
	if season > 0 {
		return fmt.Sprintf("/en/comps/%s/%d-%d/%s/", compID, season, season+1, kind)
	}
	return fmt.Sprintf("/en/comps/%s/%s/", compID, kind)
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fbref %s returned %d: %s", path, resp.StatusCode, provider.Truncate(body, 200))
	}
	return body, nil
}
