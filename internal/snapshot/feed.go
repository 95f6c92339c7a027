package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/albapepper/scoracle-site/internal/provider"
)

// feedFile is the object form of a scorer feed. A bare JSON array of rows is
// also accepted.
type feedFile struct {
	Source      string                   `json:"source"`
	Competition string                   `json:"competition"`
	Players     []map[string]interface{} `json:"players"`
	Scorers     []map[string]interface{} `json:"scorers"`
}

// ReadFeed loads a scorer feed from path. Rows are tagged with the feed's
// declared source (fallback when absent), and a feed-level competition is
// copied onto rows that do not name their own.
func ReadFeed(path string, fallback provider.Source) ([]provider.RawRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("feed %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read feed %s: %w", path, err)
	}
	return ParseFeed(data, fallback)
}

// ParseFeed decodes feed bytes; see ReadFeed.
func ParseFeed(data []byte, fallback provider.Source) ([]provider.RawRow, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode feed: empty document")
	}

	var f feedFile
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &f.Players); err != nil {
			return nil, fmt.Errorf("decode feed: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	src := fallback
	if s := strings.TrimSpace(f.Source); s != "" {
		src = provider.Source(s)
		if !src.Valid() {
			return nil, fmt.Errorf("decode feed: unknown source %q", s)
		}
	}

	rows := append(f.Players, f.Scorers...)
	out := provider.RowsFrom(src, rows)
	if comp := strings.TrimSpace(f.Competition); comp != "" {
		for _, row := range out {
			if _, ok := row.Lookup("competition", "league", "comp"); !ok {
				row.Fields["competition"] = comp
			}
		}
	}
	return out, nil
}
