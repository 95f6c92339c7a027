// Package snapshot persists the pipeline's JSON artifacts under the data
// directory. Every file is rewritten wholesale; writes go through a temp file
// and rename, and are skipped when the encoded bytes match what is on disk.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/albapepper/scoracle-site/internal/player"
	"github.com/albapepper/scoracle-site/internal/provider"
	"github.com/albapepper/scoracle-site/internal/provider/statsbomb"
	"github.com/albapepper/scoracle-site/internal/scoring"
	"github.com/albapepper/scoracle-site/internal/standings"
)

// File names under the data directory.
const (
	PlayersFile     = "players.json"
	StandingsFile   = "standings.json"
	HistoryFile     = "history.json"
	LeaderboardFile = "leaderboard.json"
)

// ErrNotFound is returned when a snapshot file does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Players is the canonical players snapshot. Competitions and History are
// carried through untouched.
type Players struct {
	GeneratedAt  string          `json:"generated_at"`
	Players      []player.Record `json:"players"`
	Competitions json.RawMessage `json:"competitions"`
	History      json.RawMessage `json:"history"`
}

// rawPlayers is the on-disk shape before normalization; hand-edited files
// use whatever field spellings the seed aliases accept.
type rawPlayers struct {
	GeneratedAt  string                   `json:"generated_at"`
	Players      []map[string]interface{} `json:"players"`
	Competitions json.RawMessage          `json:"competitions"`
	History      json.RawMessage          `json:"history"`
}

// History is the StatsBomb archive snapshot.
type History struct {
	GeneratedAt string              `json:"generated_at"`
	Seasons     []statsbomb.Archive `json:"seasons"`
}

// Leaderboard is the scored board consumed by the page renderer.
type Leaderboard struct {
	GeneratedAt string          `json:"generated_at"`
	MinMinutes  float64         `json:"min_minutes"`
	Entries     []scoring.Entry `json:"entries"`
}

// Store reads and writes snapshot files rooted at one directory.
type Store struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a store rooted at dir.
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger, now: time.Now}
}

// Dir returns the root directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the absolute location of a snapshot file.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// Timestamp formats the current time the way every snapshot records it.
func (s *Store) Timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// ReadPlayers loads and normalizes the players snapshot. Rows that do not
// yield a valid record are dropped.
func (s *Store) ReadPlayers() (Players, error) {
	var raw rawPlayers
	if err := s.readJSON(PlayersFile, &raw); err != nil {
		return Players{}, err
	}
	return Players{
		GeneratedAt:  raw.GeneratedAt,
		Players:      player.FromRows(provider.RowsFrom(provider.SourceSeed, raw.Players)),
		Competitions: raw.Competitions,
		History:      raw.History,
	}, nil
}

// WritePlayers persists the players snapshot. Missing passthrough sections
// are written as empty arrays.
func (s *Store) WritePlayers(p Players) (bool, error) {
	if p.Players == nil {
		p.Players = []player.Record{}
	}
	p.Competitions = orEmptyArray(p.Competitions)
	p.History = orEmptyArray(p.History)
	return s.writeJSON(PlayersFile, p)
}

// ReadStandings loads the standings snapshot.
func (s *Store) ReadStandings() (standings.Snapshot, error) {
	var snap standings.Snapshot
	err := s.readJSON(StandingsFile, &snap)
	return snap, err
}

// WriteStandings persists the standings snapshot.
func (s *Store) WriteStandings(snap standings.Snapshot) (bool, error) {
	if snap.Competitions == nil {
		snap.Competitions = []standings.Competition{}
	}
	return s.writeJSON(StandingsFile, snap)
}

// ReadHistory loads the archive snapshot.
func (s *Store) ReadHistory() (History, error) {
	var h History
	err := s.readJSON(HistoryFile, &h)
	return h, err
}

// WriteHistory persists the archive snapshot.
func (s *Store) WriteHistory(h History) (bool, error) {
	if h.Seasons == nil {
		h.Seasons = []statsbomb.Archive{}
	}
	return s.writeJSON(HistoryFile, h)
}

// ReadLeaderboard loads the scored board.
func (s *Store) ReadLeaderboard() (Leaderboard, error) {
	var lb Leaderboard
	err := s.readJSON(LeaderboardFile, &lb)
	return lb, err
}

// WriteLeaderboard persists the scored board.
func (s *Store) WriteLeaderboard(lb Leaderboard) (bool, error) {
	if lb.Entries == nil {
		lb.Entries = []scoring.Entry{}
	}
	return s.writeJSON(LeaderboardFile, lb)
}

// ReadRaw returns a snapshot file's bytes as stored.
func (s *Store) ReadRaw(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

func (s *Store) readJSON(name string, v interface{}) error {
	data, err := s.ReadRaw(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// writeJSON reports whether the file changed on disk.
func (s *Store) writeJSON(name string, v interface{}) (bool, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", name, err)
	}
	data = append(data, '\n')

	written, err := writeAtomic(s.Path(name), data)
	if err != nil {
		return false, fmt.Errorf("write %s: %w", name, err)
	}
	if written {
		s.logger.Info("Snapshot written", "file", name, "bytes", len(data))
	} else {
		s.logger.Debug("Snapshot unchanged", "file", name)
	}
	return written, nil
}

func writeAtomic(target string, data []byte) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, err
	}
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return false, err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return false, err
	}
	return true, nil
}

func orEmptyArray(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return json.RawMessage("[]")
	}
	return raw
}
