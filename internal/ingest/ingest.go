// Package ingest runs the pipeline phases: fetch each competition in turn,
// reconcile player rows into the canonical snapshot, refresh standings and
// the match archive, and score the leaderboard.
//
// Every phase is fail-soft per unit of work. A failed fetch is logged,
// counted in the Result and recorded on that competition's slice; the phase
// moves on to the next competition. Only local file problems (a malformed
// snapshot, an unwritable data directory) and cancellation return an error.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/albapepper/scoracle-site/internal/config"
	"github.com/albapepper/scoracle-site/internal/metrics"
	"github.com/albapepper/scoracle-site/internal/player"
	"github.com/albapepper/scoracle-site/internal/provider"
	"github.com/albapepper/scoracle-site/internal/provider/statsbomb"
	"github.com/albapepper/scoracle-site/internal/scoring"
	"github.com/albapepper/scoracle-site/internal/snapshot"
	"github.com/albapepper/scoracle-site/internal/standings"
)

// ScorerSource yields scorer feed rows for one competition.
type ScorerSource interface {
	GetScorers(ctx context.Context, code string, season int) ([]provider.RawRow, error)
}

// StandingsSource yields one competition's league tables.
type StandingsSource interface {
	GetStandings(ctx context.Context, code string, season int) (standings.Competition, error)
}

// PlayerTableSource yields free-source player rows for one competition.
type PlayerTableSource interface {
	GetPlayers(ctx context.Context, compID, competition string, season int) ([]provider.RawRow, error)
}

// ArchiveSource yields one archived competition season.
type ArchiveSource interface {
	Archive(ctx context.Context, competitionID, seasonID int) (statsbomb.Archive, error)
}

// Pipeline wires the sources to the snapshot store. Nil sources are skipped.
type Pipeline struct {
	Store     *snapshot.Store
	Config    config.Pipeline
	Scorers   ScorerSource
	Standings StandingsSource
	Tables    PlayerTableSource
	Archive   ArchiveSource
	Logger    *slog.Logger

	MinMinutes      float64
	LeaderboardSize int
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// SyncPlayers fetches every configured competition's scorer feed and FBref
// table, then merges the rows into the players snapshot.
func (p *Pipeline) SyncPlayers(ctx context.Context) (Result, error) {
	var result Result
	var incoming []provider.RawRow

	for _, comp := range p.Config.Competitions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		season := p.Config.SeasonFor(comp)

		if p.Scorers != nil {
			p.logger().Info("Fetching scorers", "competition", comp.Code, "season", season)
			start := time.Now()
			rows, err := p.Scorers.GetScorers(ctx, comp.Code, season)
			metrics.ObserveFetch(string(provider.SourceFootballData), comp.Code, time.Since(start).Seconds(), err)
			if err != nil {
				p.logger().Error("Scorer fetch failed", "competition", comp.Code, "error", err)
				result.AddErrorf("scorers %s: %v", comp.Code, err)
			} else {
				incoming = append(incoming, rows...)
			}
		}

		if p.Tables != nil && comp.FBrefID != "" {
			p.logger().Info("Fetching FBref table", "competition", comp.Code, "fbref_id", comp.FBrefID)
			start := time.Now()
			rows, err := p.Tables.GetPlayers(ctx, comp.FBrefID, comp.Code, season)
			metrics.ObserveFetch(string(provider.SourceFBref), comp.Code, time.Since(start).Seconds(), err)
			if err != nil {
				p.logger().Error("FBref fetch failed", "competition", comp.Code, "error", err)
				result.AddErrorf("fbref %s: %v", comp.Code, err)
			} else {
				incoming = append(incoming, rows...)
			}
		}
	}

	merged, err := p.MergeFeed(ctx, incoming)
	merged.Errors = append(result.Errors, merged.Errors...)
	return merged, err
}

// MergeFeed merges a batch of raw rows into the players snapshot. An empty
// batch leaves the snapshot untouched. A missing snapshot starts from an
// empty player set.
func (p *Pipeline) MergeFeed(ctx context.Context, incoming []provider.RawRow) (Result, error) {
	result := Result{RowsFetched: len(incoming)}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	current, err := p.Store.ReadPlayers()
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		p.logger().Warn("No players snapshot yet, starting empty", "path", p.Store.Path(snapshot.PlayersFile))
	case err != nil:
		return result, fmt.Errorf("load players snapshot: %w", err)
	}

	if len(incoming) == 0 {
		p.logger().Warn("No incoming rows, players snapshot left untouched")
		result.PlayersInOutput = len(current.Players)
		return result, nil
	}

	merged := player.Merge(current.Players, incoming)
	next := current
	next.Players = merged
	if !slices.Equal(merged, current.Players) || current.GeneratedAt == "" {
		next.GeneratedAt = p.Store.Timestamp()
	}

	written, err := p.Store.WritePlayers(next)
	if err != nil {
		return result, err
	}
	if written {
		result.FilesWritten++
		metrics.SnapshotWritesTotal.WithLabelValues(snapshot.PlayersFile).Inc()
	}
	metrics.SnapshotPlayers.Set(float64(len(merged)))

	result.PlayersInOutput = len(merged)
	p.logger().Info("Players merged",
		"incoming", len(incoming), "before", len(current.Players), "after", len(merged), "written", written)
	return result, nil
}

// SyncStandings refreshes the standings snapshot. A run where every
// competition failed leaves the previous snapshot in place.
func (p *Pipeline) SyncStandings(ctx context.Context) (Result, error) {
	var result Result
	if p.Standings == nil {
		return result, nil
	}

	snap := standings.Snapshot{Competitions: make([]standings.Competition, 0, len(p.Config.Competitions))}
	for _, comp := range p.Config.Competitions {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		season := p.Config.SeasonFor(comp)

		p.logger().Info("Fetching standings", "competition", comp.Code, "season", season)
		start := time.Now()
		c, err := p.Standings.GetStandings(ctx, comp.Code, season)
		metrics.ObserveFetch(string(provider.SourceFootballData), comp.Code, time.Since(start).Seconds(), err)
		if err != nil {
			p.logger().Error("Standings fetch failed", "competition", comp.Code, "error", err)
			result.AddErrorf("standings %s: %v", comp.Code, err)
			c = standings.Competition{Code: comp.Code, Season: season, Standings: []standings.Table{}, Error: err.Error()}
		} else {
			result.Competitions++
		}
		if c.Name == "" {
			c.Name = comp.Name
		}
		snap.Competitions = append(snap.Competitions, c)
	}

	if result.Competitions == 0 {
		p.logger().Warn("No standings fetched, snapshot left untouched")
		return result, nil
	}

	snap.GeneratedAt = p.Store.Timestamp()
	written, err := p.Store.WriteStandings(snap)
	if err != nil {
		return result, err
	}
	if written {
		result.FilesWritten++
		metrics.SnapshotWritesTotal.WithLabelValues(snapshot.StandingsFile).Inc()
	}
	return result, nil
}

// SyncHistory refreshes the match archive from StatsBomb open data.
func (p *Pipeline) SyncHistory(ctx context.Context) (Result, error) {
	var result Result
	if p.Archive == nil || len(p.Config.Archive) == 0 {
		return result, nil
	}

	h := snapshot.History{Seasons: make([]statsbomb.Archive, 0, len(p.Config.Archive))}
	ok := 0
	for _, a := range p.Config.Archive {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		label := fmt.Sprintf("%d/%d", a.CompetitionID, a.SeasonID)

		p.logger().Info("Fetching archive", "competition_id", a.CompetitionID, "season_id", a.SeasonID)
		start := time.Now()
		season, err := p.Archive.Archive(ctx, a.CompetitionID, a.SeasonID)
		metrics.ObserveFetch(string(provider.SourceStatsBomb), label, time.Since(start).Seconds(), err)
		if err != nil {
			p.logger().Error("Archive fetch failed", "season", label, "error", err)
			result.AddErrorf("archive %s: %v", label, err)
			season = statsbomb.Archive{
				CompetitionID: a.CompetitionID,
				SeasonID:      a.SeasonID,
				Matches:       []statsbomb.Match{},
				Error:         err.Error(),
			}
		} else {
			ok++
			result.Matches += len(season.Matches)
		}
		h.Seasons = append(h.Seasons, season)
	}

	if ok == 0 {
		p.logger().Warn("No archive seasons fetched, snapshot left untouched")
		return result, nil
	}

	h.GeneratedAt = p.Store.Timestamp()
	written, err := p.Store.WriteHistory(h)
	if err != nil {
		return result, err
	}
	if written {
		result.FilesWritten++
		metrics.SnapshotWritesTotal.WithLabelValues(snapshot.HistoryFile).Inc()
	}
	return result, nil
}

// BuildLeaderboard scores the players snapshot against the standings
// snapshot. Both files must exist.
func (p *Pipeline) BuildLeaderboard(ctx context.Context) (Result, error) {
	var result Result
	if err := ctx.Err(); err != nil {
		return result, err
	}

	players, err := p.Store.ReadPlayers()
	if err != nil {
		return result, fmt.Errorf("load players snapshot: %w", err)
	}
	snap, err := p.Store.ReadStandings()
	if err != nil {
		return result, fmt.Errorf("load standings snapshot: %w", err)
	}

	board := scoring.BuildLeaderboard(players.Players, standings.BuildSignals(snap), scoring.Options{
		MinMinutes: p.MinMinutes,
		Limit:      p.LeaderboardSize,
		Rivals:     p.Config.Rivals,
	})

	written, err := p.Store.WriteLeaderboard(snapshot.Leaderboard{
		GeneratedAt: p.Store.Timestamp(),
		MinMinutes:  p.MinMinutes,
		Entries:     board,
	})
	if err != nil {
		return result, err
	}
	if written {
		result.FilesWritten++
		metrics.SnapshotWritesTotal.WithLabelValues(snapshot.LeaderboardFile).Inc()
	}

	result.LeaderboardRows = len(board)
	p.logger().Info("Leaderboard built", "players", len(players.Players), "rows", len(board))
	return result, nil
}

// RunAll runs every phase in order and stops at the first local failure.
func (p *Pipeline) RunAll(ctx context.Context) (Result, error) {
	var total Result
	phases := []struct {
		name string
		fn   func(context.Context) (Result, error)
	}{
		{"players", p.SyncPlayers},
		{"standings", p.SyncStandings},
		{"history", p.SyncHistory},
		{"leaderboard", p.BuildLeaderboard},
	}
	for _, ph := range phases {
		r, err := ph.fn(ctx)
		total.Add(r)
		if err != nil {
			return total, fmt.Errorf("%s: %w", ph.name, err)
		}
	}
	return total, nil
}
