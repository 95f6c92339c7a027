// Package publish mirrors the canonical snapshots into Postgres so other
// services can query them. The mirror is rebuilt from the snapshot on every
// publish: players are upserted by id, and the leaderboard table is replaced
// wholesale inside the same transaction.
package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/scoracle-site/internal/config"
	"github.com/albapepper/scoracle-site/internal/player"
	"github.com/albapepper/scoracle-site/internal/scoring"
)

// Beginner starts a transaction; satisfied by *pgxpool.Pool.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Counts reports rows written by Publish.
type Counts struct {
	Players     int
	Leaderboard int
}

// Schema creates the mirror tables when missing.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + config.PlayersTable + ` (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		position TEXT NOT NULL,
		team TEXT NOT NULL,
		competition TEXT,
		minutes DOUBLE PRECISION NOT NULL DEFAULT 0,
		goals DOUBLE PRECISION NOT NULL DEFAULT 0,
		assists DOUBLE PRECISION NOT NULL DEFAULT 0,
		shots DOUBLE PRECISION NOT NULL DEFAULT 0,
		shots_on_target DOUBLE PRECISION NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ` + config.LeaderboardTable + ` (
		rank INTEGER PRIMARY KEY,
		player_id TEXT NOT NULL,
		form_score DOUBLE PRECISION NOT NULL,
		value_score DOUBLE PRECISION NOT NULL,
		g90 DOUBLE PRECISION NOT NULL,
		a90 DOUBLE PRECISION NOT NULL,
		s90 DOUBLE PRECISION NOT NULL,
		league_difficulty DOUBLE PRECISION NOT NULL,
		team_form DOUBLE PRECISION NOT NULL,
		rival TEXT
	)`,
}

// Publish writes players and the leaderboard in one transaction.
func Publish(ctx context.Context, db Beginner, players []player.Record, board []scoring.Entry, logger *slog.Logger) (Counts, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var counts Counts

	tx, err := db.Begin(ctx)
	if err != nil {
		return counts, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range Schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return counts, fmt.Errorf("ensure schema: %w", err)
		}
	}

	for _, p := range players {
		if !p.Valid() {
			continue
		}
		if err := UpsertPlayer(ctx, tx, p); err != nil {
			return counts, fmt.Errorf("upsert player %s: %w", p.ID, err)
		}
		counts.Players++
	}

	if _, err := tx.Exec(ctx, `DELETE FROM `+config.LeaderboardTable); err != nil {
		return counts, fmt.Errorf("clear leaderboard: %w", err)
	}
	for i, e := range board {
		if err := InsertEntry(ctx, tx, i+1, e); err != nil {
			return counts, fmt.Errorf("insert leaderboard row %d: %w", i+1, err)
		}
		counts.Leaderboard++
	}

	if err := tx.Commit(ctx); err != nil {
		return counts, fmt.Errorf("commit: %w", err)
	}
	logger.Info("Published to Postgres", "players", counts.Players, "leaderboard", counts.Leaderboard)
	return counts, nil
}

// UpsertPlayer writes one canonical player. Counters overwrite the stored
// values.
func UpsertPlayer(ctx context.Context, tx pgx.Tx, p player.Record) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO `+config.PlayersTable+` (
			id, name, position, team, competition,
			minutes, goals, assists, shots, shots_on_target
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			position = EXCLUDED.position,
			team = EXCLUDED.team,
			competition = COALESCE(EXCLUDED.competition, `+config.PlayersTable+`.competition),
			minutes = EXCLUDED.minutes,
			goals = EXCLUDED.goals,
			assists = EXCLUDED.assists,
			shots = EXCLUDED.shots,
			shots_on_target = EXCLUDED.shots_on_target,
			updated_at = NOW()`,
		p.ID, p.Name, p.Position, p.Team, nilEmpty(p.Competition),
		p.Minutes, p.Goals, p.Assists, p.Shots, p.ShotsOnTarget,
	)
	return err
}

// InsertEntry writes one leaderboard row at the given 1-based rank.
func InsertEntry(ctx context.Context, tx pgx.Tx, rank int, e scoring.Entry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO `+config.LeaderboardTable+` (
			rank, player_id, form_score, value_score, g90, a90, s90,
			league_difficulty, team_form, rival
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rank, e.ID, e.FormScore, e.ValueScore, e.G90, e.A90, e.S90,
		e.LeagueDifficulty, e.TeamForm, nilEmpty(e.Rival),
	)
	return err
}

// nilEmpty maps "" to SQL NULL.
func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
