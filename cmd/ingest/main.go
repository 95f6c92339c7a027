// Command ingest is the Scoracle site data pipeline CLI.
//
// Usage:
//
//	scoracle-ingest sync all
//	scoracle-ingest sync players
//	scoracle-ingest sync standings
//	scoracle-ingest sync history
//	scoracle-ingest merge --feed scorers.json --source football-data
//	scoracle-ingest leaderboard
//	scoracle-ingest publish
//	scoracle-ingest archives
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/scoracle-site/internal/config"
	"github.com/albapepper/scoracle-site/internal/db"
	"github.com/albapepper/scoracle-site/internal/ingest"
	"github.com/albapepper/scoracle-site/internal/provider"
	"github.com/albapepper/scoracle-site/internal/provider/statsbomb"
	"github.com/albapepper/scoracle-site/internal/publish"
	"github.com/albapepper/scoracle-site/internal/snapshot"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "scoracle-ingest",
		Short: "Scoracle site data pipeline",
	}

	root.AddCommand(syncCmd())
	root.AddCommand(mergeCmd())
	root.AddCommand(leaderboardCmd())
	root.AddCommand(publishCmd())
	root.AddCommand(archivesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// sync command
// --------------------------------------------------------------------------

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch upstream feeds into the snapshot files",
	}
	phases := []struct {
		use, short string
		fn         func(*ingest.Pipeline) func(context.Context) (ingest.Result, error)
	}{
		{"all", "Run every phase, then rebuild the leaderboard", func(p *ingest.Pipeline) func(context.Context) (ingest.Result, error) { return p.RunAll }},
		{"players", "Merge scorer feeds and FBref tables into players.json", func(p *ingest.Pipeline) func(context.Context) (ingest.Result, error) { return p.SyncPlayers }},
		{"standings", "Refresh standings.json from football-data.org", func(p *ingest.Pipeline) func(context.Context) (ingest.Result, error) { return p.SyncStandings }},
		{"history", "Refresh history.json from StatsBomb open data", func(p *ingest.Pipeline) func(context.Context) (ingest.Result, error) { return p.SyncHistory }},
	}
	for _, ph := range phases {
		cmd.AddCommand(&cobra.Command{
			Use:   ph.use,
			Short: ph.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPipeline("sync "+ph.use, func(ctx context.Context, p *ingest.Pipeline) (ingest.Result, error) {
					return ph.fn(p)(ctx)
				})
			},
		})
	}
	return cmd
}

// --------------------------------------------------------------------------
// merge command
// --------------------------------------------------------------------------

func mergeCmd() *cobra.Command {
	var (
		feed   string
		source string
	)
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a saved feed file into players.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			if feed == "" {
				return fmt.Errorf("--feed is required")
			}
			src := provider.Source(source)
			if !src.Valid() {
				return fmt.Errorf("unknown source %q", source)
			}
			rows, err := snapshot.ReadFeed(feed, src)
			if err != nil {
				return err
			}
			return runPipeline("merge", func(ctx context.Context, p *ingest.Pipeline) (ingest.Result, error) {
				return p.MergeFeed(ctx, rows)
			})
		},
	}
	cmd.Flags().StringVar(&feed, "feed", "", "Path to a JSON feed file")
	cmd.Flags().StringVar(&source, "source", string(provider.SourceSeed), "Source used when the feed does not declare one")
	return cmd
}

// --------------------------------------------------------------------------
// leaderboard command
// --------------------------------------------------------------------------

func leaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Score players.json against standings.json into leaderboard.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline("leaderboard", func(ctx context.Context, p *ingest.Pipeline) (ingest.Result, error) {
				return p.BuildLeaderboard(ctx)
			})
		},
	}
}

// --------------------------------------------------------------------------
// publish command
// --------------------------------------------------------------------------

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Mirror players.json and leaderboard.json into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store := snapshot.New(cfg.DataDir, logger)

			players, err := store.ReadPlayers()
			if err != nil {
				return fmt.Errorf("load players snapshot: %w", err)
			}
			board, err := store.ReadLeaderboard()
			if err != nil {
				return fmt.Errorf("load leaderboard snapshot: %w", err)
			}

			pool, err := db.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			start := time.Now()
			counts, err := publish.Publish(ctx, pool, players.Players, board.Entries, logger)
			if err != nil {
				return err
			}
			logger.Info("Publish finished",
				"players", counts.Players,
				"leaderboard", counts.Leaderboard,
				"duration", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// archives command
// --------------------------------------------------------------------------

func archivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archives",
		Short: "List StatsBomb open-data competition seasons for the pipeline file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			comps, err := statsbomb.NewClient(cfg.StatsBombBaseURL, 0, cfg.HTTPTimeout, logger).Competitions(ctx)
			if err != nil {
				return err
			}
			for _, c := range comps {
				logger.Info("Archive season",
					"competition_id", c.CompetitionID,
					"season_id", c.SeasonID,
					"competition", c.CompetitionName,
					"season", c.SeasonName)
			}
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runPipeline handles config loading, pipeline wiring, and context
// cancellation, then logs the run's summary and per-unit errors.
func runPipeline(name string, fn func(ctx context.Context, p *ingest.Pipeline) (ingest.Result, error)) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	p := ingest.FromConfig(cfg, snapshot.New(cfg.DataDir, logger), logger)

	start := time.Now()
	result, err := fn(ctx, p)
	logger.Info(name+" finished", "duration", time.Since(start).Round(time.Millisecond), "summary", result.Summary())
	for _, e := range result.Errors {
		logger.Error(name+" error", "error", e)
	}
	return err
}
