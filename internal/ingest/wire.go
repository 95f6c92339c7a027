package ingest

import (
	"log/slog"

	"github.com/albapepper/scoracle-site/internal/config"
	"github.com/albapepper/scoracle-site/internal/provider/fbref"
	"github.com/albapepper/scoracle-site/internal/provider/footballdata"
	"github.com/albapepper/scoracle-site/internal/provider/statsbomb"
	"github.com/albapepper/scoracle-site/internal/snapshot"
)

// FromConfig builds a pipeline with the live clients. football-data.org needs
// a token, so without FOOTBALL_DATA_API_KEY the scorer and standings sources
// stay unset and those phases only run on the free sources.
func FromConfig(cfg *config.Config, store *snapshot.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		Store:           store,
		Config:          cfg.Pipeline,
		Tables:          fbref.NewClient(cfg.FBrefBaseURL, cfg.FBrefRPM, cfg.HTTPTimeout, logger),
		Archive:         statsbomb.NewClient(cfg.StatsBombBaseURL, 0, cfg.HTTPTimeout, logger),
		Logger:          logger,
		MinMinutes:      cfg.MinMinutes,
		LeaderboardSize: cfg.LeaderboardSize,
	}

	if cfg.FootballDataAPIKey != "" {
		fd := footballdata.NewClient(cfg.FootballDataBaseURL, cfg.FootballDataAPIKey, cfg.FootballDataRPM, cfg.HTTPTimeout, logger)
		p.Scorers = fd
		p.Standings = fd
	} else {
		logger.Warn("FOOTBALL_DATA_API_KEY not set, skipping scorer and standings feeds")
	}
	return p
}
