// Package schedule runs the ingest pipeline on a cron schedule inside the
// long-running API process, so a deployment does not need an external cron.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/albapepper/scoracle-site/internal/ingest"
	"github.com/albapepper/scoracle-site/internal/metrics"
)

// Job is one pipeline run.
type Job func(ctx context.Context) (ingest.Result, error)

// Start schedules job on expr (standard 5-field cron syntax or descriptors
// such as @hourly) and blocks until ctx is cancelled. A run that is still
// going when the next tick fires causes that tick to be skipped. Intended
// to be called with `go` after Validate has accepted expr.
func Start(ctx context.Context, expr string, job Job, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	c, err := newCron(ctx, expr, job, logger)
	if err != nil {
		return err
	}

	c.Start()
	logger.Info("Sync schedule started", "cron", expr)

	<-ctx.Done()
	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("Sync run still in progress at shutdown")
	}
	logger.Info("Sync schedule stopped")
	return nil
}

// Validate reports whether expr parses.
func Validate(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid SYNC_CRON %q: %w", expr, err)
	}
	return nil
}

func newCron(ctx context.Context, expr string, job Job, logger *slog.Logger) (*cron.Cron, error) {
	if err := Validate(expr); err != nil {
		return nil, err
	}
	cl := cronLogger{logger: logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))
	if _, err := c.AddFunc(expr, func() { run(ctx, job, logger) }); err != nil {
		return nil, fmt.Errorf("schedule sync: %w", err)
	}
	return c, nil
}

func run(ctx context.Context, job Job, logger *slog.Logger) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	logger.Info("Scheduled sync starting")

	result, err := job(ctx)
	if err != nil {
		metrics.SyncRunsTotal.WithLabelValues(metrics.StatusError).Inc()
		logger.Error("Scheduled sync failed", "error", err, "summary", result.Summary())
		return
	}
	metrics.SyncRunsTotal.WithLabelValues(metrics.StatusOK).Inc()
	logger.Info("Scheduled sync finished",
		"duration", time.Since(start).Round(time.Second), "summary", result.Summary())
	for _, e := range result.Errors {
		logger.Warn("sync error", "error", e)
	}
}

// cronLogger routes cron's internal logging to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
