// Package metrics holds the Prometheus collectors shared by the ingest
// pipeline and the API server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts upstream fetch units by outcome (ok, error).
	FetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoracle_fetches_total",
			Help: "Upstream fetches per source and competition",
		},
		[]string{"source", "competition", "status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoracle_fetch_duration_seconds",
			Help:    "Duration of upstream fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SnapshotWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoracle_snapshot_writes_total",
			Help: "Snapshot files rewritten on disk",
		},
		[]string{"file"},
	)

	SnapshotPlayers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scoracle_snapshot_players",
			Help: "Players in the most recent canonical snapshot",
		},
	)

	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoracle_sync_runs_total",
			Help: "Scheduled pipeline runs by outcome",
		},
		[]string{"status"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoracle_api_cache_requests_total",
			Help: "API cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)
)

// Status labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ObserveFetch records one fetch unit.
func ObserveFetch(source, competition string, seconds float64, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	FetchesTotal.WithLabelValues(source, competition, status).Inc()
	FetchDuration.WithLabelValues(source).Observe(seconds)
}
