// Package handler provides HTTP handlers for all API endpoints.
// Handlers read the snapshot files through the store and cache the encoded
// responses; there is no service layer.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/albapepper/scoracle-site/internal/api/respond"
	"github.com/albapepper/scoracle-site/internal/cache"
	"github.com/albapepper/scoracle-site/internal/config"
	"github.com/albapepper/scoracle-site/internal/snapshot"
)

// HealthChecker is the optional database mirror.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store *snapshot.Store
	cache *cache.Cache
	cfg   *config.Config
	db    HealthChecker
}

// New creates a Handler with shared dependencies. db may be nil.
func New(store *snapshot.Store, c *cache.Cache, cfg *config.Config, db HealthChecker) *Handler {
	return &Handler{store: store, cache: c, cfg: cfg, db: db}
}

// Root serves API info at /.
// @Summary API root info
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":        "Scoracle Site Data API",
		"version":     "1.0.0",
		"status":      "running",
		"environment": h.cfg.Environment,
		"docs":        "/docs/",
		"endpoints": []string{
			"/api/v1/players",
			"/api/v1/players/{id}",
			"/api/v1/leaderboard",
			"/api/v1/standings",
			"/api/v1/history",
		},
	})
}

// HealthCheck reports liveness and the age of the players snapshot.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	players, err := h.store.ReadPlayers()
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		body["snapshot"] = "missing"
	case err != nil:
		body["status"] = "unhealthy"
		body["snapshot"] = "unreadable"
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, body)
		return
	default:
		body["snapshot"] = "ok"
		body["generated_at"] = players.GeneratedAt
		body["players"] = len(players.Players)
	}
	respond.WriteJSONObject(w, http.StatusOK, body)
}

// HealthCheckDB verifies database connectivity when the mirror is configured.
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)
	if h.db == nil {
		respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "not configured",
			"timestamp": now,
		})
		return
	}
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": now,
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": now,
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// serveCached answers from the cache or renders via load. load returns the
// encoded body; its error decides the status.
func (h *Handler) serveCached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, load func() ([]byte, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		respond.WriteJSON(w, r, data, etag, ttl, true)
		return
	}

	data, err := load()
	if err != nil {
		writeLoadError(w, err)
		return
	}

	etag := h.cache.Set(key, data, ttl)
	respond.WriteJSON(w, r, data, etag, ttl, false)
}

// errNoSuchPlayer marks a lookup miss inside an existing snapshot.
var errNoSuchPlayer = errors.New("player not found")

func writeLoadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNoSuchPlayer):
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Player not found")
	case errors.Is(err, snapshot.ErrNotFound):
		respond.WriteError(w, http.StatusServiceUnavailable, "SNAPSHOT_MISSING", "Snapshot has not been generated yet")
	default:
		respond.WriteError(w, http.StatusInternalServerError, "SNAPSHOT_UNREADABLE", "Snapshot could not be read")
	}
}
