package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/albapepper/scoracle-site/internal/api/respond"
	"github.com/albapepper/scoracle-site/internal/cache"
	"github.com/albapepper/scoracle-site/internal/scoring"
	"github.com/albapepper/scoracle-site/internal/snapshot"
)

type leaderboardResponse struct {
	GeneratedAt string          `json:"generated_at"`
	MinMinutes  float64         `json:"min_minutes"`
	Count       int             `json:"count"`
	Entries     []scoring.Entry `json:"entries"`
}

// GetLeaderboard returns the ranked leaderboard.
// @Summary Fantasy leaderboard
// @Description Players ordered by form score, highest first.
// @Tags leaderboard
// @Produce json
// @Param limit query int false "Maximum rows"
// @Success 200 {object} leaderboardResponse
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /leaderboard [get]
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = n
	}

	h.serveCached(w, r, "leaderboard:"+strconv.Itoa(limit), cache.TTLLeaderboard, func() ([]byte, error) {
		board, err := h.store.ReadLeaderboard()
		if err != nil {
			return nil, err
		}
		entries := board.Entries
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}
		if entries == nil {
			entries = []scoring.Entry{}
		}
		return json.Marshal(leaderboardResponse{
			GeneratedAt: board.GeneratedAt,
			MinMinutes:  board.MinMinutes,
			Count:       len(entries),
			Entries:     entries,
		})
	})
}

// GetStandings serves the standings snapshot as stored.
// @Summary League standings
// @Tags standings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} respond.ErrorResponse
// @Router /standings [get]
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "standings", cache.TTLSnapshot, func() ([]byte, error) {
		return h.store.ReadRaw(snapshot.StandingsFile)
	})
}

// GetHistory serves the archived match history snapshot as stored.
// @Summary Archived seasons
// @Tags history
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} respond.ErrorResponse
// @Router /history [get]
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	h.serveCached(w, r, "history", cache.TTLSnapshot, func() ([]byte, error) {
		return h.store.ReadRaw(snapshot.HistoryFile)
	})
}
