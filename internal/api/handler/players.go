package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/scoracle-site/internal/api/respond"
	"github.com/albapepper/scoracle-site/internal/cache"
	"github.com/albapepper/scoracle-site/internal/player"
	"github.com/albapepper/scoracle-site/internal/scoring"
)

type playersResponse struct {
	GeneratedAt string          `json:"generated_at"`
	Count       int             `json:"count"`
	Players     []player.Record `json:"players"`
}

type playerResponse struct {
	GeneratedAt string         `json:"generated_at"`
	Player      player.Record  `json:"player"`
	Rates       scoring.Result `json:"per90"`
	Leaderboard *scoring.Entry `json:"leaderboard,omitempty"`
	Rank        int            `json:"rank,omitempty"`
}

// playerFilter matches on team, position and competition case-insensitively.
// q matches against the slugged name so accents and spacing don't matter.
type playerFilter struct {
	team, position, competition, q string
}

func parsePlayerFilter(v url.Values) playerFilter {
	return playerFilter{
		team:        strings.TrimSpace(v.Get("team")),
		position:    strings.TrimSpace(v.Get("position")),
		competition: strings.TrimSpace(v.Get("competition")),
		q:           player.Slugify(v.Get("q")),
	}
}

func (f playerFilter) empty() bool {
	return f == playerFilter{}
}

func (f playerFilter) key() string {
	return fmt.Sprintf("players:%s|%s|%s|%s",
		strings.ToLower(f.team), strings.ToLower(f.position), strings.ToLower(f.competition), f.q)
}

func (f playerFilter) match(p player.Record) bool {
	if f.team != "" && !strings.EqualFold(p.Team, f.team) {
		return false
	}
	if f.position != "" && !strings.EqualFold(p.Position, f.position) {
		return false
	}
	if f.competition != "" && !strings.EqualFold(p.Competition, f.competition) {
		return false
	}
	if f.q != "" && !strings.Contains(p.ID, f.q) {
		return false
	}
	return true
}

// GetPlayers lists the players snapshot.
// @Summary List players
// @Description Returns canonical player records from the players snapshot, optionally filtered.
// @Tags players
// @Produce json
// @Param team query string false "Exact team name (case-insensitive)"
// @Param position query string false "Exact position (case-insensitive)"
// @Param competition query string false "Competition name (case-insensitive)"
// @Param q query string false "Name search"
// @Success 200 {object} playersResponse
// @Header 200 {string} ETag "Weak ETag for conditional requests"
// @Failure 503 {object} respond.ErrorResponse
// @Router /players [get]
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	f := parsePlayerFilter(r.URL.Query())

	h.serveCached(w, r, f.key(), cache.TTLSnapshot, func() ([]byte, error) {
		snap, err := h.store.ReadPlayers()
		if err != nil {
			return nil, err
		}
		out := make([]player.Record, 0, len(snap.Players))
		for _, p := range snap.Players {
			if f.empty() || f.match(p) {
				out = append(out, p)
			}
		}
		return json.Marshal(playersResponse{
			GeneratedAt: snap.GeneratedAt,
			Count:       len(out),
			Players:     out,
		})
	})
}

// GetPlayer returns one player with per-90 rates and their leaderboard row.
// @Summary Get player
// @Description Returns a single player by slug id, with per-90 rates and the leaderboard entry when ranked.
// @Tags players
// @Produce json
// @Param id path string true "Player slug"
// @Success 200 {object} playerResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /players/{id} [get]
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id := player.Slugify(chi.URLParam(r, "id"))
	if id == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player id is required")
		return
	}

	h.serveCached(w, r, "player:"+id, cache.TTLPlayer, func() ([]byte, error) {
		snap, err := h.store.ReadPlayers()
		if err != nil {
			return nil, err
		}
		var (
			rec   player.Record
			found bool
		)
		for _, p := range snap.Players {
			if p.ID == id {
				rec, found = p, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: %w", id, errNoSuchPlayer)
		}

		resp := playerResponse{
			GeneratedAt: snap.GeneratedAt,
			Player:      rec,
			Rates:       scoring.Score(rec, 1, 1),
		}
		// A missing leaderboard only drops the ranking.
		if board, err := h.store.ReadLeaderboard(); err == nil {
			for i := range board.Entries {
				if board.Entries[i].ID == id {
					resp.Leaderboard = &board.Entries[i]
					resp.Rank = i + 1
					break
				}
			}
		}
		return json.Marshal(resp)
	})
}
