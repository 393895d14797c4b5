// Package handlers exposes the computed totals and award data over HTTP and
// accepts recalculation requests. The API is a thin collaborator boundary:
// it supplies period keys and returns engine output, adding no stat
// semantics of its own.
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/courtline/stat-engine/internal/awards"
	"github.com/courtline/stat-engine/internal/cache"
	"github.com/courtline/stat-engine/internal/store"
	"github.com/courtline/stat-engine/pkg/hoopmath"
	"github.com/courtline/stat-engine/pkg/models"
)

// Handler serves stat-engine API endpoints.
type Handler struct {
	store  *store.Client
	cache  *cache.Writer
	engine *awards.Engine
}

// NewHandler creates a new handler.
func NewHandler(storeClient *store.Client, cacheWriter *cache.Writer, engine *awards.Engine) *Handler {
	return &Handler{
		store:  storeClient,
		cache:  cacheWriter,
		engine: engine,
	}
}

// HealthCheck reports service health.
// GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// HandleGetBoxScore returns the computed box score for a game, preferring
// the cache and falling back to the store.
// GET /api/v1/games/{game_id}/boxscore
func (h *Handler) HandleGetBoxScore(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	if gameID == "" {
		http.Error(w, "game_id is required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	box, err := h.cache.ReadBoxScore(ctx, gameID)
	if err != nil {
		if err != redis.Nil {
			fmt.Printf("[API] box score cache miss for %s: %v\n", gameID, err)
		}
		box, err = h.loadBoxScore(ctx, gameID)
		if err != nil {
			http.Error(w, fmt.Sprintf("Error fetching box score: %v", err), http.StatusInternalServerError)
			return
		}
	}

	if len(box.Players) == 0 {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(box)
}

func (h *Handler) loadBoxScore(ctx context.Context, gameID string) (*cache.BoxScore, error) {
	players, err := h.store.GamePlayerTotals(ctx, gameID)
	if err != nil {
		return nil, err
	}
	teams, err := h.store.GameTeamTotals(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return &cache.BoxScore{GameID: gameID, Teams: teams, Players: players}, nil
}

// SeasonLine is a player's season totals with derived shooting metrics,
// scaled to 0-100 once here at the boundary.
type SeasonLine struct {
	models.PlayerSeasonTotals
	Points        int     `json:"points"`
	FGPct         float64 `json:"fg_pct"`
	FTPct         float64 `json:"ft_pct"`
	EFGPct        float64 `json:"efg_pct"`
	TSPct         float64 `json:"ts_pct"`
	PointsPerGame float64 `json:"points_per_game"`
	FoulsPerGame  float64 `json:"fouls_per_game"`
}

// HandleGetPlayerSeason returns one player's season totals with derived
// metrics.
// GET /api/v1/seasons/{season_id}/players/{player_id}
func (h *Handler) HandleGetPlayerSeason(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "season_id")
	playerID := chi.URLParam(r, "player_id")
	if seasonID == "" || playerID == "" {
		http.Error(w, "season_id and player_id are required", http.StatusBadRequest)
		return
	}

	totals, err := h.store.PlayerSeason(r.Context(), seasonID, playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Player has no games in season", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Error fetching season totals: %v", err), http.StatusInternalServerError)
		return
	}

	line := SeasonLine{
		PlayerSeasonTotals: totals,
		Points:             totals.Points(),
		FGPct:              hoopmath.FGPct(totals.FGMade(), totals.FGAtt()),
		FTPct:              hoopmath.FGPct(totals.FTMade, totals.FTAtt),
		EFGPct:             hoopmath.EFGPct(totals.FG2Made, totals.FG3Made, totals.FG2Att, totals.FG3Att),
		TSPct:              hoopmath.TSPct(totals.Points(), totals.FGAtt(), totals.FTAtt),
		PointsPerGame:      hoopmath.PerGame(totals.Points(), totals.GamesPlayed),
		FoulsPerGame:       hoopmath.PerGame(totals.Fouls, totals.GamesPlayed),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(line)
}

// HandleGetLeaderboard returns a cached season leaderboard.
// GET /api/v1/seasons/{season_id}/leaderboard?metric={metric}
func (h *Handler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "season_id")
	metric := r.URL.Query().Get("metric")
	if metric == "" {
		metric = "points"
	}

	entries, err := h.cache.ReadLeaderboard(r.Context(), seasonID, metric)
	if err != nil {
		if err == redis.Nil {
			http.Error(w, "Leaderboard not computed yet", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Error fetching leaderboard: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"season_id": seasonID,
		"metric":    metric,
		"entries":   entries,
	})
}

// HandleGetAwards returns stored award assignments for a season.
// GET /api/v1/seasons/{season_id}/awards?award_id={award_id}
func (h *Handler) HandleGetAwards(w http.ResponseWriter, r *http.Request) {
	seasonID := chi.URLParam(r, "season_id")
	awardID := r.URL.Query().Get("award_id")

	assignments, err := h.store.Assignments(r.Context(), seasonID, awardID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error fetching awards: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"season_id":   seasonID,
		"assignments": assignments,
		"count":       len(assignments),
	})
}

// RecalculateRequest asks for one scope/period to be recomputed.
type RecalculateRequest struct {
	Scope     models.AwardScope `json:"scope"`
	SeasonID  string            `json:"season_id"`
	GameID    string            `json:"game_id,omitempty"`
	WeekStart string            `json:"week_start,omitempty"` // YYYY-MM-DD
}

// HandleRecalculate runs an on-demand award recalculation for a period.
// POST /api/v1/recalculate
func (h *Handler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	var req RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.SeasonID == "" {
		http.Error(w, "season_id is required", http.StatusBadRequest)
		return
	}

	period := awards.Period{Season: models.Season{ID: req.SeasonID}, GameID: req.GameID}
	if req.WeekStart != "" {
		start, err := time.Parse("2006-01-02", req.WeekStart)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid week_start: %v", err), http.StatusBadRequest)
			return
		}
		period.Week = &models.Week{Start: start}
	}

	assignments, err := h.engine.Recalculate(r.Context(), req.Scope, period)
	if err != nil {
		http.Error(w, fmt.Sprintf("Recalculation failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"scope":       req.Scope,
		"assignments": assignments,
		"count":       len(assignments),
	})
}
