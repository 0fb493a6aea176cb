package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lmerrick/dashguard/internal/api/apierr"
	"github.com/lmerrick/dashguard/internal/api/response"
	"github.com/lmerrick/dashguard/internal/config"
	"github.com/lmerrick/dashguard/internal/dependencies/clock"
	"github.com/lmerrick/dashguard/internal/services/leaderboard"
)

// LeaderboardHandler handles ranking query endpoints
type LeaderboardHandler struct {
	aggregator *leaderboard.Aggregator
	clock      clock.Clock
	cfg        config.LeaderboardConfig
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(aggregator *leaderboard.Aggregator, clock clock.Clock, cfg config.LeaderboardConfig) *LeaderboardHandler {
	return &LeaderboardHandler{
		aggregator: aggregator,
		clock:      clock,
		cfg:        cfg,
	}
}

// Top handles GET /api/v1/leaderboard?hours=24&limit=10
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	window := h.cfg.DefaultWindow
	if raw := r.URL.Query().Get("hours"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			apierr.WriteError(w, apierr.NewInvalidRequestError("hours must be a positive integer"))
			return
		}
		window = time.Duration(hours) * time.Hour
	}

	limit := h.cfg.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			apierr.WriteError(w, apierr.NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	to := h.clock.Now()
	from := to.Add(-window)

	entries, err := h.aggregator.TopN(r.Context(), from, to, limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardResponseFromEntries(from, to, entries))
}

// Winners handles GET /api/v1/leaderboard/winners?date=2026-01-02
func (h *LeaderboardHandler) Winners(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("date is required (YYYY-MM-DD)"))
		return
	}

	date, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("date must be YYYY-MM-DD"))
		return
	}

	entries, err := h.aggregator.WinnersForDate(r.Context(), date)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	dayStart := date
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)
	response.JSON(w, http.StatusOK, response.LeaderboardResponseFromEntries(dayStart, dayEnd, entries))
}
