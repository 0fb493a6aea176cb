package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lmerrick/dashguard/internal/api/handler"
	"github.com/lmerrick/dashguard/internal/api/middleware"
	"github.com/lmerrick/dashguard/internal/auth"
	"github.com/lmerrick/dashguard/internal/config"
	"github.com/lmerrick/dashguard/internal/dependencies/clock"
	"github.com/lmerrick/dashguard/internal/services/intake"
	"github.com/lmerrick/dashguard/internal/services/leaderboard"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	Verifier          *auth.Verifier
	IntakeService     *intake.Service
	Aggregator        *leaderboard.Aggregator
	Clock             clock.Clock
	LeaderboardConfig config.LeaderboardConfig
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	sessionHandler := handler.NewSessionHandler(cfg.IntakeService)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Aggregator, cfg.Clock, cfg.LeaderboardConfig)

	// Create middleware
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.Verifier)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)
	api.Use(optionalAuthMiddleware)

	// Session intake: registered identity from the bearer token when
	// present, guest token from the body otherwise
	api.HandleFunc("/sessions", sessionHandler.Submit).Methods(http.MethodPost)

	// Leaderboard queries (read-only, no auth required)
	api.HandleFunc("/leaderboard", leaderboardHandler.Top).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/winners", leaderboardHandler.Winners).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
