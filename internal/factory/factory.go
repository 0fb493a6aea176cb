package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/lmerrick/dashguard/internal/auth"
	"github.com/lmerrick/dashguard/internal/config"
	"github.com/lmerrick/dashguard/internal/dependencies/clock"
	"github.com/lmerrick/dashguard/internal/services/identity"
	"github.com/lmerrick/dashguard/internal/services/intake"
	"github.com/lmerrick/dashguard/internal/services/leaderboard"
	"github.com/lmerrick/dashguard/internal/services/pattern"
	"github.com/lmerrick/dashguard/internal/services/plausibility"
	"github.com/lmerrick/dashguard/internal/services/ratelimit"
	"github.com/lmerrick/dashguard/internal/storage"
	"github.com/lmerrick/dashguard/internal/storage/memory"
	redisstorage "github.com/lmerrick/dashguard/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Config config.Config

	// Storage
	Store storage.Store

	// External dependencies
	Clock clock.Clock

	// Services
	Verifier      *auth.Verifier
	Resolver      *identity.Resolver
	Limiter       *ratelimit.Limiter
	Validator     *plausibility.Validator
	Detector      *pattern.Detector
	IntakeService *intake.Service
	Aggregator    *leaderboard.Aggregator
}

// New creates a new application with all dependencies wired
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Store
	storageType := cfg.Storage.Type
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid storage type: must be 'memory' or 'redis'")
	}

	// Storage calls are the only blocking points in the pipeline; bound them
	store = storage.WithTimeout(store, cfg.Server.StoreTimeout)

	return newWithDependencies(cfg, store, clock.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(cfg config.Config, store storage.Store, clk clock.Clock, logger *slog.Logger) *App {
	resolver := identity.NewResolver(store, logger)
	limiter := ratelimit.NewLimiter(cfg.RateLimit, clk)
	validator := plausibility.NewValidator(cfg.Validation)
	detector := pattern.NewDetector(store, clk, cfg.Pattern, logger)
	intakeService := intake.NewService(resolver, limiter, validator, detector, store, clk, logger)
	aggregator := leaderboard.NewAggregator(store, cfg.Leaderboard, logger)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	return &App{
		Config:        cfg,
		Store:         store,
		Clock:         clk,
		Verifier:      verifier,
		Resolver:      resolver,
		Limiter:       limiter,
		Validator:     validator,
		Detector:      detector,
		IntakeService: intakeService,
		Aggregator:    aggregator,
	}
}
