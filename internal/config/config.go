package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Validation  ValidationConfig  `mapstructure:"validation"`
	Pattern     PatternConfig     `mapstructure:"pattern"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	StoreTimeout    time.Duration `mapstructure:"store_timeout"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type     string `mapstructure:"type"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
}

// AuthConfig holds settings for the verified-identity provider
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// ValidationConfig holds every plausibility threshold.
// The defaults are deliberately generous: the validator rejects the
// impossible, not the unlikely.
type ValidationConfig struct {
	// MaxScorePerSecond bounds score accumulation rate
	MaxScorePerSecond int `mapstructure:"max_score_per_second"`
	// ScoreFloor tolerates short, legitimately high-scoring runs
	ScoreFloor int `mapstructure:"score_floor"`
	// MaxDistancePerSecond bounds travel speed
	MaxDistancePerSecond int `mapstructure:"max_distance_per_second"`
	// MaxCoinsPerSecond bounds coin pickup rate
	MaxCoinsPerSecond int `mapstructure:"max_coins_per_second"`
	// MaxCoinsPerDistance bounds coins collected per unit travelled
	MaxCoinsPerDistance int `mapstructure:"max_coins_per_distance"`
	// MaxObstaclesPerSecond bounds obstacle hit rate
	MaxObstaclesPerSecond int `mapstructure:"max_obstacles_per_second"`
	// CoinScoreMultiplierMin/Max bound score relative to coins collected,
	// per the game's scoring formula
	CoinScoreMultiplierMin int `mapstructure:"coin_score_multiplier_min"`
	CoinScoreMultiplierMax int `mapstructure:"coin_score_multiplier_max"`
}

// PatternConfig holds cross-session suspicion thresholds
type PatternConfig struct {
	// PerfectScore is the score at or above which a zero-obstacle run
	// counts as a flag candidate
	PerfectScore int `mapstructure:"perfect_score"`
	// FlagThreshold is the flagged-run count within Window that triggers
	// rejection
	FlagThreshold int `mapstructure:"flag_threshold"`
	// Window is the rolling suspicion window
	Window time.Duration `mapstructure:"window"`
}

// RateLimitConfig holds per-identity submission limits
type RateLimitConfig struct {
	// MaxSubmissions is the budget per window
	MaxSubmissions int `mapstructure:"max_submissions"`
	// Window is the sliding window width
	Window time.Duration `mapstructure:"window"`
}

// LeaderboardConfig holds ranking query settings
type LeaderboardConfig struct {
	// DefaultWindow is the rolling window when the caller doesn't specify one
	DefaultWindow time.Duration `mapstructure:"default_window"`
	// DefaultLimit and MaxLimit bound the returned entry count
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			StoreTimeout:    5 * time.Second,
		},
		Storage: StorageConfig{
			Type:     "memory",
			RedisURL: "redis://localhost:6379",
		},
		Auth: AuthConfig{
			JWTSecret: "",
		},
		Validation: ValidationConfig{
			MaxScorePerSecond:      25,
			ScoreFloor:             500,
			MaxDistancePerSecond:   50,
			MaxCoinsPerSecond:      10,
			MaxCoinsPerDistance:    2,
			MaxObstaclesPerSecond:  2,
			CoinScoreMultiplierMin: 1,
			CoinScoreMultiplierMax: 100,
		},
		Pattern: PatternConfig{
			PerfectScore:  1000,
			FlagThreshold: 3,
			Window:        10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			MaxSubmissions: 10,
			Window:         time.Minute,
		},
		Leaderboard: LeaderboardConfig{
			DefaultWindow: 24 * time.Hour,
			DefaultLimit:  10,
			MaxLimit:      100,
		},
	}
}

// Load reads configuration from an optional YAML file and DASHGUARD_*
// environment variables, layered over the defaults
func Load(path string) (Config, error) {
	v := viper.New()

	cfg := Default()
	setDefaults(v, cfg)

	v.SetEnvPrefix("DASHGUARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.store_timeout", cfg.Server.StoreTimeout)
	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.redis_url", cfg.Storage.RedisURL)
	v.SetDefault("auth.jwt_secret", cfg.Auth.JWTSecret)
	v.SetDefault("validation.max_score_per_second", cfg.Validation.MaxScorePerSecond)
	v.SetDefault("validation.score_floor", cfg.Validation.ScoreFloor)
	v.SetDefault("validation.max_distance_per_second", cfg.Validation.MaxDistancePerSecond)
	v.SetDefault("validation.max_coins_per_second", cfg.Validation.MaxCoinsPerSecond)
	v.SetDefault("validation.max_coins_per_distance", cfg.Validation.MaxCoinsPerDistance)
	v.SetDefault("validation.max_obstacles_per_second", cfg.Validation.MaxObstaclesPerSecond)
	v.SetDefault("validation.coin_score_multiplier_min", cfg.Validation.CoinScoreMultiplierMin)
	v.SetDefault("validation.coin_score_multiplier_max", cfg.Validation.CoinScoreMultiplierMax)
	v.SetDefault("pattern.perfect_score", cfg.Pattern.PerfectScore)
	v.SetDefault("pattern.flag_threshold", cfg.Pattern.FlagThreshold)
	v.SetDefault("pattern.window", cfg.Pattern.Window)
	v.SetDefault("rate_limit.max_submissions", cfg.RateLimit.MaxSubmissions)
	v.SetDefault("rate_limit.window", cfg.RateLimit.Window)
	v.SetDefault("leaderboard.default_window", cfg.Leaderboard.DefaultWindow)
	v.SetDefault("leaderboard.default_limit", cfg.Leaderboard.DefaultLimit)
	v.SetDefault("leaderboard.max_limit", cfg.Leaderboard.MaxLimit)
}
