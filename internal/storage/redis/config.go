package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// SessionTTL bounds how long accepted sessions are retained.
	// It must exceed the largest leaderboard window in use.
	SessionTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		SessionTTL:   7 * 24 * time.Hour,
	}
}
