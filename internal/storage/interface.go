package storage

import (
	"context"
	"time"

	"github.com/lmerrick/dashguard/internal/model"
)

// Store defines the interface for data persistence
type Store interface {
	// Accepted session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)
	SessionsBetween(ctx context.Context, from, to time.Time) ([]*model.Session, error)

	// Guest identity map operations.
	// EnsureGuestNumber is the allocation path: it must be atomic, so that two
	// concurrent first-time calls for the same token observe one number.
	// Numbers are monotonically increasing and never reassigned.
	EnsureGuestNumber(ctx context.Context, token string) (int64, error)
	GetGuestNumber(ctx context.Context, token string) (int64, error)
	GetGuestToken(ctx context.Context, number int64) (string, error)

	// Pattern history operations, keyed by identity.
	// Marks older than the retention window may be evicted lazily.
	AppendPatternMark(ctx context.Context, identityKey string, mark model.PatternMark, retain time.Duration) error
	PatternMarksSince(ctx context.Context, identityKey string, since time.Time) ([]model.PatternMark, error)

	// Telemetry: count of rejected submissions per identity and reason
	IncrRejectedAttempts(ctx context.Context, identityKey string, reason model.Verdict) error
}
