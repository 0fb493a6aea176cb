package storage

import (
	"context"
	"time"

	"github.com/lmerrick/dashguard/internal/model"
)

// timeoutStore bounds every storage call with a deadline. A store that
// hangs must surface as an error the intake pipeline can fail closed on,
// not as an indefinitely stalled request.
type timeoutStore struct {
	inner   Store
	timeout time.Duration
}

// WithTimeout wraps a store so every call carries a deadline.
// A non-positive timeout returns the store unwrapped.
func WithTimeout(inner Store, timeout time.Duration) Store {
	if timeout <= 0 {
		return inner
	}
	return &timeoutStore{inner: inner, timeout: timeout}
}

func (s *timeoutStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *timeoutStore) SaveSession(ctx context.Context, session *model.Session) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.inner.SaveSession(ctx, session)
}

func (s *timeoutStore) GetSession(ctx context.Context, id model.SessionID) (*model.Session, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.inner.GetSession(ctx, id)
}

func (s *timeoutStore) SessionsBetween(ctx context.Context, from, to time.Time) ([]*model.Session, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.inner.SessionsBetween(ctx, from, to)
}

func (s *timeoutStore) EnsureGuestNumber(ctx context.Context, token string) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.inner.EnsureGuestNumber(ctx, token)
}

func (s *timeoutStore) GetGuestNumber(ctx context.Context, token string) (int64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.inner.GetGuestNumber(ctx, token)
}

func (s *timeoutStore) GetGuestToken(ctx context.Context, number int64) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.inner.GetGuestToken(ctx, number)
}

func (s *timeoutStore) AppendPatternMark(ctx context.Context, identityKey string, mark model.PatternMark, retain time.Duration) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.inner.AppendPatternMark(ctx, identityKey, mark, retain)
}

func (s *timeoutStore) PatternMarksSince(ctx context.Context, identityKey string, since time.Time) ([]model.PatternMark, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.inner.PatternMarksSince(ctx, identityKey, since)
}

func (s *timeoutStore) IncrRejectedAttempts(ctx context.Context, identityKey string, reason model.Verdict) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.inner.IncrRejectedAttempts(ctx, identityKey, reason)
}
