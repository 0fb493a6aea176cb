package intake

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lmerrick/dashguard/internal/dependencies/clock"
	"github.com/lmerrick/dashguard/internal/model"
	"github.com/lmerrick/dashguard/internal/services/identity"
	"github.com/lmerrick/dashguard/internal/services/pattern"
	"github.com/lmerrick/dashguard/internal/services/plausibility"
	"github.com/lmerrick/dashguard/internal/services/ratelimit"
	"github.com/lmerrick/dashguard/internal/storage"
)

// Result is the outcome of one submission attempt
type Result struct {
	Verdict   model.Verdict
	Identity  model.Identity
	SessionID model.SessionID // set only when accepted
	// RetryAfter hints when a rate-limited caller may try again
	RetryAfter time.Duration
}

// Service orchestrates the intake pipeline: resolve identity, check the
// rate limit, validate plausibility, consult pattern history, persist.
// Each stage short-circuits with its own verdict; persistence is the only
// point at which a session becomes visible to the leaderboard.
type Service struct {
	resolver  *identity.Resolver
	limiter   *ratelimit.Limiter
	validator *plausibility.Validator
	detector  *pattern.Detector
	store     storage.Store
	clock     clock.Clock
	logger    *slog.Logger
}

// NewService creates a new intake service
func NewService(
	resolver *identity.Resolver,
	limiter *ratelimit.Limiter,
	validator *plausibility.Validator,
	detector *pattern.Detector,
	store storage.Store,
	clock clock.Clock,
	logger *slog.Logger,
) *Service {
	return &Service{
		resolver:  resolver,
		limiter:   limiter,
		validator: validator,
		detector:  detector,
		store:     store,
		clock:     clock,
		logger:    logger,
	}
}

// Submit runs one submission through the pipeline. Validation and pattern
// rejections come back as verdicts; infrastructure failures come back as
// errors and never as silent acceptance.
func (s *Service) Submit(ctx context.Context, registeredUserID string, sub model.Submission) (*Result, error) {
	ident, err := s.resolver.Resolve(ctx, registeredUserID, sub.GuestToken)
	if err != nil {
		return nil, err
	}

	if allowed, retryAfter := s.limiter.Allow(ident.Key()); !allowed {
		s.recordRejection(ctx, ident, model.VerdictRateLimitExceeded)
		return &Result{
			Verdict:    model.VerdictRateLimitExceeded,
			Identity:   ident,
			RetryAfter: retryAfter,
		}, nil
	}

	if verdict := s.validator.Validate(sub); !verdict.Accepted() {
		s.recordRejection(ctx, ident, verdict)
		return &Result{Verdict: verdict, Identity: ident}, nil
	}

	// Pattern history must reflect this submission even if the pattern
	// stage itself rejects it
	verdict, err := s.detector.Observe(ctx, ident, s.detector.IsFlagCandidate(sub))
	if err != nil {
		return nil, err
	}
	if !verdict.Accepted() {
		s.recordRejection(ctx, ident, verdict)
		return &Result{Verdict: verdict, Identity: ident}, nil
	}

	outcome, _ := model.ParseOutcome(sub.Outcome) // already validated
	session := &model.Session{
		ID:                 model.SessionID(uuid.NewString()),
		IdentityKey:        ident.Key(),
		DisplayName:        ident.DisplayName(),
		ClientSessionToken: sub.ClientSessionToken,
		DurationSeconds:    sub.DurationSeconds,
		FinalScore:         sub.FinalScore,
		CoinsCollected:     sub.CoinsCollected,
		ObstaclesHit:       sub.ObstaclesHit,
		PowerupsCollected:  sub.PowerupsCollected,
		DistanceTraveled:   sub.DistanceTraveled,
		Outcome:            outcome,
		SubmittedAt:        s.clock.Now(),
	}

	if err := s.store.SaveSession(ctx, session); err != nil {
		s.logger.Error("session persist failed",
			slog.String("identity", ident.Key()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("persisting session: %w", model.ErrStoreUnavailable)
	}

	s.logger.Info("session accepted",
		slog.String("identity", ident.Key()),
		slog.String("session_id", string(session.ID)),
		slog.Int("score", session.FinalScore),
	)

	return &Result{
		Verdict:   model.VerdictAccepted,
		Identity:  ident,
		SessionID: session.ID,
	}, nil
}

// recordRejection bumps the telemetry counter. Best effort: a counter
// failure must not mask the verdict.
func (s *Service) recordRejection(ctx context.Context, ident model.Identity, verdict model.Verdict) {
	if err := s.store.IncrRejectedAttempts(ctx, ident.Key(), verdict); err != nil {
		s.logger.Warn("rejected-attempt counter update failed",
			slog.String("identity", ident.Key()),
			slog.String("verdict", string(verdict)),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("submission rejected",
		slog.String("identity", ident.Key()),
		slog.String("verdict", string(verdict)),
	)
}
