package pattern

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/lmerrick/dashguard/internal/config"
	"github.com/lmerrick/dashguard/internal/dependencies/clock"
	"github.com/lmerrick/dashguard/internal/model"
	"github.com/lmerrick/dashguard/internal/storage"
)

// lockStripes is the number of per-identity history locks
const lockStripes = 64

// Detector accumulates cross-session suspicion per identity. A single
// "perfect" run is individually plausible; a streak of them within the
// rolling window is not.
type Detector struct {
	store  storage.Store
	clock  clock.Clock
	cfg    config.PatternConfig
	logger *slog.Logger

	stripes [lockStripes]sync.Mutex
}

// NewDetector creates a new pattern detector
func NewDetector(store storage.Store, clock clock.Clock, cfg config.PatternConfig, logger *slog.Logger) *Detector {
	return &Detector{
		store:  store,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// IsFlagCandidate reports whether a plausibility-passing submission
// carries the perfect-game marker: an untouched run at or above the
// perfect-score threshold.
func (d *Detector) IsFlagCandidate(sub model.Submission) bool {
	return sub.ObstaclesHit == 0 && sub.FinalScore >= d.cfg.PerfectScore
}

// Observe records the flag assessment of the current submission and
// returns the pattern verdict. The mark is appended before the count is
// taken, so a rejection still lands in history: retrying cannot clear
// accumulated suspicion. Store failure fails closed.
func (d *Detector) Observe(ctx context.Context, identity model.Identity, flagged bool) (model.Verdict, error) {
	key := identity.Key()

	// One mutator per identity at a time; distinct identities proceed freely
	stripe := &d.stripes[stripeFor(key)]
	stripe.Lock()
	defer stripe.Unlock()

	now := d.clock.Now()
	mark := model.PatternMark{At: now, Flagged: flagged}

	if err := d.store.AppendPatternMark(ctx, key, mark, d.cfg.Window); err != nil {
		d.logger.Error("pattern mark append failed",
			slog.String("identity", key),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("recording pattern mark: %w", model.ErrStoreUnavailable)
	}

	marks, err := d.store.PatternMarksSince(ctx, key, now.Add(-d.cfg.Window))
	if err != nil {
		d.logger.Error("pattern history read failed",
			slog.String("identity", key),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("reading pattern history: %w", model.ErrStoreUnavailable)
	}

	flaggedCount := 0
	for _, m := range marks {
		if m.Flagged {
			flaggedCount++
		}
	}

	if flaggedCount >= d.cfg.FlagThreshold {
		d.logger.Warn("pattern suspicion threshold reached",
			slog.String("identity", key),
			slog.Int("flagged_in_window", flaggedCount),
		)
		return model.VerdictPatternSuspicion, nil
	}

	return model.VerdictAccepted, nil
}

func stripeFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % lockStripes
}
