package plausibility

import (
	"github.com/lmerrick/dashguard/internal/config"
	"github.com/lmerrick/dashguard/internal/model"
)

// Validator applies stateless bound and consistency checks to a single
// submission. Rules run in a fixed order and the first failure wins, so
// identical payloads always yield identical verdicts. All thresholds come
// from configuration.
type Validator struct {
	cfg config.ValidationConfig
}

// NewValidator creates a new plausibility validator
func NewValidator(cfg config.ValidationConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate returns VerdictAccepted or the first failing rule's verdict.
// Every field is treated as adversarial; whatever the client claims to
// have validated locally counts for nothing here.
func (v *Validator) Validate(sub model.Submission) model.Verdict {
	// Rule 1: score must be non-negative
	if sub.FinalScore < 0 {
		return model.VerdictInvalidScore
	}

	// Rule 2: duration must be positive
	if sub.DurationSeconds <= 0 {
		return model.VerdictInvalidDuration
	}

	// Rule 3: score and travel rates must be achievable in the reported
	// duration. The score floor tolerates short, legitimately high-scoring
	// runs.
	maxScore := sub.DurationSeconds * v.cfg.MaxScorePerSecond
	if maxScore < v.cfg.ScoreFloor {
		maxScore = v.cfg.ScoreFloor
	}
	if sub.FinalScore > maxScore {
		return model.VerdictSpeedViolation
	}
	if sub.DistanceTraveled < 0 || sub.DistanceTraveled > sub.DurationSeconds*v.cfg.MaxDistancePerSecond {
		return model.VerdictSpeedViolation
	}

	// Rule 4: coin pickup bounded by time and by ground covered
	if sub.CoinsCollected < 0 ||
		sub.CoinsCollected > sub.DurationSeconds*v.cfg.MaxCoinsPerSecond ||
		sub.CoinsCollected > sub.DistanceTraveled*v.cfg.MaxCoinsPerDistance {
		return model.VerdictCoinRateViolation
	}

	// Rule 5: obstacle hits bounded by time
	if sub.ObstaclesHit < 0 || sub.ObstaclesHit > sub.DurationSeconds*v.cfg.MaxObstaclesPerSecond {
		return model.VerdictObstacleRateViolation
	}

	// Rule 6: score must be consistent with coins collected under the
	// game's scoring formula. Only meaningful when coins were collected.
	if sub.CoinsCollected > 0 {
		if sub.FinalScore < sub.CoinsCollected*v.cfg.CoinScoreMultiplierMin ||
			sub.FinalScore > sub.CoinsCollected*v.cfg.CoinScoreMultiplierMax {
			return model.VerdictScoreCoinMismatch
		}
	}

	// Rule 7: outcome must be one of the enumerated values
	if _, ok := model.ParseOutcome(sub.Outcome); !ok {
		return model.VerdictInvalidResult
	}

	return model.VerdictAccepted
}
