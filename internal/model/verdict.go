package model

// Verdict is the reason code attached to an intake decision.
// Validation verdicts are returned to the caller verbatim;
// infrastructure failures are surfaced as errors, not verdicts.
type Verdict string

const (
	VerdictAccepted Verdict = "ACCEPTED"

	// Plausibility verdicts, in rule evaluation order
	VerdictInvalidScore          Verdict = "INVALID_SCORE"
	VerdictInvalidDuration       Verdict = "INVALID_DURATION"
	VerdictSpeedViolation        Verdict = "SPEED_VIOLATION"
	VerdictCoinRateViolation     Verdict = "COIN_RATE_VIOLATION"
	VerdictObstacleRateViolation Verdict = "OBSTACLE_RATE_VIOLATION"
	VerdictScoreCoinMismatch     Verdict = "SCORE_COIN_MISMATCH"
	VerdictInvalidResult         Verdict = "INVALID_RESULT"

	// Transient: the identity exceeded its submission budget
	VerdictRateLimitExceeded Verdict = "RATE_LIMIT_EXCEEDED"

	// Trust-level rejection from cross-session pattern detection
	VerdictPatternSuspicion Verdict = "PATTERN_SUSPICION"
)

// Accepted reports whether the verdict allows the session to persist
func (v Verdict) Accepted() bool {
	return v == VerdictAccepted
}
