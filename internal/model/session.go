package model

import "time"

// Outcome is how a run ended
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeDied      Outcome = "died"
	OutcomeQuit      Outcome = "quit"
	OutcomeTimeout   Outcome = "timeout"
)

// ParseOutcome validates a client-supplied outcome string
func ParseOutcome(s string) (Outcome, bool) {
	switch Outcome(s) {
	case OutcomeCompleted, OutcomeDied, OutcomeQuit, OutcomeTimeout:
		return Outcome(s), true
	}
	return "", false
}

// SessionID uniquely identifies an accepted session in storage
type SessionID string

// Submission is the raw, untrusted telemetry a client reports for one run.
// Every field is adversarial until validated.
type Submission struct {
	// GuestToken is the ephemeral guest identifier, empty for registered
	// callers. It feeds identity resolution and nothing else.
	GuestToken         string
	ClientSessionToken string
	DurationSeconds    int
	FinalScore         int
	CoinsCollected     int
	ObstaclesHit       int
	PowerupsCollected  int
	DistanceTraveled   int
	Outcome            string // validated against the Outcome enum at intake
}

// Session is an accepted, immutable session record.
// SubmittedAt is server-assigned; the client's clock is never trusted.
type Session struct {
	ID                 SessionID
	IdentityKey        string
	DisplayName        string
	ClientSessionToken string
	DurationSeconds    int
	FinalScore         int
	CoinsCollected     int
	ObstaclesHit       int
	PowerupsCollected  int
	DistanceTraveled   int
	Outcome            Outcome
	SubmittedAt        time.Time
}

// PatternMark is one entry in an identity's pattern history:
// the flag assessment of a single plausibility-passing submission.
type PatternMark struct {
	At      time.Time `json:"at"`
	Flagged bool      `json:"flagged"`
}
