package model

import "time"

// LeaderboardEntry is a derived ranking row: one identity's best accepted
// session within a window. Never stored; always recomputed from the
// authoritative session set.
type LeaderboardEntry struct {
	DisplayName string
	Score       int
	Outcome     Outcome
	At          time.Time
}
