package request

// SubmitSessionRequest is the request body for submitting session telemetry.
// Counters default to zero when omitted; guest_id is only honored for
// unauthenticated callers.
type SubmitSessionRequest struct {
	SessionID         string `json:"session_id"`
	DurationSeconds   int    `json:"duration_seconds"`
	FinalScore        int    `json:"final_score"`
	CoinsCollected    int    `json:"coins_collected,omitempty"`
	ObstaclesHit      int    `json:"obstacles_hit,omitempty"`
	PowerupsCollected int    `json:"powerups_collected,omitempty"`
	DistanceTraveled  int    `json:"distance_traveled,omitempty"`
	GameResult        string `json:"game_result"`
	GuestID           string `json:"guest_id,omitempty"`
}
