package response

import (
	"time"

	"github.com/lmerrick/dashguard/internal/model"
)

// SubmitSessionResponse confirms an accepted submission
type SubmitSessionResponse struct {
	SessionID string `json:"session_id"`
	Verdict   string `json:"verdict"`
	Player    string `json:"player"`
}

// LeaderboardEntry is one ranking row
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	Outcome     string    `json:"outcome"`
	Timestamp   time.Time `json:"timestamp"`
}

// LeaderboardResponse is an ordered ranking view
type LeaderboardResponse struct {
	From    time.Time          `json:"from"`
	To      time.Time          `json:"to"`
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardResponseFromEntries builds the response from domain entries
func LeaderboardResponseFromEntries(from, to time.Time, entries []model.LeaderboardEntry) LeaderboardResponse {
	out := LeaderboardResponse{
		From:    from,
		To:      to,
		Entries: make([]LeaderboardEntry, 0, len(entries)),
	}
	for i, e := range entries {
		out.Entries = append(out.Entries, LeaderboardEntry{
			Rank:        i + 1,
			DisplayName: e.DisplayName,
			Score:       e.Score,
			Outcome:     string(e.Outcome),
			Timestamp:   e.At,
		})
	}
	return out
}
