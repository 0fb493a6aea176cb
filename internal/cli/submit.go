package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// SubmitRequest mirrors the session submission API body
type SubmitRequest struct {
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

// SubmitResult is the API response for an accepted submission
type SubmitResult struct {
	SessionID string `json:"session_id"`
	Verdict   string `json:"verdict"`
	Player    string `json:"player"`
}

func newSubmitCmd() *cobra.Command {
	req := SubmitRequest{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit session telemetry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.SessionID == "" {
				req.SessionID = uuid.NewString()
			}

			var result SubmitResult
			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.SessionID, "session-id", "", "Client session id (generated if empty)")
	cmd.Flags().IntVar(&req.DurationSeconds, "duration", 0, "Run duration in seconds")
	cmd.Flags().IntVar(&req.FinalScore, "score", 0, "Final score")
	cmd.Flags().IntVar(&req.CoinsCollected, "coins", 0, "Coins collected")
	cmd.Flags().IntVar(&req.ObstaclesHit, "obstacles", 0, "Obstacles hit")
	cmd.Flags().IntVar(&req.PowerupsCollected, "powerups", 0, "Powerups collected")
	cmd.Flags().IntVar(&req.DistanceTraveled, "distance", 0, "Distance traveled")
	cmd.Flags().StringVar(&req.GameResult, "result", "completed", "Game result: completed, died, quit, timeout")
	cmd.Flags().StringVar(&req.GuestID, "guest", "", "Guest id for unauthenticated submissions")

	return cmd
}
