package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// LeaderboardEntry is one ranking row from the API
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	Outcome     string    `json:"outcome"`
	Timestamp   time.Time `json:"timestamp"`
}

// LeaderboardResult is the API response for leaderboard queries
type LeaderboardResult struct {
	From    time.Time          `json:"from"`
	To      time.Time          `json:"to"`
	Entries []LeaderboardEntry `json:"entries"`
}

func newLeaderboardCmd() *cobra.Command {
	var hours, limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the rolling-window leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/leaderboard?hours=%d&limit=%d", hours, limit)

			var result LeaderboardResult
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "Rolling window in hours")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum entries to return")

	return cmd
}

func newWinnersCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "winners",
		Short: "Show the top 3 for a calendar date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().UTC().Format("2006-01-02")
			}
			path := fmt.Sprintf("/api/v1/leaderboard/winners?date=%s", date)

			var result LeaderboardResult
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "UTC date (YYYY-MM-DD, default today)")

	return cmd
}
