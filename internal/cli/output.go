package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case SubmitResult:
		o.printSubmitResult(v)
	case LeaderboardResult:
		o.printLeaderboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printSubmitResult(r SubmitResult) {
	fmt.Printf("Session accepted\n")
	fmt.Printf("  ID:      %s\n", r.SessionID)
	fmt.Printf("  Player:  %s\n", r.Player)
	fmt.Printf("  Verdict: %s\n", r.Verdict)
}

func (o *Output) printLeaderboard(r LeaderboardResult) {
	if len(r.Entries) == 0 {
		fmt.Println("No entries in window")
		return
	}
	fmt.Printf("Leaderboard %s - %s\n",
		r.From.Format("2006-01-02 15:04"),
		r.To.Format("2006-01-02 15:04"),
	)
	for _, e := range r.Entries {
		fmt.Printf("  %2d. %-20s %8d  (%s, %s)\n",
			e.Rank, e.DisplayName, e.Score, e.Outcome,
			e.Timestamp.Format("2006-01-02 15:04"),
		)
	}
}

func (o *Output) printHealthResult(r HealthResult) {
	fmt.Printf("Status: %s\n", r.Status)
}
