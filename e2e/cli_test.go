package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmerrick/dashguard/internal/api"
	"github.com/lmerrick/dashguard/internal/config"
	"github.com/lmerrick/dashguard/internal/factory"
)

const testJWTSecret = "e2e-secret"

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "dgctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/dgctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	app      *factory.App
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application with in-memory storage
	cfg := config.Default()
	cfg.Storage.Type = "memory"
	cfg.Auth.JWTSecret = testJWTSecret

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(cfg, logger)
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		Verifier:          app.Verifier,
		IntakeService:     app.IntakeService,
		Aggregator:        app.Aggregator,
		Clock:             app.Clock,
		LeaderboardConfig: cfg.Leaderboard,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		app:  app,
		addr: serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing

type submitResponse struct {
	SessionID string `json:"session_id"`
	Verdict   string `json:"verdict"`
	Player    string `json:"player"`
}

type leaderboardResponse struct {
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Entries []struct {
		Rank        int    `json:"rank"`
		DisplayName string `json:"display_name"`
		Score       int    `json:"score"`
		Outcome     string `json:"outcome"`
	} `json:"entries"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_GuestSubmit(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("submit",
		"--guest", "e2e-guest-token",
		"--duration", "60",
		"--score", "400",
		"--coins", "40",
		"--obstacles", "3",
		"--distance", "900",
		"--result", "died",
	)
	require.NoError(t, err, "output: %s", output)

	var resp submitResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "ACCEPTED", resp.Verdict)
	assert.Equal(t, "Guest_1", resp.Player)

	// Same guest token resolves to the same canonical identity
	output, err = cli.run("submit",
		"--guest", "e2e-guest-token",
		"--duration", "30",
		"--score", "200",
		"--coins", "20",
		"--obstacles", "1",
		"--distance", "500",
		"--result", "completed",
	)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "Guest_1", resp.Player)
}

func TestCLI_AuthenticatedSubmit(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	token, err := ts.app.Verifier.Mint("alice", time.Hour)
	require.NoError(t, err)

	output, err := cli.runWithToken(token, "submit",
		"--duration", "60",
		"--score", "400",
		"--coins", "40",
		"--obstacles", "3",
		"--distance", "900",
		"--result", "completed",
	)
	require.NoError(t, err, "output: %s", output)

	var resp submitResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "alice", resp.Player)
}

func TestCLI_Leaderboard(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	scores := map[string]int{"guest-a": 300, "guest-b": 500, "guest-c": 400}
	for guest, score := range scores {
		output, err := cli.run("submit",
			"--guest", guest,
			"--duration", "60",
			"--score", fmt.Sprintf("%d", score),
			"--coins", fmt.Sprintf("%d", score/10),
			"--obstacles", "2",
			"--distance", "900",
			"--result", "died",
		)
		require.NoError(t, err, "output: %s", output)
	}

	output, err := cli.run("leaderboard", "--hours", "24", "--limit", "2")
	require.NoError(t, err, "output: %s", output)

	var board leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	require.Len(t, board.Entries, 2)
	assert.Equal(t, 500, board.Entries[0].Score)
	assert.Equal(t, 400, board.Entries[1].Score)
}

func TestCLI_Winners(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("submit",
		"--guest", "guest-a",
		"--duration", "60",
		"--score", "400",
		"--coins", "40",
		"--obstacles", "3",
		"--distance", "900",
		"--result", "completed",
	)
	require.NoError(t, err, "output: %s", output)

	today := time.Now().UTC().Format("2006-01-02")
	output, err = cli.run("winners", "--date", today)
	require.NoError(t, err, "output: %s", output)

	var board leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(output), &board))
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "Guest_1", board.Entries[0].DisplayName)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// No guest id and no token
	output, err := cli.run("submit", "--duration", "60", "--score", "100")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "guest_id")

	// Implausible payload
	output, err = cli.run("submit",
		"--guest", "guest-a",
		"--duration", "60",
		"--score", "-1",
		"--result", "died",
	)
	assert.Error(t, err)
	assert.Contains(t, output, "INVALID_SCORE")

	// Bad token
	output, err = cli.runWithToken("not-a-jwt", "submit",
		"--guest", "guest-a",
		"--duration", "60",
		"--score", "100",
		"--result", "died",
	)
	assert.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")
}
