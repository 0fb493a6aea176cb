package factory

import (
	"time"

	"github.com/lmerrick/dashguard/internal/config"
	"github.com/lmerrick/dashguard/internal/dependencies/mocks"
	"github.com/lmerrick/dashguard/internal/storage/memory"
	"github.com/lmerrick/dashguard/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Memory    *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"

	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))

	app := newWithDependencies(cfg, store, mockClock, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Memory:    store,
	}
}
