package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/netpong/internal/dependencies/mocks"
	"github.com/mcoot/netpong/internal/server"
	"github.com/mcoot/netpong/internal/services/lobby"
	"github.com/mcoot/netpong/internal/services/match"
	"github.com/mcoot/netpong/internal/storage/memory"
	"github.com/mcoot/netpong/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing: in-memory storage, a
// mocked clock, cheap password hashing, a fast tick and a loopback listener
// on an ephemeral port.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	cfg := Config{
		Lobby: lobby.Config{
			PasswordCost: bcrypt.MinCost,
			Match:        match.Config{TickInterval: 2 * time.Millisecond},
		},
		Server: server.Config{
			Host: "127.0.0.1",
			Port: 0,
			Conn: server.DefaultConfig().Conn,
		},
	}
	app := newWithDependencies(store, mockClock, cfg, testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
