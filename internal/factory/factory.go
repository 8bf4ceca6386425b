package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/netpong/internal/api"
	"github.com/mcoot/netpong/internal/dependencies/clock"
	"github.com/mcoot/netpong/internal/server"
	"github.com/mcoot/netpong/internal/services/directory"
	"github.com/mcoot/netpong/internal/services/lobby"
	"github.com/mcoot/netpong/internal/storage"
	"github.com/mcoot/netpong/internal/storage/memory"
	redisstorage "github.com/mcoot/netpong/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Directory read model
	Storage   storage.Storage
	Publisher *directory.Publisher

	// External dependencies
	Clock clock.Clock

	// Game engine and transports
	Controller *lobby.Controller
	Server     *server.Server
	API        http.Handler
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the directory backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// Lobby configures the controller (optional)
	// If zero value, defaults to lobby.DefaultConfig()
	Lobby lobby.Config
	// Server configures the game listener (optional)
	// If zero value, defaults to server.DefaultConfig()
	Server server.Config
	// EventBuffer sizes the directory event queue (optional)
	EventBuffer int
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// The engine starts with empty tables, so entries left by a previous process are stale
	if err := store.Clear(context.Background()); err != nil {
		if closer, ok := store.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("clear directory storage: %w", err)
	}

	return newWithDependencies(store, clock.New(), cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) *App {
	lobbyCfg := lobbyConfig(cfg.Lobby)
	serverCfg := cfg.Server
	if serverCfg == (server.Config{}) {
		serverCfg = server.DefaultConfig()
	}
	buffer := cfg.EventBuffer
	if buffer <= 0 {
		buffer = directory.DefaultBufferSize
	}

	publisher := directory.NewPublisher(store, buffer, logger)
	controller := lobby.NewController(lobbyCfg, clk, publisher, logger)
	gameServer := server.New(serverCfg, controller, logger)
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:  logger,
		Storage: store,
		Stats:   controller,
	})

	return &App{
		Storage:    store,
		Publisher:  publisher,
		Clock:      clk,
		Controller: controller,
		Server:     gameServer,
		API:        apiRouter,
	}
}

// lobbyConfig fills each unset field of cfg from lobby.DefaultConfig()
func lobbyConfig(cfg lobby.Config) lobby.Config {
	defaults := lobby.DefaultConfig()
	if cfg.PasswordCost == 0 {
		cfg.PasswordCost = defaults.PasswordCost
	}
	if cfg.Match.TickInterval == 0 {
		cfg.Match.TickInterval = defaults.Match.TickInterval
	}
	return cfg
}

// Shutdown stops the game server, ends every live match and closes storage.
// The publisher stops when the context passed to its Run is cancelled.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.Controller.StopAll(ctx); err != nil {
		errs = append(errs, err)
	}
	if closer, ok := a.Storage.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
