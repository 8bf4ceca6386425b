package factory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/services/lobby"
	"github.com/mcoot/netpong/internal/services/match"
	"github.com/mcoot/netpong/internal/storage/memory"
	redisstorage "github.com/mcoot/netpong/internal/storage/redis"
)

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)

	_, ok := app.Storage.(*memory.Storage)
	assert.True(t, ok)
	assert.NotNil(t, app.Controller)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.API)
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(Config{StorageType: "postgres"})
	assert.Error(t, err)
}

func TestNewRedisRequiresConfig(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mr.Addr()

	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &redisCfg})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go app.Publisher.Run(ctx)

	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	app.Publisher.Publish(model.Event{
		Type:      model.EventLobbyOpened,
		Timestamp: created,
		GameID:    "room1",
		Payload:   model.LobbyOpenedPayload{HasPassword: true},
	})

	cancel()
	<-app.Publisher.Done()

	lobby, err := app.Storage.GetLobby(context.Background(), "room1")
	require.NoError(t, err)
	assert.Equal(t, model.GameID("room1"), lobby.ID)
	assert.True(t, lobby.HasPassword)

	require.NoError(t, app.Shutdown(context.Background()))
}

func TestNewClearsStaleDirectoryEntries(t *testing.T) {
	mr := miniredis.RunT(t)

	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = "redis://" + mr.Addr()

	// Entries written by a previous server process
	previous, err := redisstorage.New(redisCfg)
	require.NoError(t, err)
	ctx := context.Background()
	stamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, previous.SaveLobby(ctx, &model.LobbySummary{ID: "stale", CreatedAt: stamp}))
	require.NoError(t, previous.SaveMatch(ctx, &model.MatchSummary{ID: "ghost", StartedAt: stamp, UpdatedAt: stamp}))
	require.NoError(t, previous.Close())

	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &redisCfg})
	require.NoError(t, err)
	defer func() { _ = app.Shutdown(ctx) }()

	lobbies, err := app.Storage.ListLobbies(ctx)
	require.NoError(t, err)
	assert.Empty(t, lobbies)

	matches, err := app.Storage.ListMatches(ctx)
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = app.Storage.GetMatch(ctx, "ghost")
	assert.ErrorIs(t, err, model.ErrMatchNotFound)
}

func TestLobbyConfigDefaultsEachField(t *testing.T) {
	defaults := lobby.DefaultConfig()

	assert.Equal(t, defaults, lobbyConfig(lobby.Config{}))

	onlyTick := lobbyConfig(lobby.Config{Match: match.Config{TickInterval: 2 * time.Millisecond}})
	assert.Equal(t, 2*time.Millisecond, onlyTick.Match.TickInterval)
	assert.Equal(t, defaults.PasswordCost, onlyTick.PasswordCost)

	onlyCost := lobbyConfig(lobby.Config{PasswordCost: bcrypt.MinCost})
	assert.Equal(t, bcrypt.MinCost, onlyCost.PasswordCost)
	assert.Equal(t, defaults.Match.TickInterval, onlyCost.Match.TickInterval)
}
