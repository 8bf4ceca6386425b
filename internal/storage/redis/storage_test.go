package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/netpong/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.LobbyTTL = time.Hour
	cfg.MatchTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// Lobby tests

func (s *StorageSuite) TestSaveAndGetLobby() {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	lobby := &model.LobbySummary{ID: "room1", HasPassword: true, CreatedAt: created}

	err := s.storage.SaveLobby(s.ctx, lobby)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetLobby(s.ctx, "room1")
	s.Require().NoError(err)
	s.Equal(lobby.ID, retrieved.ID)
	s.True(retrieved.HasPassword)
	s.True(created.Equal(retrieved.CreatedAt))
}

func (s *StorageSuite) TestGetLobbyNotFound() {
	_, err := s.storage.GetLobby(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrLobbyNotFound)
}

func (s *StorageSuite) TestSaveLobbySetsTTLAndIndex() {
	_ = s.storage.SaveLobby(s.ctx, &model.LobbySummary{ID: "room1"})

	s.Equal(time.Hour, s.mini.TTL(lobbyKey("room1")))
	members, err := s.mini.Members(lobbyIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"room1"}, members)
}

func (s *StorageSuite) TestDeleteLobby() {
	_ = s.storage.SaveLobby(s.ctx, &model.LobbySummary{ID: "room1"})

	err := s.storage.DeleteLobby(s.ctx, "room1")
	s.Require().NoError(err)

	_, err = s.storage.GetLobby(s.ctx, "room1")
	s.ErrorIs(err, model.ErrLobbyNotFound)
	s.False(s.mini.Exists(lobbyIndexKey()))
}

func (s *StorageSuite) TestListLobbiesSorted() {
	_ = s.storage.SaveLobby(s.ctx, &model.LobbySummary{ID: "c"})
	_ = s.storage.SaveLobby(s.ctx, &model.LobbySummary{ID: "a"})
	_ = s.storage.SaveLobby(s.ctx, &model.LobbySummary{ID: "b"})

	lobbies, err := s.storage.ListLobbies(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(lobbies, 3)
	s.Equal(model.GameID("a"), lobbies[0].ID)
	s.Equal(model.GameID("b"), lobbies[1].ID)
	s.Equal(model.GameID("c"), lobbies[2].ID)
}

func (s *StorageSuite) TestListLobbiesEmpty() {
	lobbies, err := s.storage.ListLobbies(s.ctx)
	s.Require().NoError(err)
	s.NotNil(lobbies)
	s.Empty(lobbies)
}

func (s *StorageSuite) TestListPrunesExpiredEntries() {
	_ = s.storage.SaveLobby(s.ctx, &model.LobbySummary{ID: "old"})
	s.mini.FastForward(2 * time.Hour)
	_ = s.storage.SaveLobby(s.ctx, &model.LobbySummary{ID: "new"})

	lobbies, err := s.storage.ListLobbies(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(lobbies, 1)
	s.Equal(model.GameID("new"), lobbies[0].ID)

	members, err := s.mini.Members(lobbyIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"new"}, members)
}

// Match tests

func (s *StorageSuite) TestSaveAndGetMatch() {
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	match := &model.MatchSummary{ID: "room1", Score: [2]int{3, 1}, StartedAt: started, UpdatedAt: started}

	s.Require().NoError(s.storage.SaveMatch(s.ctx, match))

	retrieved, err := s.storage.GetMatch(s.ctx, "room1")
	s.Require().NoError(err)
	s.Equal([2]int{3, 1}, retrieved.Score)
	s.True(started.Equal(retrieved.StartedAt))
}

func (s *StorageSuite) TestGetMatchNotFound() {
	_, err := s.storage.GetMatch(s.ctx, "nonexistent")
	s.ErrorIs(err, model.ErrMatchNotFound)
}

func (s *StorageSuite) TestDeleteMatch() {
	_ = s.storage.SaveMatch(s.ctx, &model.MatchSummary{ID: "room1"})
	s.Require().NoError(s.storage.DeleteMatch(s.ctx, "room1"))

	matches, err := s.storage.ListMatches(s.ctx)
	s.Require().NoError(err)
	s.Empty(matches)
}

func (s *StorageSuite) TestSaveMatchOverwrites() {
	_ = s.storage.SaveMatch(s.ctx, &model.MatchSummary{ID: "room1"})
	_ = s.storage.SaveMatch(s.ctx, &model.MatchSummary{ID: "room1", Score: [2]int{1, 0}})

	matches, err := s.storage.ListMatches(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal([2]int{1, 0}, matches[0].Score)
}

func (s *StorageSuite) TestClear() {
	_ = s.storage.SaveLobby(s.ctx, &model.LobbySummary{ID: "l"})
	_ = s.storage.SaveMatch(s.ctx, &model.MatchSummary{ID: "m"})

	s.Require().NoError(s.storage.Clear(s.ctx))

	s.False(s.mini.Exists(lobbyKey("l")))
	s.False(s.mini.Exists(matchKey("m")))
	s.False(s.mini.Exists(lobbyIndexKey()))
	s.False(s.mini.Exists(matchIndexKey()))
}

func (s *StorageSuite) TestClearEmpty() {
	s.NoError(s.storage.Clear(s.ctx))
}
