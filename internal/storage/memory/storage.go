package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/mcoot/netpong/internal/model"
	"github.com/mcoot/netpong/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	lobbies map[model.GameID]model.LobbySummary
	matches map[model.GameID]model.MatchSummary
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		lobbies: make(map[model.GameID]model.LobbySummary),
		matches: make(map[model.GameID]model.MatchSummary),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Lobby operations

func (s *Storage) SaveLobby(ctx context.Context, lobby *model.LobbySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbies[lobby.ID] = *lobby
	return nil
}

func (s *Storage) GetLobby(ctx context.Context, id model.GameID) (*model.LobbySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lobby, ok := s.lobbies[id]
	if !ok {
		return nil, model.ErrLobbyNotFound
	}
	return &lobby, nil
}

func (s *Storage) DeleteLobby(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, id)
	return nil
}

func (s *Storage) ListLobbies(ctx context.Context) ([]*model.LobbySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.LobbySummary, 0, len(s.lobbies))
	for _, l := range s.lobbies {
		out = append(out, &l)
	}
	slices.SortFunc(out, func(a, b *model.LobbySummary) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out, nil
}

// Match operations

func (s *Storage) SaveMatch(ctx context.Context, match *model.MatchSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[match.ID] = *match
	return nil
}

func (s *Storage) GetMatch(ctx context.Context, id model.GameID) (*model.MatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, model.ErrMatchNotFound
	}
	return &match, nil
}

func (s *Storage) DeleteMatch(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.matches, id)
	return nil
}

func (s *Storage) ListMatches(ctx context.Context) ([]*model.MatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.MatchSummary, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, &m)
	}
	slices.SortFunc(out, func(a, b *model.MatchSummary) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out, nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.lobbies)
	clear(s.matches)
	return nil
}
