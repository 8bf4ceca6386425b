// Package storage defines the directory read model: a non-authoritative
// listing of open lobbies and live matches, fed from table events.
package storage

import (
	"context"

	"github.com/mcoot/netpong/internal/model"
)

// Storage defines the interface for directory persistence
type Storage interface {
	// Lobby operations
	SaveLobby(ctx context.Context, lobby *model.LobbySummary) error
	GetLobby(ctx context.Context, id model.GameID) (*model.LobbySummary, error)
	DeleteLobby(ctx context.Context, id model.GameID) error
	ListLobbies(ctx context.Context) ([]*model.LobbySummary, error)

	// Match operations
	SaveMatch(ctx context.Context, match *model.MatchSummary) error
	GetMatch(ctx context.Context, id model.GameID) (*model.MatchSummary, error)
	DeleteMatch(ctx context.Context, id model.GameID) error
	ListMatches(ctx context.Context) ([]*model.MatchSummary, error)

	// Clear removes every entry; called at startup since the tables start empty
	Clear(ctx context.Context) error
}
