package response

import (
	"time"

	"github.com/mcoot/netpong/internal/model"
)

// Health is the body of the health check
type Health struct {
	Status string `json:"status"`
}

// Lobby represents an open lobby in API responses
type Lobby struct {
	ID          string    `json:"id"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}

// LobbyFromModel converts model.LobbySummary
func LobbyFromModel(l *model.LobbySummary) Lobby {
	return Lobby{
		ID:          string(l.ID),
		HasPassword: l.HasPassword,
		CreatedAt:   l.CreatedAt,
	}
}

// Match represents a live match in API responses
type Match struct {
	ID        string    `json:"id"`
	Score     [2]int    `json:"score"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchFromModel converts model.MatchSummary
func MatchFromModel(m *model.MatchSummary) Match {
	return Match{
		ID:        string(m.ID),
		Score:     m.Score,
		StartedAt: m.StartedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// LobbyList wraps the lobby listing
type LobbyList struct {
	Lobbies []Lobby `json:"lobbies"`
}

// MatchList wraps the match listing
type MatchList struct {
	Matches []Match `json:"matches"`
}

// Stats reports live table sizes
type Stats struct {
	Connections int `json:"connections"`
	Lobbies     int `json:"lobbies"`
	Matches     int `json:"matches"`
}
