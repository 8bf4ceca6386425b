package model

import "time"

// EventType identifies the type of directory event
type EventType string

const (
	EventLobbyOpened  EventType = "lobby_opened"
	EventLobbyClosed  EventType = "lobby_closed"
	EventMatchStarted EventType = "match_started"
	EventMatchScored  EventType = "match_scored"
	EventMatchEnded   EventType = "match_ended"
)

// Event records a change to the lobby or match tables
type Event struct {
	Type      EventType
	Timestamp time.Time
	GameID    GameID
	Payload   any // Type-specific data
}

// LobbyOpenedPayload contains data for lobby opened events
type LobbyOpenedPayload struct {
	HasPassword bool
}

// MatchScoredPayload contains data for match scored events
type MatchScoredPayload struct {
	Score [2]int
}

// MatchEndedPayload contains data for match ended events
type MatchEndedPayload struct {
	Result MatchResult
}
