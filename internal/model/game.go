package model

import "time"

// MatchState represents the lifecycle phase of a match session
type MatchState string

const (
	MatchStateStarting MatchState = "starting" // GAME_START being sent
	MatchStateRunning  MatchState = "running"  // Simulating and broadcasting
	MatchStateFinished MatchState = "finished" // Loop exited, removed from table
)

// MatchSummary is the read-model view of a live match
type MatchSummary struct {
	ID        GameID    `json:"id"`
	Score     [2]int    `json:"score"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MatchResult describes how a match loop terminated
type MatchResult struct {
	GameID  GameID
	Score   [2]int
	Winner  Slot
	Aborted bool // true when a participant left before a winner emerged
}
