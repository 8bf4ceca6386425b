package model

import "time"

// GameID names a lobby and, after promotion, the match created from it.
// It is unique across both tables at any instant.
type GameID string

// MaxGameIDLength bounds client-chosen ids
const MaxGameIDLength = 64

// LobbySummary is the read-model view of a pending lobby
type LobbySummary struct {
	ID          GameID    `json:"id"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks that id is usable as a lobby or match name
func (id GameID) Validate() error {
	if id == "" || len(id) > MaxGameIDLength {
		return ErrInvalidGameID
	}
	return nil
}
