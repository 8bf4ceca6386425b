package model

import "errors"

// Common errors used across the application
var (
	// Protocol errors
	ErrProtocol        = errors.New("malformed protocol frame")
	ErrPeerUnreachable = errors.New("peer unreachable")

	// Lobby errors
	ErrDuplicateID       = errors.New("game id already in use")
	ErrLobbyNotFound     = errors.New("lobby not found or already full")
	ErrBadPassword       = errors.New("incorrect lobby password")
	ErrInvalidGameID     = errors.New("invalid game id")
	ErrAlreadyAssociated = errors.New("connection is already in a lobby or match")

	// Match errors
	ErrMatchNotFound = errors.New("match not found")
	ErrNotInMatch    = errors.New("connection is not a match participant")

	// Connection errors
	ErrConnNotFound = errors.New("connection not registered")
)
