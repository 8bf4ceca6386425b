package redis

import (
	"fmt"

	"github.com/mcoot/netpong/internal/model"
)

// Key prefix for all directory data
const keyPrefix = "pong"

// lobbyKey returns the Redis key for a LobbySummary
func lobbyKey(id model.GameID) string {
	return fmt.Sprintf("%s:lobby:%s", keyPrefix, id)
}

// matchKey returns the Redis key for a MatchSummary
func matchKey(id model.GameID) string {
	return fmt.Sprintf("%s:match:%s", keyPrefix, id)
}

// lobbyIndexKey returns the Redis key for the SET of open lobby ids
func lobbyIndexKey() string {
	return fmt.Sprintf("%s:idx:lobbies", keyPrefix)
}

// matchIndexKey returns the Redis key for the SET of live match ids
func matchIndexKey() string {
	return fmt.Sprintf("%s:idx:matches", keyPrefix)
}
