package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings for directory entries. Entries are deleted when the lobby
	// or match ends; the TTL only bounds leftovers from a crashed server.
	LobbyTTL time.Duration
	MatchTTL time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		LobbyTTL:     6 * time.Hour,
		MatchTTL:     time.Hour,
	}
}
