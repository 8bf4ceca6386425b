package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	// ServerAddr is the TCP address of the game server
	ServerAddr string
	// APIURL is the base URL of the status API
	APIURL  string
	Output  string
	Verbose bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerAddr: getEnvOrDefault("PONG_SERVER", "localhost:5555"),
		APIURL:     getEnvOrDefault("PONG_API", "http://localhost:8080"),
		Output:     "text",
		Verbose:    false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
