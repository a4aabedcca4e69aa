package config

import (
	"os"
	"path/filepath"
	"time"
)

// ClientConfig configures the storefront client (cmd/storefront).
type ClientConfig struct {
	APIBaseURL     string
	Env            string
	LogLevel       string
	StateFile      string // Device-scoped guest state
	RequestTimeout time.Duration
	// Reconciliation of guest state after login
	SyncAttemptTimeout time.Duration
	SyncMaxTries       int
	SyncMaxElapsed     time.Duration
}

func LoadClientConfig() *ClientConfig {
	loadEnvFile()

	return &ClientConfig{
		APIBaseURL:         getEnv("KINDERSTEP_API_URL", "http://localhost:8080/api/v1"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "warn"),
		StateFile:          getEnv("KINDERSTEP_STATE_FILE", defaultStateFile()),
		RequestTimeout:     getDurationEnv("KINDERSTEP_REQUEST_TIMEOUT", 15*time.Second),
		SyncAttemptTimeout: getDurationEnv("KINDERSTEP_SYNC_ATTEMPT_TIMEOUT", 10*time.Second),
		SyncMaxTries:       getIntEnv("KINDERSTEP_SYNC_MAX_TRIES", 4),
		SyncMaxElapsed:     getDurationEnv("KINDERSTEP_SYNC_MAX_ELAPSED", time.Minute),
	}
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "kinderstep", "state.json")
}
