package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// LoadFromEnv loads configuration from environment variables
// Parameters:
// - configDir: Directory containing config files (or empty for default)
// - configFilePath: Path to .env file (or empty for default)
// - isInitializing: Whether this is being called during explicit initialization (e.g., from init command)
func LoadFromEnv(configDir string, configFilePath string, isInitializing bool) (*Config, error) {
	// Load empty configuration
	cfg := New()

	// If configDir is empty, use the default
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".streamsect")

		// Create directory if it doesn't exist, but only do minimal setup if not initializing
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

	}
	cfg.configDir = configDir

	// Default database path is in the config directory
	cfg.Database.Path = filepath.Join(configDir, "streamsect.db")

	// Default log path is in the config directory
	defaultLogPath := filepath.Join(configDir, "streamsect.log")

	// Use provided config file path or default
	if configFilePath == "" {
		configFilePath = filepath.Join(configDir, ".env")
	}

	// Check if ENV_FILE_PATH is set to load from a custom .env file
	envFilePath := getEnvString("ENV_FILE_PATH", "")
	if envFilePath != "" {
		// User specified a custom env file path
		err := godotenv.Load(envFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load env file from %s: %w", envFilePath, err)
		}
	} else {
		// Try to load from config directory first
		err := godotenv.Load(configFilePath)
		if err != nil {
			// Then try current directory as fallback
			_ = godotenv.Load() // Ignore errors if file doesn't exist
		}
	}

	// Replay Configuration
	cfg.Replay = ReplayConfig{
		ChunkSize: getEnvInt("STREAMSECT_REPLAY_CHUNK_SIZE", 16),
		Rate:      getEnvFloat("STREAMSECT_REPLAY_RATE", 0),
		Burst:     getEnvInt("STREAMSECT_REPLAY_BURST", 1),
	}

	// Chat Configuration
	cfg.Chat = ChatConfig{
		HistoryLimit: getEnvInt("STREAMSECT_CHAT_HISTORY_LIMIT", 10),
		AutoTitle:    getEnvBool("STREAMSECT_CHAT_AUTO_TITLE", true),
		DefaultModel: getEnvString("STREAMSECT_CHAT_DEFAULT_MODEL", ""),
	}

	// Database Configuration
	cfg.Database = DatabaseConfig{
		Path:            getEnvString("STREAMSECT_DB_PATH", cfg.Database.Path),
		BusyTimeout:     getEnvInt("STREAMSECT_DB_BUSY_TIMEOUT", 5000),
		JournalMode:     getEnvString("STREAMSECT_DB_JOURNAL_MODE", "WAL"),
		SynchronousMode: getEnvString("STREAMSECT_DB_SYNCHRONOUS_MODE", "NORMAL"),
		CacheSize:       getEnvInt("STREAMSECT_DB_CACHE_SIZE", -64000), // ~64MB
		ForeignKeys:     getEnvBool("STREAMSECT_DB_FOREIGN_KEYS", true),
		ConnMaxLife:     getEnvDuration("STREAMSECT_DB_CONN_MAX_LIFE", 5*time.Minute),
		QueryTimeout:    getEnvDuration("STREAMSECT_DB_QUERY_TIMEOUT", 30*time.Second),
	}

	// Logging Configuration
	cfg.Logging = LoggingConfig{
		Level:      getEnvString("STREAMSECT_LOG_LEVEL", "info"),
		Format:     getEnvString("STREAMSECT_LOG_FORMAT", "text"),
		Output:     getEnvString("STREAMSECT_LOG_OUTPUT", defaultLogPath),
		AddSource:  getEnvBool("STREAMSECT_LOG_ADD_SOURCE", true),
		TimeFormat: getTimeFormat(getEnvString("STREAMSECT_LOG_TIME_FORMAT", "RFC3339")),
	}

	// Validate the configuration
	return cfg, cfg.Validate()
}
