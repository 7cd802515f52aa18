package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue string
		expected     string
	}{
		{
			name:         "env not set, return default",
			envValue:     "",
			defaultValue: "default",
			expected:     "default",
		},
		{
			name:         "env set, return env value",
			envValue:     "custom",
			defaultValue: "default",
			expected:     "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_STRING_VALUE"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			result := getEnvString(key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		expected     int
	}{
		{
			name:         "env not set, return default",
			envValue:     "",
			defaultValue: 100,
			expected:     100,
		},
		{
			name:         "env set to valid int, return int value",
			envValue:     "200",
			defaultValue: 100,
			expected:     200,
		},
		{
			name:         "env set to invalid int, return default",
			envValue:     "not_an_int",
			defaultValue: 100,
			expected:     100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_INT_VALUE"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			result := getEnvInt(key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		expected     bool
	}{
		{
			name:         "env not set, return default",
			envValue:     "",
			defaultValue: true,
			expected:     true,
		},
		{
			name:         "env set to true, return true",
			envValue:     "true",
			defaultValue: false,
			expected:     true,
		},
		{
			name:         "env set to false, return false",
			envValue:     "false",
			defaultValue: true,
			expected:     false,
		},
		{
			name:         "env set to invalid bool, return default",
			envValue:     "not_a_bool",
			defaultValue: true,
			expected:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VALUE"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			result := getEnvBool(key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		expected     time.Duration
	}{
		{
			name:         "env not set, return default",
			envValue:     "",
			defaultValue: 1 * time.Second,
			expected:     1 * time.Second,
		},
		{
			name:         "env set to valid duration, return duration value",
			envValue:     "5s",
			defaultValue: 1 * time.Second,
			expected:     5 * time.Second,
		},
		{
			name:         "env set to invalid duration, return default",
			envValue:     "not_a_duration",
			defaultValue: 1 * time.Second,
			expected:     1 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_DURATION_VALUE"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			result := getEnvDuration(key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvFloat(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue float64
		expected     float64
	}{
		{
			name:         "env not set, return default",
			envValue:     "",
			defaultValue: 0.5,
			expected:     0.5,
		},
		{
			name:         "env set to 2.5, return 2.5",
			envValue:     "2.5",
			defaultValue: 0.5,
			expected:     2.5,
		},
		{
			name:         "env set to invalid value, return default",
			envValue:     "invalid",
			defaultValue: 0.5,
			expected:     0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_FLOAT_VALUE"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			result := getEnvFloat(key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNew(t *testing.T) {
	// New should return a bare-bones config with all fields at zero values
	cfg := New()

	assert.Empty(t, cfg.Database.Path, "Database path should be empty")
	assert.Zero(t, cfg.Replay.ChunkSize)
	assert.Zero(t, cfg.Replay.Rate)
	assert.Zero(t, cfg.Chat.HistoryLimit)
	assert.False(t, cfg.Chat.AutoTitle)
	assert.Empty(t, cfg.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	// Reset any environment variables that might affect the test
	vars := []string{
		"STREAMSECT_REPLAY_CHUNK_SIZE", "STREAMSECT_REPLAY_RATE", "STREAMSECT_REPLAY_BURST",
		"STREAMSECT_CHAT_HISTORY_LIMIT", "STREAMSECT_CHAT_AUTO_TITLE", "STREAMSECT_CHAT_DEFAULT_MODEL",
		"STREAMSECT_DB_PATH", "STREAMSECT_LOG_LEVEL", "STREAMSECT_LOG_OUTPUT", "ENV_FILE_PATH",
	}

	for _, v := range vars {
		os.Unsetenv(v)
	}

	// Load config with defaults into a temporary config dir
	tempDir := t.TempDir()
	cfg, err := LoadFromEnv(tempDir, "", false)
	assert.NoError(t, err)

	// Verify replay defaults
	assert.Equal(t, 16, cfg.Replay.ChunkSize)
	assert.Equal(t, 0.0, cfg.Replay.Rate)
	assert.Equal(t, 1, cfg.Replay.Burst)

	// Verify chat defaults
	assert.Equal(t, 10, cfg.Chat.HistoryLimit)
	assert.True(t, cfg.Chat.AutoTitle)
	assert.Empty(t, cfg.Chat.DefaultModel)

	// Verify database defaults
	assert.Equal(t, filepath.Join(tempDir, "streamsect.db"), cfg.Database.Path)
	assert.Equal(t, 5000, cfg.Database.BusyTimeout)
	assert.Equal(t, "WAL", cfg.Database.JournalMode)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLife)

	// Verify logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, filepath.Join(tempDir, "streamsect.log"), cfg.Logging.Output)
	assert.Equal(t, time.RFC3339, cfg.Logging.TimeFormat)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	os.Setenv("STREAMSECT_REPLAY_CHUNK_SIZE", "32")
	os.Setenv("STREAMSECT_REPLAY_RATE", "12.5")
	os.Setenv("STREAMSECT_CHAT_AUTO_TITLE", "false")
	os.Setenv("STREAMSECT_LOG_TIME_FORMAT", "DateTime")
	defer func() {
		os.Unsetenv("STREAMSECT_REPLAY_CHUNK_SIZE")
		os.Unsetenv("STREAMSECT_REPLAY_RATE")
		os.Unsetenv("STREAMSECT_CHAT_AUTO_TITLE")
		os.Unsetenv("STREAMSECT_LOG_TIME_FORMAT")
	}()

	cfg, err := LoadFromEnv(t.TempDir(), "", false)
	assert.NoError(t, err)

	assert.Equal(t, 32, cfg.Replay.ChunkSize)
	assert.Equal(t, 12.5, cfg.Replay.Rate)
	assert.False(t, cfg.Chat.AutoTitle)
	assert.Equal(t, "2006-01-02 15:04:05", cfg.Logging.TimeFormat, "named time format should resolve to its layout")
}

func TestSetGet(t *testing.T) {
	// Clear the global config first
	Set(nil)

	// Get should return error when not initialized
	_, err := Get()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")

	// Set a config
	testCfg := New()
	testCfg.Replay.ChunkSize = 24 // Change a value
	Set(testCfg)

	// Get should work now
	cfg, err := Get()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Verify the changed value
	assert.Equal(t, 24, cfg.Replay.ChunkSize)
}

func TestValidate(t *testing.T) {
	// Valid config from LoadFromEnv should pass validation
	cfg, err := LoadFromEnv(t.TempDir(), "", false)
	assert.NoError(t, err)
	err = cfg.Validate()
	assert.NoError(t, err)

	// Invalid replay config
	invalidReplay := New()
	invalidReplay.Replay.ChunkSize = 0
	err = invalidReplay.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "replay config")

	// Invalid chat config
	invalidChat := New()
	invalidChat.Replay.ChunkSize = 16
	invalidChat.Chat.HistoryLimit = 0
	err = invalidChat.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chat config")

	// Invalid database config
	invalidDatabase := New()
	invalidDatabase.Replay.ChunkSize = 16
	invalidDatabase.Chat.HistoryLimit = 10
	invalidDatabase.Database.Path = ""
	err = invalidDatabase.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database config")

	// Invalid logging config
	invalidLogging := New()
	invalidLogging.Replay.ChunkSize = 16
	invalidLogging.Chat.HistoryLimit = 10
	invalidLogging.Database.Path = filepath.Join(t.TempDir(), "test.db")
	invalidLogging.Database.BusyTimeout = 5000
	invalidLogging.Database.ConnMaxLife = 5 * time.Minute
	invalidLogging.Database.QueryTimeout = 30 * time.Second
	invalidLogging.Logging.Level = "invalid"
	invalidLogging.Logging.Format = "text"

	err = invalidLogging.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "logging config")
}

func TestParseLoglevel(t *testing.T) {
	tests := []struct {
		level  string
		expect slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"none", slog.Level(9999)},
		{"invalid", slog.LevelInfo}, // Default to info for invalid levels
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level := ParseLogLevel(tt.level)
			assert.Equal(t, tt.expect, level)
		})
	}
}

func TestGetTimeFormat(t *testing.T) {
	tests := []struct {
		name   string
		expect string
	}{
		{"RFC3339", time.RFC3339},
		{"RFC1123", time.RFC1123},
		{"Kitchen", time.Kitchen},
		{"StampMilli", time.StampMilli},
		{"DateTime", "2006-01-02 15:04:05"},
		{"Date", "2006-01-02"},
		{"15:04", "15:04"}, // Unknown names pass through as layout strings
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := getTimeFormat(tt.name)
			assert.Equal(t, tt.expect, result)
		})
	}
}

func TestCheckDirectoryWritable(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Should be writable
	err := checkDirectoryWritable(tempDir)
	assert.NoError(t, err)

	// Test with non-existent directory
	err = checkDirectoryWritable("/path/that/does/not/exist")
	assert.Error(t, err)
}
