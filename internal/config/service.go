package config

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/tildaslashalef/streamsect/internal/loggy"
)

// SettingsService provides operations for managing application settings
type SettingsService struct {
	repo   SettingsRepository
	config *Config
	logger *loggy.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(db *sql.DB, config *Config, logger *loggy.Logger) *SettingsService {
	repo := NewSQLSettingsRepository(db, logger)

	return &SettingsService{
		repo:   repo,
		config: config,
		logger: logger,
	}
}

// GetSetting retrieves a setting by key
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// GetSettings retrieves multiple settings by prefix
func (s *SettingsService) GetSettings(ctx context.Context, prefix string) (map[string]string, error) {
	return s.repo.GetSettings(ctx, prefix)
}

// SetSetting sets a setting value
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// DeleteSetting deletes a setting
func (s *SettingsService) DeleteSetting(ctx context.Context, key string) error {
	return s.repo.DeleteSetting(ctx, key)
}

// GetRepository returns the underlying repository
func (s *SettingsService) GetRepository() SettingsRepository {
	return s.repo
}

// ApplyStoredSettings overlays persistent settings from the database onto
// the Config
func (s *SettingsService) ApplyStoredSettings(ctx context.Context) error {
	return ApplyStoredSettings(ctx, s.config, s.repo)
}

// SetReplayChunkSize persists the replay chunk size and updates the Config
func (s *SettingsService) SetReplayChunkSize(ctx context.Context, size int) error {
	s.config.Replay.ChunkSize = size

	return s.repo.SetSetting(ctx, "replay.chunk_size", strconv.Itoa(size))
}

// SetReplayRate persists the replay rate and updates the Config
func (s *SettingsService) SetReplayRate(ctx context.Context, rate float64) error {
	s.config.Replay.Rate = rate

	return s.repo.SetSetting(ctx, "replay.rate", strconv.FormatFloat(rate, 'f', -1, 64))
}

// SetHistoryLimit persists the history page size and updates the Config
func (s *SettingsService) SetHistoryLimit(ctx context.Context, limit int) error {
	s.config.Chat.HistoryLimit = limit

	return s.repo.SetSetting(ctx, "chat.history_limit", strconv.Itoa(limit))
}

// SetAutoTitle persists the auto-title flag and updates the Config
func (s *SettingsService) SetAutoTitle(ctx context.Context, enabled bool) error {
	s.config.Chat.AutoTitle = enabled

	return s.repo.SetSetting(ctx, "chat.auto_title", strconv.FormatBool(enabled))
}
