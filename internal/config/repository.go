package config

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/tildaslashalef/streamsect/internal/loggy"
	"github.com/tildaslashalef/streamsect/internal/ulid"
)

// Settings represents a persistent setting in the database
type Settings struct {
	ID        string
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SettingsRepository defines operations for managing settings in the database
type SettingsRepository interface {
	// GetSetting retrieves a setting by key
	GetSetting(ctx context.Context, key string) (string, error)

	// GetSettings retrieves multiple settings by prefix
	GetSettings(ctx context.Context, prefix string) (map[string]string, error)

	// SetSetting sets a setting value
	SetSetting(ctx context.Context, key, value string) error

	// DeleteSetting deletes a setting
	DeleteSetting(ctx context.Context, key string) error
}

// SQLSettingsRepository implements SettingsRepository using a SQL database
type SQLSettingsRepository struct {
	db     *sql.DB
	logger *loggy.Logger
}

// NewSQLSettingsRepository creates a new SQL settings repository
func NewSQLSettingsRepository(db *sql.DB, logger *loggy.Logger) SettingsRepository {
	return &SQLSettingsRepository{
		db:     db,
		logger: logger,
	}
}

// GetSetting retrieves a setting by key
func (r *SQLSettingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	q := squirrel.Select("value").
		From("settings").
		Where(squirrel.Eq{"key": key}).
		Limit(1)

	query, args, err := q.ToSql()
	if err != nil {
		return "", fmt.Errorf("building get setting query: %w", err)
	}

	var value string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil // Return empty string if not found
		}
		return "", fmt.Errorf("executing get setting query: %w", err)
	}

	return value, nil
}

// GetSettings retrieves multiple settings by prefix
func (r *SQLSettingsRepository) GetSettings(ctx context.Context, prefix string) (map[string]string, error) {
	// Use LIKE query to get settings with a specific prefix
	q := squirrel.Select("key", "value").
		From("settings").
		Where(squirrel.Like{"key": prefix + "%"})

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building get settings query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing get settings query: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		err := rows.Scan(&key, &value)
		if err != nil {
			return nil, fmt.Errorf("scanning setting row: %w", err)
		}

		settings[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating setting rows: %w", err)
	}

	return settings, nil
}

// SetSetting sets a setting value
func (r *SQLSettingsRepository) SetSetting(ctx context.Context, key, value string) error {
	// Check if the setting already exists
	existingValue, err := r.GetSetting(ctx, key)
	if err != nil {
		return fmt.Errorf("checking for existing setting: %w", err)
	}

	now := time.Now().UTC()

	if existingValue == "" {
		// Insert new setting
		id := ulid.SettingID()
		q := squirrel.Insert("settings").
			Columns("id", "key", "value", "created_at", "updated_at").
			Values(id, key, value, now, now)

		query, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("building insert setting query: %w", err)
		}

		_, err = r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("executing insert setting query: %w", err)
		}
	} else {
		// Update existing setting
		q := squirrel.Update("settings").
			Set("value", value).
			Set("updated_at", now).
			Where(squirrel.Eq{"key": key})

		query, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("building update setting query: %w", err)
		}

		_, err = r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("executing update setting query: %w", err)
		}
	}

	return nil
}

// DeleteSetting deletes a setting
func (r *SQLSettingsRepository) DeleteSetting(ctx context.Context, key string) error {
	q := squirrel.Delete("settings").
		Where(squirrel.Eq{"key": key})

	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building delete setting query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("executing delete setting query: %w", err)
	}

	return nil
}

// ApplyStoredSettings overlays persistent settings from the database onto a
// Config object. Values that fail to parse are skipped so a bad row cannot
// prevent startup.
func ApplyStoredSettings(ctx context.Context, cfg *Config, repo SettingsRepository) error {
	replay, err := repo.GetSettings(ctx, "replay.")
	if err != nil {
		return fmt.Errorf("loading replay settings: %w", err)
	}

	if v, ok := replay["replay.chunk_size"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Replay.ChunkSize = n
		}
	}

	if v, ok := replay["replay.rate"]; ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Replay.Rate = f
		}
	}

	if v, ok := replay["replay.burst"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Replay.Burst = n
		}
	}

	chat, err := repo.GetSettings(ctx, "chat.")
	if err != nil {
		return fmt.Errorf("loading chat settings: %w", err)
	}

	if v, ok := chat["chat.history_limit"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Chat.HistoryLimit = n
		}
	}

	if v, ok := chat["chat.auto_title"]; ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Chat.AutoTitle = b
		}
	}

	if v, ok := chat["chat.default_model"]; ok && v != "" {
		cfg.Chat.DefaultModel = v
	}

	return nil
}
