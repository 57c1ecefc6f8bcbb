package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Settings keys.
const SettingMonitoredSubreddits = "monitored_subreddits"

// SettingsRepository stores dashboard-editable settings as JSON values.
type SettingsRepository interface {
	// GetStringList returns the list stored under key, or nil if unset.
	GetStringList(key string) ([]string, error)
	SetStringList(key string, list []string) error
}

type settingsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSettingsRepository(db *sqlx.DB, logger *zap.Logger) SettingsRepository {
	return &settingsRepository{db: db, logger: logger}
}

func (r *settingsRepository) GetStringList(key string) ([]string, error) {
	var raw string
	err := r.db.Get(&raw, `SELECT value FROM settings WHERE key = $1`, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return list, nil
}

func (r *settingsRepository) SetStringList(key string, list []string) error {
	encoded, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}
	query := `INSERT INTO settings (key, value) VALUES ($1, $2)
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	_, err = r.db.Exec(query, key, string(encoded))
	return err
}
