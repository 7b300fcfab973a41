package repository

import (
	"context"
	"database/sql"
	"time"

	"readyset/internal/database"
)

const settingAlertFeedURL = "alert_feed_url"

type SettingsRepository struct {
	db database.DBTX
}

func NewSettingsRepository(db database.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetSetting retrieves a setting value by key. Missing keys return sql.ErrNoRows.
func (r *SettingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	query := `SELECT setting_value FROM settings WHERE setting_key = ?`
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	return value, err
}

// SetSetting updates or inserts a setting
func (r *SettingsRepository) SetSetting(ctx context.Context, key, value string) error {
	query := r.db.GetDialect().Upsert("settings", []string{"setting_key", "setting_value", "updated_at"})
	_, err := r.db.ExecContext(ctx, query, key, value, time.Now().Unix())
	return err
}

// AlertFeedURL returns the admin override for the alert feed, or fallback when unset
func (r *SettingsRepository) AlertFeedURL(ctx context.Context, fallback string) string {
	value, err := r.GetSetting(ctx, settingAlertFeedURL)
	if err != nil || value == "" {
		return fallback
	}
	return value
}

// SetAlertFeedURL stores the admin override. An empty value restores the configured default.
func (r *SettingsRepository) SetAlertFeedURL(ctx context.Context, url string) error {
	return r.SetSetting(ctx, settingAlertFeedURL, url)
}

// IsNotFound reports whether err means the setting does not exist
func IsNotFound(err error) bool {
	return err == sql.ErrNoRows
}
