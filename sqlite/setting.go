package sqlite

import (
	"context"
	"database/sql"

	"github.com/tverano/docqa"
)

// Compile-time interface verification.
var _ docqa.SettingService = (*SettingService)(nil)

// SettingService implements docqa.SettingService using SQLite.
type SettingService struct {
	db *DB
}

// NewSettingService creates a new SettingService.
func NewSettingService(db *DB) *SettingService {
	return &SettingService{db: db}
}

// GetSetting returns the value for key, or "" if unset.
func (s *SettingService) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting stores the value for key, replacing any previous value.
func (s *SettingService) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return docqa.Errorf(docqa.EINVALID, "setting key required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// DeleteSetting removes the key.
func (s *SettingService) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
	return err
}
