package docqa

import "context"

// Well-known setting keys.
const (
	SettingModel = "model"
)

// SettingService is a small key/value store for application preferences.
type SettingService interface {
	// GetSetting returns the value for key, or "" if unset.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting stores the value for key, replacing any previous value.
	SetSetting(ctx context.Context, key, value string) error

	// DeleteSetting removes the key. Deleting an absent key is not an
	// error.
	DeleteSetting(ctx context.Context, key string) error
}
