package mock

import (
	"context"

	"github.com/tverano/docqa"
)

var _ docqa.SettingService = (*SettingService)(nil)

// SettingService is a mock implementation of docqa.SettingService.
type SettingService struct {
	GetSettingFn    func(ctx context.Context, key string) (string, error)
	SetSettingFn    func(ctx context.Context, key, value string) error
	DeleteSettingFn func(ctx context.Context, key string) error
}

func (s *SettingService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.GetSettingFn(ctx, key)
}

func (s *SettingService) SetSetting(ctx context.Context, key, value string) error {
	return s.SetSettingFn(ctx, key, value)
}

func (s *SettingService) DeleteSetting(ctx context.Context, key string) error {
	return s.DeleteSettingFn(ctx, key)
}
