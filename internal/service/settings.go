package service

import (
	"context"
	"sync"

	"github.com/megactek/productivity-management/internal/model"
	"github.com/megactek/productivity-management/internal/storage"
)

// SettingsService owns the application settings singleton. Updating
// the storage-mode flag flips the gateway's primary backend.
type SettingsService struct {
	gw *storage.Gateway
	mu sync.Mutex
}

// NewSettingsService creates a settings service over the given
// gateway.
func NewSettingsService(gw *storage.Gateway) *SettingsService {
	return &SettingsService{gw: gw}
}

// Get returns the settings singleton, defaulting when none has been
// persisted or the read fails.
func (s *SettingsService) Get(ctx context.Context) model.AppSettings {
	return readSingleton(ctx, s.gw, entitySettings, model.DefaultAppSettings())
}

// Update replaces the settings singleton and applies the storage-mode
// flag to the gateway.
func (s *SettingsService) Update(ctx context.Context, settings model.AppSettings) error {
	switch settings.Theme {
	case model.ThemeLight, model.ThemeDark, model.ThemeSystem:
	default:
		return validationf("theme", "invalid theme %q", settings.Theme)
	}
	if settings.CompletionGoal < 0 {
		return validationf("completionGoal", "completion goal must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeSingleton(ctx, s.gw, entitySettings, settings); err != nil {
		return err
	}
	s.gw.SetUseServerStorage(settings.UseServerStorage)
	return nil
}
