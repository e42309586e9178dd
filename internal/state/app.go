package state

import (
	"context"
	"sync"

	"github.com/megactek/productivity-management/internal/model"
	"github.com/megactek/productivity-management/internal/service"
)

// AppState composes the per-entity states into one application-wide
// value and owns the settings singleton.
type AppState struct {
	Todos         *TodoState
	Projects      *ProjectState
	Notes         *NoteState
	Notifications *NotificationState

	settingsSvc *service.SettingsService

	// OnThemeChange, when set, is invoked with the resolved theme
	// ("light" or "dark") after every settings change.
	OnThemeChange func(theme string)

	// ResolveSystemTheme maps the "system" preference to a concrete
	// theme. Defaults to light.
	ResolveSystemTheme func() string

	mu       sync.RWMutex
	settings model.AppSettings
}

// NewAppState wires the per-entity states and the settings service
// into one aggregate.
func NewAppState(
	todos *TodoState,
	projects *ProjectState,
	notes *NoteState,
	notifications *NotificationState,
	settingsSvc *service.SettingsService,
) *AppState {
	return &AppState{
		Todos:         todos,
		Projects:      projects,
		Notes:         notes,
		Notifications: notifications,
		settingsSvc:   settingsSvc,
		settings:      model.DefaultAppSettings(),
	}
}

// Load populates every entity cache and the settings singleton.
// Settings failures resolve to defaults rather than blocking startup.
func (a *AppState) Load(ctx context.Context) {
	a.Todos.Refresh(ctx)
	a.Projects.Refresh(ctx)
	a.Notes.Refresh(ctx)
	a.Notifications.Refresh(ctx)

	settings := a.settingsSvc.Get(ctx)
	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()
	a.applyTheme()
}

// Loading reports whether any entity state is still loading.
func (a *AppState) Loading() bool {
	return a.Todos.Loading() || a.Projects.Loading() ||
		a.Notes.Loading() || a.Notifications.Loading()
}

// Err returns the first non-nil error across the entity states.
func (a *AppState) Err() error {
	if err := a.Todos.Err(); err != nil {
		return err
	}
	if err := a.Projects.Err(); err != nil {
		return err
	}
	if err := a.Notes.Err(); err != nil {
		return err
	}
	return a.Notifications.Err()
}

// Settings returns the cached settings singleton.
func (a *AppState) Settings() model.AppSettings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// UpdateSettings persists new settings, updates the cache, and fires
// the theme side effect.
func (a *AppState) UpdateSettings(ctx context.Context, settings model.AppSettings) error {
	if err := a.settingsSvc.Update(ctx, settings); err != nil {
		return err
	}
	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()
	a.applyTheme()
	return nil
}

// ResolvedTheme maps the theme preference to a concrete theme,
// resolving "system" through ResolveSystemTheme.
func (a *AppState) ResolvedTheme() string {
	a.mu.RLock()
	theme := a.settings.Theme
	a.mu.RUnlock()

	switch theme {
	case model.ThemeLight, model.ThemeDark:
		return theme
	default:
		if a.ResolveSystemTheme != nil {
			return a.ResolveSystemTheme()
		}
		return model.ThemeLight
	}
}

// LinkTodoToProject performs the two-sided link and keeps both caches
// fresh.
func (a *AppState) LinkTodoToProject(ctx context.Context, projectID, todoID string) (model.Project, error) {
	project, err := a.Projects.AddTodo(ctx, projectID, todoID)
	if err != nil {
		return model.Project{}, err
	}
	a.Todos.Refresh(ctx)
	return project, nil
}

// UnlinkTodoFromProject performs the two-sided unlink and keeps both
// caches fresh.
func (a *AppState) UnlinkTodoFromProject(ctx context.Context, projectID, todoID string) (model.Project, error) {
	project, err := a.Projects.RemoveTodo(ctx, projectID, todoID)
	if err != nil {
		return model.Project{}, err
	}
	a.Todos.Refresh(ctx)
	return project, nil
}

func (a *AppState) applyTheme() {
	if a.OnThemeChange != nil {
		a.OnThemeChange(a.ResolvedTheme())
	}
}
