package service

import (
	"context"
	"errors"
	"testing"

	"github.com/megactek/productivity-management/internal/model"
)

func TestSettingsDefaultOnMiss(t *testing.T) {
	s := NewSettingsService(newTestGateway(t))

	got := s.Get(context.Background())
	want := model.DefaultAppSettings()
	if got.Theme != want.Theme || got.CompletionGoal != want.CompletionGoal {
		t.Errorf("expected defaults on first read, got %+v", got)
	}
	if got.WorkingHours.Start != "09:00" || got.WorkingHours.End != "17:00" {
		t.Errorf("expected default working hours, got %+v", got.WorkingHours)
	}
}

func TestSettingsUpdateRoundTrip(t *testing.T) {
	s := NewSettingsService(newTestGateway(t))
	ctx := context.Background()

	settings := s.Get(ctx)
	settings.Theme = model.ThemeDark
	settings.CompletionGoal = 8
	if err := s.Update(ctx, settings); err != nil {
		t.Fatalf("update: %v", err)
	}

	got := s.Get(ctx)
	if got.Theme != model.ThemeDark || got.CompletionGoal != 8 {
		t.Errorf("settings round trip mismatch: %+v", got)
	}
}

func TestSettingsUpdateValidation(t *testing.T) {
	s := NewSettingsService(newTestGateway(t))
	ctx := context.Background()

	var verr *ValidationError

	bad := model.DefaultAppSettings()
	bad.Theme = "solarized"
	if err := s.Update(ctx, bad); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for a bad theme, got %v", err)
	}

	bad = model.DefaultAppSettings()
	bad.CompletionGoal = -1
	if err := s.Update(ctx, bad); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for a negative goal, got %v", err)
	}
}

func TestSettingsStorageModeWithoutRemote(t *testing.T) {
	gw := newTestGateway(t)
	s := NewSettingsService(gw)
	ctx := context.Background()

	settings := s.Get(ctx)
	settings.UseServerStorage = true
	if err := s.Update(ctx, settings); err != nil {
		t.Fatalf("update: %v", err)
	}
	// No remote backend is configured, so the flag must not flip the
	// gateway into server mode.
	if gw.UseServerStorage() {
		t.Error("expected the gateway to stay local without a remote backend")
	}
}
