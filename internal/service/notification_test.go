package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/megactek/productivity-management/internal/model"
)

func mustCreateNotification(t *testing.T, s *NotificationService, title string) model.Notification {
	t.Helper()
	n, err := s.Create(context.Background(), model.Notification{Title: title, Message: "body"})
	if err != nil {
		t.Fatalf("creating notification %q: %v", title, err)
	}
	return n
}

func at(hhmm string) time.Time {
	ts, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestNotificationCreateDefaults(t *testing.T) {
	s := NewNotificationService(newTestGateway(t))

	n := mustCreateNotification(t, s, "due soon")
	if n.ID == "" {
		t.Error("expected an assigned id")
	}
	if n.Type != model.NotificationTypeInfo {
		t.Errorf("expected default type info, got %q", n.Type)
	}
	if n.Priority != model.PriorityMedium {
		t.Errorf("expected default priority medium, got %q", n.Priority)
	}
	if n.Read {
		t.Error("expected notifications to start unread")
	}
}

func TestNotificationCreateRequiresContent(t *testing.T) {
	s := NewNotificationService(newTestGateway(t))

	_, err := s.Create(context.Background(), model.Notification{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestNotificationMarkAsRead(t *testing.T) {
	s := NewNotificationService(newTestGateway(t))
	ctx := context.Background()

	n := mustCreateNotification(t, s, "one")
	mustCreateNotification(t, s, "two")

	if err := s.MarkAsRead(ctx, n.ID); err != nil {
		t.Fatalf("mark as read: %v", err)
	}
	unread := s.GetUnread(ctx)
	if len(unread) != 1 || unread[0].Title != "two" {
		t.Errorf("expected one unread notification, got %v", unread)
	}

	if err := s.MarkAsRead(ctx, "no-such-id"); err == nil {
		t.Error("expected NotFoundError for a missing notification")
	}
}

func TestNotificationMarkAllAsRead(t *testing.T) {
	s := NewNotificationService(newTestGateway(t))
	ctx := context.Background()

	mustCreateNotification(t, s, "one")
	mustCreateNotification(t, s, "two")

	if err := s.MarkAllAsRead(ctx); err != nil {
		t.Fatalf("mark all as read: %v", err)
	}
	if unread := s.GetUnread(ctx); len(unread) != 0 {
		t.Errorf("expected no unread notifications, got %d", len(unread))
	}
}

func TestNotificationClearAll(t *testing.T) {
	s := NewNotificationService(newTestGateway(t))
	ctx := context.Background()

	mustCreateNotification(t, s, "one")
	mustCreateNotification(t, s, "two")

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if all := s.GetAll(ctx); len(all) != 0 {
		t.Errorf("expected empty collection, got %d", len(all))
	}
}

func TestQuietHoursSpanningMidnight(t *testing.T) {
	prefs := model.NotificationPreferences{
		Enabled:           true,
		QuietHoursEnabled: true,
		QuietHoursStart:   "22:00",
		QuietHoursEnd:     "06:00",
	}

	cases := []struct {
		time string
		want bool
	}{
		{"23:30", true},
		{"03:00", true},
		{"22:00", true},  // start is inclusive
		{"06:00", false}, // end is exclusive
		{"12:00", false},
		{"21:59", false},
	}
	for _, tc := range cases {
		if got := inQuietHours(prefs, at(tc.time)); got != tc.want {
			t.Errorf("inQuietHours(%s) = %v, want %v", tc.time, got, tc.want)
		}
	}
}

func TestQuietHoursSameDay(t *testing.T) {
	prefs := model.NotificationPreferences{
		Enabled:           true,
		QuietHoursEnabled: true,
		QuietHoursStart:   "09:00",
		QuietHoursEnd:     "17:00",
	}

	cases := []struct {
		time string
		want bool
	}{
		{"12:00", true},
		{"09:00", true},
		{"17:00", false},
		{"08:59", false},
		{"23:00", false},
	}
	for _, tc := range cases {
		if got := inQuietHours(prefs, at(tc.time)); got != tc.want {
			t.Errorf("inQuietHours(%s) = %v, want %v", tc.time, got, tc.want)
		}
	}
}

func TestQuietHoursDisabled(t *testing.T) {
	prefs := model.NotificationPreferences{Enabled: true}
	if inQuietHours(prefs, at("23:30")) {
		t.Error("expected no quiet hours when the feature is disabled")
	}
}

func TestUpdatePreferencesValidatesTimes(t *testing.T) {
	s := NewNotificationService(newTestGateway(t))
	ctx := context.Background()

	bad := model.NotificationPreferences{
		Enabled:           true,
		QuietHoursEnabled: true,
		QuietHoursStart:   "25:00",
		QuietHoursEnd:     "06:00",
	}
	var verr *ValidationError
	if err := s.UpdatePreferences(ctx, bad); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for bad start time, got %v", err)
	}

	good := model.NotificationPreferences{
		Enabled:           true,
		QuietHoursEnabled: true,
		QuietHoursStart:   "22:00",
		QuietHoursEnd:     "06:00",
	}
	if err := s.UpdatePreferences(ctx, good); err != nil {
		t.Fatalf("update preferences: %v", err)
	}
	got := s.GetPreferences(ctx)
	if got.QuietHoursStart != "22:00" || !got.QuietHoursEnabled {
		t.Errorf("preferences round trip mismatch: %+v", got)
	}
}

func TestShouldDeliver(t *testing.T) {
	s := NewNotificationService(newTestGateway(t))
	ctx := context.Background()
	noon := at("12:00")
	night := at("23:30")

	// Defaults: enabled, no quiet hours, all categories and priorities.
	n := model.Notification{Title: "x", Priority: model.PriorityMedium, Category: "reminders"}
	if !s.ShouldDeliver(ctx, n, noon) {
		t.Error("expected delivery under default preferences")
	}

	prefs := model.NotificationPreferences{
		Enabled:           true,
		Categories:        map[string]bool{"reminders": false},
		Priorities:        map[string]bool{model.PriorityLow: false},
		QuietHoursEnabled: true,
		QuietHoursStart:   "22:00",
		QuietHoursEnd:     "06:00",
	}
	if err := s.UpdatePreferences(ctx, prefs); err != nil {
		t.Fatalf("update preferences: %v", err)
	}

	if s.ShouldDeliver(ctx, n, noon) {
		t.Error("expected a disabled category to be suppressed")
	}

	lowPri := model.Notification{Title: "x", Priority: model.PriorityLow}
	if s.ShouldDeliver(ctx, lowPri, noon) {
		t.Error("expected a disabled priority to be suppressed")
	}

	ok := model.Notification{Title: "x", Priority: model.PriorityHigh, Category: "deadlines"}
	if !s.ShouldDeliver(ctx, ok, noon) {
		t.Error("expected an enabled notification to be delivered at noon")
	}
	if s.ShouldDeliver(ctx, ok, night) {
		t.Error("expected quiet hours to suppress delivery at 23:30")
	}

	prefs.Enabled = false
	if err := s.UpdatePreferences(ctx, prefs); err != nil {
		t.Fatalf("update preferences: %v", err)
	}
	if s.ShouldDeliver(ctx, ok, noon) {
		t.Error("expected the master switch to suppress everything")
	}
}
