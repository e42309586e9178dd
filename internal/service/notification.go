package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/megactek/productivity-management/internal/model"
	"github.com/megactek/productivity-management/internal/storage"
)

// NotificationService owns the notification collection and the
// delivery-preferences singleton, including quiet-hours suppression.
type NotificationService struct {
	gw *storage.Gateway
	mu sync.Mutex
}

// NewNotificationService creates a notification service over the given
// gateway.
func NewNotificationService(gw *storage.Gateway) *NotificationService {
	return &NotificationService{gw: gw}
}

// GetAll returns the entire notification collection.
func (s *NotificationService) GetAll(ctx context.Context) []model.Notification {
	return readCollection[model.Notification](ctx, s.gw, entityNotifications)
}

// GetUnread returns all notifications not yet marked read.
func (s *NotificationService) GetUnread(ctx context.Context) []model.Notification {
	var out []model.Notification
	for _, n := range s.GetAll(ctx) {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out
}

// Create validates the input, assigns an id and timestamp, and appends
// the notification to the collection.
func (s *NotificationService) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" && strings.TrimSpace(n.Message) == "" {
		return model.Notification{}, validationf("message", "a title or message is required")
	}
	if n.Type == "" {
		n.Type = model.NotificationTypeInfo
	}
	if n.Priority == "" {
		n.Priority = model.PriorityMedium
	}
	if !model.ValidPriority(n.Priority) {
		return model.Notification{}, validationf("priority", "invalid priority %q", n.Priority)
	}

	n.ID = uuid.New().String()
	n.Read = false
	n.Timestamp = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	items := readCollection[model.Notification](ctx, s.gw, entityNotifications)
	items = append(items, n)
	if err := writeCollection(ctx, s.gw, entityNotifications, items); err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

// MarkAsRead flags a single notification as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := readCollection[model.Notification](ctx, s.gw, entityNotifications)
	for i := range items {
		if items[i].ID == id {
			items[i].Read = true
			return writeCollection(ctx, s.gw, entityNotifications, items)
		}
	}
	return notFound("notification", id)
}

// MarkAllAsRead flags every notification as read.
func (s *NotificationService) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := readCollection[model.Notification](ctx, s.gw, entityNotifications)
	for i := range items {
		items[i].Read = true
	}
	return writeCollection(ctx, s.gw, entityNotifications, items)
}

// Delete removes a single notification.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := readCollection[model.Notification](ctx, s.gw, entityNotifications)
	for i := range items {
		if items[i].ID == id {
			items = append(items[:i], items[i+1:]...)
			return writeCollection(ctx, s.gw, entityNotifications, items)
		}
	}
	return notFound("notification", id)
}

// ClearAll empties the notification collection.
func (s *NotificationService) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeCollection(ctx, s.gw, entityNotifications, []model.Notification{})
}

// GetPreferences returns the delivery-preferences singleton,
// defaulting when none has been persisted.
func (s *NotificationService) GetPreferences(ctx context.Context) model.NotificationPreferences {
	return readSingleton(ctx, s.gw, entityNotificationPrefs, model.DefaultNotificationPreferences())
}

// UpdatePreferences replaces the delivery-preferences singleton.
func (s *NotificationService) UpdatePreferences(ctx context.Context, prefs model.NotificationPreferences) error {
	if prefs.QuietHoursEnabled {
		if _, err := parseMinuteOfDay(prefs.QuietHoursStart); err != nil {
			return validationf("quietHoursStart", "invalid time %q", prefs.QuietHoursStart)
		}
		if _, err := parseMinuteOfDay(prefs.QuietHoursEnd); err != nil {
			return validationf("quietHoursEnd", "invalid time %q", prefs.QuietHoursEnd)
		}
	}
	return writeSingleton(ctx, s.gw, entityNotificationPrefs, prefs)
}

// InQuietHours reports whether at falls inside the configured quiet
// hours. An interval whose start is after its end spans midnight.
func (s *NotificationService) InQuietHours(ctx context.Context, at time.Time) bool {
	prefs := s.GetPreferences(ctx)
	return inQuietHours(prefs, at)
}

func inQuietHours(prefs model.NotificationPreferences, at time.Time) bool {
	if !prefs.QuietHoursEnabled {
		return false
	}
	start, err := parseMinuteOfDay(prefs.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := parseMinuteOfDay(prefs.QuietHoursEnd)
	if err != nil {
		return false
	}

	minute := at.Hour()*60 + at.Minute()
	if start <= end {
		return minute >= start && minute < end
	}
	// Interval spans midnight.
	return minute >= start || minute < end
}

// parseMinuteOfDay converts an "HH:MM" string to a minute-of-day
// value.
func parseMinuteOfDay(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", hhmm)
	}
	return hour*60 + minute, nil
}

// ShouldDeliver reports whether a notification passes all four
// delivery gates: feature enabled, category enabled, priority enabled,
// and outside quiet hours.
func (s *NotificationService) ShouldDeliver(ctx context.Context, n model.Notification, at time.Time) bool {
	prefs := s.GetPreferences(ctx)

	if !prefs.Enabled {
		return false
	}
	if n.Category != "" && prefs.Categories != nil {
		if enabled, ok := prefs.Categories[n.Category]; ok && !enabled {
			return false
		}
	}
	if prefs.Priorities != nil {
		if enabled, ok := prefs.Priorities[n.Priority]; ok && !enabled {
			return false
		}
	}
	return !inQuietHours(prefs, at)
}
