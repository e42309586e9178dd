package model

import "time"

// Notification types.
const (
	NotificationTypeInfo     = "info"
	NotificationTypeSuccess  = "success"
	NotificationTypeWarning  = "warning"
	NotificationTypeError    = "error"
	NotificationTypeReminder = "reminder"
)

// NotificationAction is an optional action button attached to a
// notification.
type NotificationAction struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Notification represents an alert or update surfaced to the user.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Title is the short headline text.
	Title string `json:"title"`

	// Message is the human-readable notification body.
	Message string `json:"message"`

	// Type classifies the notification (info, success, warning, error,
	// reminder).
	Type string `json:"type"`

	// Priority is low, medium, or high.
	Priority string `json:"priority"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// Timestamp is when this notification was generated.
	Timestamp time.Time `json:"timestamp"`

	// Category optionally groups notifications for preference gating.
	Category string `json:"category,omitempty"`

	// Actions are optional action buttons.
	Actions []NotificationAction `json:"actions,omitempty"`
}

// NotificationPreferences is the singleton controlling notification
// delivery. Quiet hours are expressed as "HH:MM" local times; an
// interval whose start is after its end spans midnight.
type NotificationPreferences struct {
	Enabled           bool            `json:"enabled"`
	Categories        map[string]bool `json:"categories,omitempty"`
	Priorities        map[string]bool `json:"priorities,omitempty"`
	QuietHoursEnabled bool            `json:"quietHoursEnabled"`
	QuietHoursStart   string          `json:"quietHoursStart"`
	QuietHoursEnd     string          `json:"quietHoursEnd"`
}

// DefaultNotificationPreferences returns the preferences used when
// none have been persisted: everything enabled, no quiet hours.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		Enabled:         true,
		QuietHoursStart: "22:00",
		QuietHoursEnd:   "08:00",
	}
}
