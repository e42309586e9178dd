package state

import (
	"context"
	"sync"

	"github.com/megactek/productivity-management/internal/model"
	"github.com/megactek/productivity-management/internal/service"
)

// NotificationState is the cached view over the notification
// collection.
type NotificationState struct {
	svc *service.NotificationService

	mu      sync.RWMutex
	items   []model.Notification
	loading bool
	err     error
}

// NewNotificationState creates an empty cache over the given service.
func NewNotificationState(svc *service.NotificationService) *NotificationState {
	return &NotificationState{svc: svc}
}

// Refresh re-reads the whole collection through the service.
func (s *NotificationState) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items := s.svc.GetAll(ctx)

	s.mu.Lock()
	s.items = items
	s.loading = false
	s.err = nil
	s.mu.Unlock()
}

// All returns a copy of the cached collection.
func (s *NotificationState) All() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount returns the number of cached unread notifications.
func (s *NotificationState) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count
}

// Loading reports whether a refresh is in flight.
func (s *NotificationState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last operation error.
func (s *NotificationState) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Add creates a notification and caches the created record.
func (s *NotificationState) Add(ctx context.Context, n model.Notification) (model.Notification, error) {
	created, err := s.svc.Create(ctx, n)
	if err != nil {
		s.setErr(err)
		return model.Notification{}, err
	}
	s.mu.Lock()
	s.items = append(s.items, created)
	s.err = nil
	s.mu.Unlock()
	return created, nil
}

// MarkAsRead flags a notification as read.
func (s *NotificationState) MarkAsRead(ctx context.Context, id string) error {
	if err := s.svc.MarkAsRead(ctx, id); err != nil {
		s.setErr(err)
		return err
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			break
		}
	}
	s.err = nil
	s.mu.Unlock()
	return nil
}

// MarkAllAsRead flags every notification as read.
func (s *NotificationState) MarkAllAsRead(ctx context.Context) error {
	if err := s.svc.MarkAllAsRead(ctx); err != nil {
		s.setErr(err)
		return err
	}
	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.err = nil
	s.mu.Unlock()
	return nil
}

// Delete removes a notification.
func (s *NotificationState) Delete(ctx context.Context, id string) error {
	if err := s.svc.Delete(ctx, id); err != nil {
		s.setErr(err)
		return err
	}
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.err = nil
	s.mu.Unlock()
	return nil
}

// ClearAll empties the notification collection.
func (s *NotificationState) ClearAll(ctx context.Context) error {
	if err := s.svc.ClearAll(ctx); err != nil {
		s.setErr(err)
		return err
	}
	s.mu.Lock()
	s.items = nil
	s.err = nil
	s.mu.Unlock()
	return nil
}

func (s *NotificationState) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
