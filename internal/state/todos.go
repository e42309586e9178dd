// Package state caches the entity collections in memory and exposes
// CRUD operations with refetch-on-demand semantics so UI frontends can
// render without touching storage on every read.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/megactek/productivity-management/internal/model"
	"github.com/megactek/productivity-management/internal/service"
)

// TodoState is the cached view over the todo collection.
type TodoState struct {
	svc *service.TodoService

	mu      sync.RWMutex
	todos   []model.Todo
	loading bool
	err     error
}

// NewTodoState creates an empty cache over the given service. Call
// Refresh to populate it.
func NewTodoState(svc *service.TodoService) *TodoState {
	return &TodoState{svc: svc}
}

// Refresh re-reads the whole collection through the service.
func (s *TodoState) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	todos := s.svc.GetAll(ctx)

	s.mu.Lock()
	s.todos = todos
	s.loading = false
	s.err = nil
	s.mu.Unlock()
}

// All returns a copy of the cached collection.
func (s *TodoState) All() []model.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// Loading reports whether a refresh is in flight.
func (s *TodoState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last operation error, nil after a successful
// refresh.
func (s *TodoState) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Create adds a todo and caches the created record.
func (s *TodoState) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	created, err := s.svc.Create(ctx, todo)
	if err != nil {
		s.setErr(err)
		return model.Todo{}, err
	}
	s.mu.Lock()
	s.todos = append(s.todos, created)
	s.err = nil
	s.mu.Unlock()
	return created, nil
}

// Update applies a partial update and refreshes the cached record.
func (s *TodoState) Update(ctx context.Context, id string, upd service.TodoUpdate) (model.Todo, error) {
	updated, err := s.svc.Update(ctx, id, upd)
	if err != nil {
		s.setErr(err)
		return model.Todo{}, err
	}
	s.replace(updated)
	return updated, nil
}

// Delete removes a todo from the collection and the cache.
func (s *TodoState) Delete(ctx context.Context, id string) error {
	if err := s.svc.Delete(ctx, id); err != nil {
		s.setErr(err)
		return err
	}
	s.mu.Lock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			break
		}
	}
	s.err = nil
	s.mu.Unlock()
	return nil
}

// UpdateStatus moves a todo to the given status.
func (s *TodoState) UpdateStatus(ctx context.Context, id, status string) (model.Todo, error) {
	updated, err := s.svc.UpdateStatus(ctx, id, status)
	if err != nil {
		s.setErr(err)
		return model.Todo{}, err
	}
	s.replace(updated)
	return updated, nil
}

// AddSubtask appends a subtask to a todo.
func (s *TodoState) AddSubtask(ctx context.Context, todoID, title string) (model.Todo, error) {
	updated, err := s.svc.AddSubtask(ctx, todoID, title)
	if err != nil {
		s.setErr(err)
		return model.Todo{}, err
	}
	s.replace(updated)
	return updated, nil
}

// ToggleSubtask flips a subtask and applies the status state machine:
// completing the last open subtask forces the todo to completed, and
// dropping to zero completed subtasks reverts an in-progress todo to
// pending.
func (s *TodoState) ToggleSubtask(ctx context.Context, todoID, subtaskID string) (model.Todo, error) {
	updated, err := s.svc.ToggleSubtask(ctx, todoID, subtaskID)
	if err != nil {
		s.setErr(err)
		return model.Todo{}, err
	}

	if next, ok := nextStatusForSubtasks(updated); ok {
		updated, err = s.svc.UpdateStatus(ctx, todoID, next)
		if err != nil {
			s.setErr(err)
			return model.Todo{}, err
		}
	}

	s.replace(updated)
	return updated, nil
}

// RemoveSubtask deletes a subtask from a todo.
func (s *TodoState) RemoveSubtask(ctx context.Context, todoID, subtaskID string) (model.Todo, error) {
	updated, err := s.svc.RemoveSubtask(ctx, todoID, subtaskID)
	if err != nil {
		s.setErr(err)
		return model.Todo{}, err
	}
	s.replace(updated)
	return updated, nil
}

// nextStatusForSubtasks returns the status the subtask state machine
// forces, if any.
func nextStatusForSubtasks(t model.Todo) (string, bool) {
	if len(t.Subtasks) == 0 {
		return "", false
	}
	completed := 0
	for _, st := range t.Subtasks {
		if st.Completed {
			completed++
		}
	}
	if completed == len(t.Subtasks) && t.Status != model.TodoStatusCompleted {
		return model.TodoStatusCompleted, true
	}
	if completed == 0 && t.Status == model.TodoStatusInProgress {
		return model.TodoStatusPending, true
	}
	return "", false
}

// Pending returns the cached todos in pending status.
func (s *TodoState) Pending() []model.Todo {
	return s.filter(func(t model.Todo) bool { return t.Status == model.TodoStatusPending })
}

// InProgress returns the cached todos in in-progress status.
func (s *TodoState) InProgress() []model.Todo {
	return s.filter(func(t model.Todo) bool { return t.Status == model.TodoStatusInProgress })
}

// Completed returns the cached todos in completed status.
func (s *TodoState) Completed() []model.Todo {
	return s.filter(func(t model.Todo) bool { return t.Status == model.TodoStatusCompleted })
}

// Overdue returns the cached todos past their due date and not
// completed.
func (s *TodoState) Overdue() []model.Todo {
	now := time.Now().UTC()
	return s.filter(func(t model.Todo) bool { return t.IsOverdue(now) })
}

func (s *TodoState) filter(keep func(model.Todo) bool) []model.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Todo
	for _, t := range s.todos {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *TodoState) replace(todo model.Todo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == todo.ID {
			s.todos[i] = todo
			s.err = nil
			return
		}
	}
	s.todos = append(s.todos, todo)
	s.err = nil
}

func (s *TodoState) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
