package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/megactek/productivity-management/internal/model"
	"github.com/megactek/productivity-management/internal/storage"
)

// Limits enforced on todo fields.
const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// TodoUpdate carries a partial update; nil fields are left unchanged.
type TodoUpdate struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	DueDate      *time.Time
	ClearDueDate bool
	ProjectID    *string
	Tags         *[]string
	Subtasks     *[]model.Subtask
	Images       *[]string
}

// TodoService owns the todo collection.
type TodoService struct {
	gw *storage.Gateway

	// mu serializes this process's read-modify-write cycles over the
	// collection. Writers in other processes still race (last writer
	// wins).
	mu sync.Mutex
}

// NewTodoService creates a todo service over the given gateway.
func NewTodoService(gw *storage.Gateway) *TodoService {
	return &TodoService{gw: gw}
}

// validateTodoFields checks the shared create/update validation rules.
func validateTodoFields(title, description, status, priority string) error {
	if strings.TrimSpace(title) == "" {
		return validationf("title", "title is required")
	}
	if len(title) > maxTitleLen {
		return validationf("title", "title must be at most %d characters", maxTitleLen)
	}
	if len(description) > maxDescriptionLen {
		return validationf("description", "description must be at most %d characters", maxDescriptionLen)
	}
	if !model.ValidTodoStatus(status) {
		return validationf("status", "invalid status %q", status)
	}
	if !model.ValidPriority(priority) {
		return validationf("priority", "invalid priority %q", priority)
	}
	return nil
}

// GetAll returns the entire todo collection.
func (s *TodoService) GetAll(ctx context.Context) []model.Todo {
	return readCollection[model.Todo](ctx, s.gw, entityTodos)
}

// GetByID returns a single todo.
func (s *TodoService) GetByID(ctx context.Context, id string) (*model.Todo, error) {
	for _, t := range s.GetAll(ctx) {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, notFound("todo", id)
}

// Create validates the input, assigns an id and timestamps, and
// appends the todo to the collection.
func (s *TodoService) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	todo.Title = strings.TrimSpace(todo.Title)
	if todo.Status == "" {
		todo.Status = model.TodoStatusPending
	}
	if todo.Priority == "" {
		todo.Priority = model.PriorityMedium
	}
	if err := validateTodoFields(todo.Title, todo.Description, todo.Status, todo.Priority); err != nil {
		return model.Todo{}, err
	}

	now := time.Now().UTC()
	todo.ID = uuid.New().String()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	if len(todo.Subtasks) > 0 {
		todo.Progress = todo.SubtaskProgress()
	}
	if todo.Status == model.TodoStatusCompleted {
		todo.CompletedAt = &now
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	todos := readCollection[model.Todo](ctx, s.gw, entityTodos)
	todos = append(todos, todo)
	if err := writeCollection(ctx, s.gw, entityTodos, todos); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

// Update applies a partial update to an existing todo.
func (s *TodoService) Update(ctx context.Context, id string, upd TodoUpdate) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := readCollection[model.Todo](ctx, s.gw, entityTodos)
	idx := indexOfTodo(todos, id)
	if idx < 0 {
		return model.Todo{}, notFound("todo", id)
	}

	todo := todos[idx]
	if upd.Title != nil {
		todo.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Description != nil {
		todo.Description = *upd.Description
	}
	if upd.Status != nil {
		todo.Status = *upd.Status
	}
	if upd.Priority != nil {
		todo.Priority = *upd.Priority
	}
	if upd.ClearDueDate {
		todo.DueDate = nil
	} else if upd.DueDate != nil {
		todo.DueDate = upd.DueDate
	}
	if upd.ProjectID != nil {
		todo.ProjectID = *upd.ProjectID
	}
	if upd.Tags != nil {
		todo.Tags = *upd.Tags
	}
	if upd.Subtasks != nil {
		todo.Subtasks = *upd.Subtasks
	}
	if upd.Images != nil {
		todo.Images = *upd.Images
	}

	if err := validateTodoFields(todo.Title, todo.Description, todo.Status, todo.Priority); err != nil {
		return model.Todo{}, err
	}

	now := time.Now().UTC()
	todo.UpdatedAt = now
	if len(todo.Subtasks) > 0 {
		todo.Progress = todo.SubtaskProgress()
	} else {
		todo.Progress = 0
	}

	// Auto-manage completedAt based on status.
	if todo.Status == model.TodoStatusCompleted && todo.CompletedAt == nil {
		todo.CompletedAt = &now
	} else if todo.Status != model.TodoStatusCompleted {
		todo.CompletedAt = nil
	}

	todos[idx] = todo
	if err := writeCollection(ctx, s.gw, entityTodos, todos); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

// Delete removes a todo from the collection.
func (s *TodoService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := readCollection[model.Todo](ctx, s.gw, entityTodos)
	idx := indexOfTodo(todos, id)
	if idx < 0 {
		return notFound("todo", id)
	}
	todos = append(todos[:idx], todos[idx+1:]...)
	return writeCollection(ctx, s.gw, entityTodos, todos)
}

// UpdateStatus moves a todo to the given status, managing completedAt.
func (s *TodoService) UpdateStatus(ctx context.Context, id, status string) (model.Todo, error) {
	if !model.ValidTodoStatus(status) {
		return model.Todo{}, validationf("status", "invalid status %q", status)
	}
	return s.Update(ctx, id, TodoUpdate{Status: &status})
}

// SetProject points a todo at a project (empty id clears the
// back-reference). Used by the project service's two-sided updates.
func (s *TodoService) SetProject(ctx context.Context, id, projectID string) (model.Todo, error) {
	return s.Update(ctx, id, TodoUpdate{ProjectID: &projectID})
}

// GetByProject returns all todos referencing the given project.
func (s *TodoService) GetByProject(ctx context.Context, projectID string) []model.Todo {
	var out []model.Todo
	for _, t := range s.GetAll(ctx) {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// GetByStatus returns all todos in the given status.
func (s *TodoService) GetByStatus(ctx context.Context, status string) []model.Todo {
	var out []model.Todo
	for _, t := range s.GetAll(ctx) {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// GetOverdue returns all todos with a past due date that are not yet
// completed.
func (s *TodoService) GetOverdue(ctx context.Context) []model.Todo {
	now := time.Now().UTC()
	var out []model.Todo
	for _, t := range s.GetAll(ctx) {
		if t.IsOverdue(now) {
			out = append(out, t)
		}
	}
	return out
}

// AddSubtask appends an embedded subtask and recomputes progress.
func (s *TodoService) AddSubtask(ctx context.Context, todoID, title string) (model.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Todo{}, validationf("subtask", "subtask title is required")
	}
	return s.mutateTodo(ctx, todoID, func(todo *model.Todo) error {
		todo.Subtasks = append(todo.Subtasks, model.Subtask{
			ID:        uuid.New().String(),
			Title:     title,
			CreatedAt: time.Now().UTC(),
		})
		return nil
	})
}

// ToggleSubtask flips a subtask's completed flag and recomputes
// progress.
func (s *TodoService) ToggleSubtask(ctx context.Context, todoID, subtaskID string) (model.Todo, error) {
	return s.mutateTodo(ctx, todoID, func(todo *model.Todo) error {
		for i := range todo.Subtasks {
			if todo.Subtasks[i].ID != subtaskID {
				continue
			}
			todo.Subtasks[i].Completed = !todo.Subtasks[i].Completed
			if todo.Subtasks[i].Completed {
				now := time.Now().UTC()
				todo.Subtasks[i].CompletedAt = &now
			} else {
				todo.Subtasks[i].CompletedAt = nil
			}
			return nil
		}
		return notFound("subtask", subtaskID)
	})
}

// RemoveSubtask deletes an embedded subtask and recomputes progress.
func (s *TodoService) RemoveSubtask(ctx context.Context, todoID, subtaskID string) (model.Todo, error) {
	return s.mutateTodo(ctx, todoID, func(todo *model.Todo) error {
		for i := range todo.Subtasks {
			if todo.Subtasks[i].ID == subtaskID {
				todo.Subtasks = append(todo.Subtasks[:i], todo.Subtasks[i+1:]...)
				return nil
			}
		}
		return notFound("subtask", subtaskID)
	})
}

// AddTag adds a tag to a todo. Adding an existing tag is a no-op.
func (s *TodoService) AddTag(ctx context.Context, todoID, tag string) (model.Todo, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return model.Todo{}, validationf("tag", "tag is required")
	}
	return s.mutateTodo(ctx, todoID, func(todo *model.Todo) error {
		todo.Tags = appendUnique(todo.Tags, tag)
		return nil
	})
}

// RemoveTag removes a tag from a todo. Removing an absent tag is a
// no-op.
func (s *TodoService) RemoveTag(ctx context.Context, todoID, tag string) (model.Todo, error) {
	return s.mutateTodo(ctx, todoID, func(todo *model.Todo) error {
		todo.Tags = removeString(todo.Tags, tag)
		return nil
	})
}

// mutateTodo runs fn against the addressed todo inside a single
// read-modify-write cycle, then refreshes derived fields and persists
// the whole collection.
func (s *TodoService) mutateTodo(ctx context.Context, id string, fn func(*model.Todo) error) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := readCollection[model.Todo](ctx, s.gw, entityTodos)
	idx := indexOfTodo(todos, id)
	if idx < 0 {
		return model.Todo{}, notFound("todo", id)
	}

	todo := todos[idx]
	if err := fn(&todo); err != nil {
		return model.Todo{}, err
	}

	todo.UpdatedAt = time.Now().UTC()
	if len(todo.Subtasks) > 0 {
		todo.Progress = todo.SubtaskProgress()
	} else {
		todo.Progress = 0
	}

	todos[idx] = todo
	if err := writeCollection(ctx, s.gw, entityTodos, todos); err != nil {
		return model.Todo{}, err
	}
	return todo, nil
}

func indexOfTodo(todos []model.Todo, id string) int {
	for i, t := range todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// appendUnique adds s to list unless already present.
func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// removeString removes every occurrence of s from list.
func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
