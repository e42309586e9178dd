package state

import (
	"context"
	"sync"

	"github.com/megactek/productivity-management/internal/model"
	"github.com/megactek/productivity-management/internal/service"
)

// ProjectState is the cached view over the project collection.
type ProjectState struct {
	svc *service.ProjectService

	mu       sync.RWMutex
	projects []model.Project
	loading  bool
	err      error
}

// NewProjectState creates an empty cache over the given service.
func NewProjectState(svc *service.ProjectService) *ProjectState {
	return &ProjectState{svc: svc}
}

// Refresh re-reads the whole collection through the service.
func (s *ProjectState) Refresh(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	projects := s.svc.GetAll(ctx)

	s.mu.Lock()
	s.projects = projects
	s.loading = false
	s.err = nil
	s.mu.Unlock()
}

// All returns a copy of the cached collection.
func (s *ProjectState) All() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Project, len(s.projects))
	copy(out, s.projects)
	return out
}

// Loading reports whether a refresh is in flight.
func (s *ProjectState) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last operation error.
func (s *ProjectState) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Active returns the cached projects in active status.
func (s *ProjectState) Active() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Project
	for _, p := range s.projects {
		if p.Status == model.ProjectStatusActive {
			out = append(out, p)
		}
	}
	return out
}

// Create adds a project and caches the created record.
func (s *ProjectState) Create(ctx context.Context, project model.Project) (model.Project, error) {
	created, err := s.svc.Create(ctx, project)
	if err != nil {
		s.setErr(err)
		return model.Project{}, err
	}
	s.mu.Lock()
	s.projects = append(s.projects, created)
	s.err = nil
	s.mu.Unlock()
	return created, nil
}

// Update applies a partial update and refreshes the cached record.
func (s *ProjectState) Update(ctx context.Context, id string, upd service.ProjectUpdate) (model.Project, error) {
	updated, err := s.svc.Update(ctx, id, upd)
	if err != nil {
		s.setErr(err)
		return model.Project{}, err
	}
	s.replace(updated)
	return updated, nil
}

// Delete removes a project from the collection and the cache.
func (s *ProjectState) Delete(ctx context.Context, id string) error {
	if err := s.svc.Delete(ctx, id); err != nil {
		s.setErr(err)
		return err
	}
	s.mu.Lock()
	for i := range s.projects {
		if s.projects[i].ID == id {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			break
		}
	}
	s.err = nil
	s.mu.Unlock()
	return nil
}

// AddTodo links a todo into a project and refreshes the cached record.
func (s *ProjectState) AddTodo(ctx context.Context, projectID, todoID string) (model.Project, error) {
	updated, err := s.svc.AddTodoToProject(ctx, projectID, todoID)
	if err != nil {
		s.setErr(err)
		return model.Project{}, err
	}
	s.replace(updated)
	return updated, nil
}

// RemoveTodo unlinks a todo from a project and refreshes the cached
// record.
func (s *ProjectState) RemoveTodo(ctx context.Context, projectID, todoID string) (model.Project, error) {
	updated, err := s.svc.RemoveTodoFromProject(ctx, projectID, todoID)
	if err != nil {
		s.setErr(err)
		return model.Project{}, err
	}
	s.replace(updated)
	return updated, nil
}

// RecomputeProgress re-derives a project's progress from its linked
// todos.
func (s *ProjectState) RecomputeProgress(ctx context.Context, projectID string) (model.Project, error) {
	updated, err := s.svc.UpdateProjectProgress(ctx, projectID)
	if err != nil {
		s.setErr(err)
		return model.Project{}, err
	}
	s.replace(updated)
	return updated, nil
}

func (s *ProjectState) replace(project model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.projects {
		if s.projects[i].ID == project.ID {
			s.projects[i] = project
			s.err = nil
			return
		}
	}
	s.projects = append(s.projects, project)
	s.err = nil
}

func (s *ProjectState) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
