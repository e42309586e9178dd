package service

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/megactek/productivity-management/internal/model"
	"github.com/megactek/productivity-management/internal/storage"
)

// ProjectUpdate carries a partial update; nil fields are left
// unchanged.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *string
	StartDate   *time.Time
	DueDate     *time.Time
	ClearDates  bool
}

// ProjectService owns the project collection, including the embedded
// milestone, resource, and risk sub-collections. It cooperates with
// the todo service to keep the project.todoIds forward-references and
// todo.projectId back-references consistent.
type ProjectService struct {
	gw    *storage.Gateway
	todos *TodoService
	mu    sync.Mutex
}

// NewProjectService creates a project service over the given gateway
// and todo service.
func NewProjectService(gw *storage.Gateway, todos *TodoService) *ProjectService {
	return &ProjectService{gw: gw, todos: todos}
}

// validateProjectFields checks the shared create/update rules.
func validateProjectFields(name, status string, start, due *time.Time) error {
	if strings.TrimSpace(name) == "" {
		return validationf("name", "name is required")
	}
	if len(name) > maxTitleLen {
		return validationf("name", "name must be at most %d characters", maxTitleLen)
	}
	if !model.ValidProjectStatus(status) {
		return validationf("status", "invalid status %q", status)
	}
	if start != nil && due != nil && start.After(*due) {
		return validationf("startDate", "start date must not be after due date")
	}
	return nil
}

// GetAll returns the entire project collection.
func (s *ProjectService) GetAll(ctx context.Context) []model.Project {
	return readCollection[model.Project](ctx, s.gw, entityProjects)
}

// GetByID returns a single project.
func (s *ProjectService) GetByID(ctx context.Context, id string) (*model.Project, error) {
	for _, p := range s.GetAll(ctx) {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, notFound("project", id)
}

// GetByStatus returns all projects in the given status.
func (s *ProjectService) GetByStatus(ctx context.Context, status string) []model.Project {
	var out []model.Project
	for _, p := range s.GetAll(ctx) {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// Create validates the input, assigns an id and timestamps, and
// appends the project to the collection.
func (s *ProjectService) Create(ctx context.Context, project model.Project) (model.Project, error) {
	project.Name = strings.TrimSpace(project.Name)
	if project.Status == "" {
		project.Status = model.ProjectStatusPlanning
	}
	if err := validateProjectFields(project.Name, project.Status, project.StartDate, project.DueDate); err != nil {
		return model.Project{}, err
	}

	now := time.Now().UTC()
	project.ID = uuid.New().String()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.TodoIDs == nil {
		project.TodoIDs = []string{}
	}
	if project.Milestones == nil {
		project.Milestones = []model.Milestone{}
	}
	project.Progress = 0

	s.mu.Lock()
	defer s.mu.Unlock()

	projects := readCollection[model.Project](ctx, s.gw, entityProjects)
	projects = append(projects, project)
	if err := writeCollection(ctx, s.gw, entityProjects, projects); err != nil {
		return model.Project{}, err
	}
	return project, nil
}

// Update applies a partial update to an existing project.
func (s *ProjectService) Update(ctx context.Context, id string, upd ProjectUpdate) (model.Project, error) {
	return s.mutateProject(ctx, id, func(p *model.Project) error {
		if upd.Name != nil {
			p.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		if upd.Status != nil {
			p.Status = *upd.Status
		}
		if upd.ClearDates {
			p.StartDate = nil
			p.DueDate = nil
		} else {
			if upd.StartDate != nil {
				p.StartDate = upd.StartDate
			}
			if upd.DueDate != nil {
				p.DueDate = upd.DueDate
			}
		}
		return validateProjectFields(p.Name, p.Status, p.StartDate, p.DueDate)
	})
}

// Delete removes a project and clears the projectId back-reference on
// every todo that pointed at it.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()

	projects := readCollection[model.Project](ctx, s.gw, entityProjects)
	idx := indexOfProject(projects, id)
	if idx < 0 {
		s.mu.Unlock()
		return notFound("project", id)
	}
	orphaned := projects[idx].TodoIDs
	projects = append(projects[:idx], projects[idx+1:]...)
	err := writeCollection(ctx, s.gw, entityProjects, projects)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	for _, todoID := range orphaned {
		if _, err := s.todos.SetProject(ctx, todoID, ""); err != nil {
			if _, ok := err.(*NotFoundError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// AddTodoToProject links a todo into a project: the todo's projectId
// back-reference and the project's todoIds forward-reference are
// updated together, then progress is recomputed. Adding an already
// linked todo is idempotent; a todo linked to another project is moved,
// not duplicated.
func (s *ProjectService) AddTodoToProject(ctx context.Context, projectID, todoID string) (model.Project, error) {
	todo, err := s.todos.GetByID(ctx, todoID)
	if err != nil {
		return model.Project{}, err
	}

	// Unlink from the previous project first so no stale forward
	// reference survives the relink.
	if todo.ProjectID != "" && todo.ProjectID != projectID {
		if _, err := s.mutateProject(ctx, todo.ProjectID, func(p *model.Project) error {
			p.TodoIDs = removeString(p.TodoIDs, todoID)
			return nil
		}); err != nil {
			if _, ok := err.(*NotFoundError); !ok {
				return model.Project{}, err
			}
		}
	}

	if _, err := s.todos.SetProject(ctx, todoID, projectID); err != nil {
		return model.Project{}, err
	}
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		if !p.HasTodo(todoID) {
			p.TodoIDs = append(p.TodoIDs, todoID)
		}
		return nil
	})
}

// RemoveTodoFromProject unlinks a todo from a project, clearing the
// back-reference and recomputing progress. Removing an unlinked todo
// is idempotent; a todo linked to a different project keeps its link.
func (s *ProjectService) RemoveTodoFromProject(ctx context.Context, projectID, todoID string) (model.Project, error) {
	if todo, err := s.todos.GetByID(ctx, todoID); err == nil {
		// Clear the back-reference only when it actually points at this
		// project; a todo linked elsewhere keeps its link.
		if todo.ProjectID == projectID {
			if _, err := s.todos.SetProject(ctx, todoID, ""); err != nil {
				return model.Project{}, err
			}
		}
	} else if _, ok := err.(*NotFoundError); !ok {
		return model.Project{}, err
	}
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		p.TodoIDs = removeString(p.TodoIDs, todoID)
		return nil
	})
}

// UpdateProjectProgress recomputes progress from the completion ratio
// of the project's linked todos and persists the project.
func (s *ProjectService) UpdateProjectProgress(ctx context.Context, projectID string) (model.Project, error) {
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		return nil
	})
}

// computeProgress returns round(100 * completed / total) over the
// project's todoIds, 0 when the project has no todos.
func (s *ProjectService) computeProgress(ctx context.Context, p *model.Project) int {
	if len(p.TodoIDs) == 0 {
		return 0
	}
	statuses := make(map[string]string)
	for _, t := range s.todos.GetAll(ctx) {
		statuses[t.ID] = t.Status
	}
	completed := 0
	for _, id := range p.TodoIDs {
		if statuses[id] == model.TodoStatusCompleted {
			completed++
		}
	}
	return int(math.Round(100 * float64(completed) / float64(len(p.TodoIDs))))
}

// AddMilestone appends a milestone to the project's embedded list.
func (s *ProjectService) AddMilestone(ctx context.Context, projectID string, m model.Milestone) (model.Project, error) {
	m.Title = strings.TrimSpace(m.Title)
	if m.Title == "" {
		return model.Project{}, validationf("milestone", "milestone title is required")
	}
	m.ID = uuid.New().String()
	m.CreatedAt = time.Now().UTC()
	m.Completed = false
	m.CompletedAt = nil
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		p.Milestones = append(p.Milestones, m)
		return nil
	})
}

// ToggleMilestone flips a milestone's completed flag.
func (s *ProjectService) ToggleMilestone(ctx context.Context, projectID, milestoneID string) (model.Project, error) {
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		for i := range p.Milestones {
			if p.Milestones[i].ID != milestoneID {
				continue
			}
			p.Milestones[i].Completed = !p.Milestones[i].Completed
			if p.Milestones[i].Completed {
				now := time.Now().UTC()
				p.Milestones[i].CompletedAt = &now
			} else {
				p.Milestones[i].CompletedAt = nil
			}
			return nil
		}
		return notFound("milestone", milestoneID)
	})
}

// DeleteMilestone removes a milestone from the project's embedded
// list.
func (s *ProjectService) DeleteMilestone(ctx context.Context, projectID, milestoneID string) (model.Project, error) {
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		for i := range p.Milestones {
			if p.Milestones[i].ID == milestoneID {
				p.Milestones = append(p.Milestones[:i], p.Milestones[i+1:]...)
				return nil
			}
		}
		return notFound("milestone", milestoneID)
	})
}

// AddResource appends a resource to the project's embedded list.
func (s *ProjectService) AddResource(ctx context.Context, projectID string, r model.Resource) (model.Project, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return model.Project{}, validationf("resource", "resource name is required")
	}
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now().UTC()
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		p.Resources = append(p.Resources, r)
		return nil
	})
}

// DeleteResource removes a resource from the project's embedded list.
func (s *ProjectService) DeleteResource(ctx context.Context, projectID, resourceID string) (model.Project, error) {
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		for i := range p.Resources {
			if p.Resources[i].ID == resourceID {
				p.Resources = append(p.Resources[:i], p.Resources[i+1:]...)
				return nil
			}
		}
		return notFound("resource", resourceID)
	})
}

// AddRisk appends a risk to the project's embedded register.
func (s *ProjectService) AddRisk(ctx context.Context, projectID string, r model.Risk) (model.Project, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return model.Project{}, validationf("risk", "risk title is required")
	}
	if r.Severity == "" {
		r.Severity = model.RiskSeverityMedium
	}
	now := time.Now().UTC()
	r.ID = uuid.New().String()
	r.CreatedAt = now
	r.UpdatedAt = now
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		p.Risks = append(p.Risks, r)
		return nil
	})
}

// UpdateRisk replaces the mutable fields of an existing risk.
func (s *ProjectService) UpdateRisk(ctx context.Context, projectID string, risk model.Risk) (model.Project, error) {
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		for i := range p.Risks {
			if p.Risks[i].ID != risk.ID {
				continue
			}
			if title := strings.TrimSpace(risk.Title); title != "" {
				p.Risks[i].Title = title
			}
			if risk.Description != "" {
				p.Risks[i].Description = risk.Description
			}
			if risk.Severity != "" {
				p.Risks[i].Severity = risk.Severity
			}
			p.Risks[i].Mitigated = risk.Mitigated
			p.Risks[i].UpdatedAt = time.Now().UTC()
			return nil
		}
		return notFound("risk", risk.ID)
	})
}

// DeleteRisk removes a risk from the project's embedded register.
func (s *ProjectService) DeleteRisk(ctx context.Context, projectID, riskID string) (model.Project, error) {
	return s.mutateProject(ctx, projectID, func(p *model.Project) error {
		for i := range p.Risks {
			if p.Risks[i].ID == riskID {
				p.Risks = append(p.Risks[:i], p.Risks[i+1:]...)
				return nil
			}
		}
		return notFound("risk", riskID)
	})
}

// mutateProject runs fn against the addressed project inside a single
// read-modify-write cycle, recomputes progress, and persists the whole
// collection.
func (s *ProjectService) mutateProject(ctx context.Context, id string, fn func(*model.Project) error) (model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := readCollection[model.Project](ctx, s.gw, entityProjects)
	idx := indexOfProject(projects, id)
	if idx < 0 {
		return model.Project{}, notFound("project", id)
	}

	project := projects[idx]
	if err := fn(&project); err != nil {
		return model.Project{}, err
	}

	project.UpdatedAt = time.Now().UTC()
	project.Progress = s.computeProgress(ctx, &project)

	projects[idx] = project
	if err := writeCollection(ctx, s.gw, entityProjects, projects); err != nil {
		return model.Project{}, err
	}
	return project, nil
}

func indexOfProject(projects []model.Project, id string) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
