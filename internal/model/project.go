package model

import "time"

// Project status values.
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on-hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// ValidProjectStatus reports whether s is one of the five project statuses.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return false
}

// Risk severity values.
const (
	RiskSeverityLow    = "low"
	RiskSeverityMedium = "medium"
	RiskSeverityHigh   = "high"
)

// Milestone is a project-owned sub-entity persisted as part of the
// parent project record.
type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Resource is a project-owned link or attachment reference.
type Resource struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Risk is a project-owned risk register entry.
type Risk struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Severity    string    `json:"severity"`
	Mitigated   bool      `json:"mitigated"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Project is a grouping container for related todos. TodoIDs is a
// non-owning reference list; the todos themselves live in the todo
// collection and carry a projectId back-reference.
type Project struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Status      string      `json:"status"`
	TodoIDs     []string    `json:"todoIds"`
	Progress    int         `json:"progress"`
	Milestones  []Milestone `json:"milestones"`
	Resources   []Resource  `json:"resources,omitempty"`
	Risks       []Risk      `json:"risks,omitempty"`
	StartDate   *time.Time  `json:"startDate,omitempty"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// HasTodo reports whether id is already referenced by the project.
func (p *Project) HasTodo(id string) bool {
	for _, t := range p.TodoIDs {
		if t == id {
			return true
		}
	}
	return false
}
