package model

import (
	"math"
	"time"
)

// Todo status values.
const (
	TodoStatusPending    = "pending"
	TodoStatusInProgress = "in-progress"
	TodoStatusCompleted  = "completed"
)

// Priority values shared by todos and notifications.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidTodoStatus reports whether s is one of the three todo statuses.
func ValidTodoStatus(s string) bool {
	return s == TodoStatusPending || s == TodoStatusInProgress || s == TodoStatusCompleted
}

// ValidPriority reports whether p is one of the three priority levels.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Subtask is an embedded child record of a Todo. Its lifecycle is bound
// to the parent; it is persisted as part of the parent record.
type Subtask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Todo is a task item created and managed by the user.
type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	ProjectID   string     `json:"projectId,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Subtasks    []Subtask  `json:"subtasks,omitempty"`
	Images      []string   `json:"images,omitempty"`

	// Progress is derived from the subtask completion ratio when
	// subtasks exist, 0..100.
	Progress int `json:"progress,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// SubtaskProgress returns the percentage of completed subtasks,
// rounded to the nearest integer. A todo without subtasks reports 0.
func (t *Todo) SubtaskProgress() int {
	if len(t.Subtasks) == 0 {
		return 0
	}
	done := 0
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(t.Subtasks))))
}

// IsOverdue reports whether the todo has a due date in the past and is
// not yet completed.
func (t *Todo) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TodoStatusCompleted
}
