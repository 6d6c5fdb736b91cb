// Package task implements the task resource: CRUD over owned tasks with
// filtered pagination, ownership checks, and activity logging.
package task

import (
	"errors"
	"time"
)

// Priority levels, lowest to highest.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Status states.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

var (
	ErrNotFound     = errors.New("task not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Task is a single task owned by exactly one user. Tags is a comma-separated
// string, kept as stored rather than normalized.
type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Priority     Priority   `json:"priority"`
	Status       Status     `json:"status"`
	Category     string     `json:"category,omitempty"`
	Tags         string     `json:"tags,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ReminderDate *time.Time `json:"reminder_date,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	OwnerID      string     `json:"owner_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Filter narrows a task listing. OwnerID empty means all owners (admin view).
// Search matches title, description, or tags, case-insensitively.
type Filter struct {
	OwnerID  string
	Status   Status
	Priority Priority
	Category string
	Search   string
	Page     int
	PageSize int
}

// Stats aggregates task counts for the admin dashboard.
type Stats struct {
	TotalTasks      int            `json:"total_tasks"`
	TodoTasks       int            `json:"todo_tasks"`
	InProgressTasks int            `json:"in_progress_tasks"`
	ReviewTasks     int            `json:"review_tasks"`
	CompletedTasks  int            `json:"completed_tasks"`
	OverdueTasks    int            `json:"overdue_tasks"`
	ByPriority      map[string]int `json:"by_priority"`
	ByCategory      map[string]int `json:"by_category"`
}
