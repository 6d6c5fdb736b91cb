package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/audit"
	"taskdeck/internal/identity"
	"taskdeck/internal/policy"
)

const entityType = "Task"

// Service applies ownership policy to task operations and records an
// activity entry for every mutation before reporting success.
type Service struct {
	store           Store
	audit           audit.Recorder
	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// NewService constructs the task service. Page size bounds come from the
// pagination configuration.
func NewService(store Store, recorder audit.Recorder, defaultPageSize, maxPageSize int) (*Service, error) {
	if store == nil {
		return nil, errors.New("task: store is required")
	}
	if recorder == nil {
		return nil, errors.New("task: audit recorder is required")
	}
	if defaultPageSize <= 0 || maxPageSize < defaultPageSize {
		return nil, fmt.Errorf("task: invalid page size bounds %d/%d", defaultPageSize, maxPageSize)
	}
	return &Service{
		store:           store,
		audit:           recorder,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		now:             time.Now,
	}, nil
}

// CreateInput is the payload accepted at task creation.
type CreateInput struct {
	Title        string
	Description  string
	Priority     Priority
	Category     string
	Tags         string
	DueDate      *time.Time
	ReminderDate *time.Time
}

// Create stores a new task owned by the actor.
func (s *Service) Create(ctx context.Context, actor *identity.User, in CreateInput, meta audit.RequestMeta) (*Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !ValidPriority(in.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, in.Priority)
	}

	t := &Task{
		Title:        title,
		Description:  in.Description,
		Priority:     in.Priority,
		Status:       StatusTodo,
		Category:     in.Category,
		Tags:         in.Tags,
		DueDate:      in.DueDate,
		ReminderDate: in.ReminderDate,
		OwnerID:      actor.ID,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}

	if err := s.audit.RecordActivity(ctx, &audit.Activity{
		Action:      audit.ActionCreate,
		EntityType:  entityType,
		EntityID:    t.ID,
		Description: fmt.Sprintf("Created task: %s", t.Title),
		UserID:      &actor.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// Get loads one task, visible to its owner or an admin.
func (s *Service) Get(ctx context.Context, actor *identity.User, id string) (*Task, error) {
	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnership(actor, t.OwnerID); err != nil {
		return nil, err
	}
	return t, nil
}

// Page is one page of a task listing.
type Page struct {
	Items      []Task `json:"items"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// List returns the actor's tasks, filtered and paginated. Admins see every
// owner's tasks.
func (s *Service) List(ctx context.Context, actor *identity.User, f Filter) (Page, error) {
	if actor.Role != identity.RoleAdmin {
		f.OwnerID = actor.ID
	}
	if f.Status != "" && !ValidStatus(f.Status) {
		return Page{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	if f.Priority != "" && !ValidPriority(f.Priority) {
		return Page{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, f.Priority)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = s.defaultPageSize
	}
	if f.PageSize > s.maxPageSize {
		f.PageSize = s.maxPageSize
	}

	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []Task{}
	}
	totalPages := 1
	if total > 0 {
		totalPages = (total + f.PageSize - 1) / f.PageSize
	}
	return Page{Items: items, Total: total, Page: f.Page, PageSize: f.PageSize, TotalPages: totalPages}, nil
}

// UpdateInput is a partial task update; nil fields are left unchanged.
type UpdateInput struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Status       *Status
	Category     *string
	Tags         *string
	DueDate      *time.Time
	ReminderDate *time.Time
}

// Update applies a partial update. When the update sets status to completed
// the completion timestamp is stamped once; setting any other status clears
// it.
func (s *Service) Update(ctx context.Context, actor *identity.User, id string, in UpdateInput, meta audit.RequestMeta) (*Task, error) {
	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnership(actor, t.OwnerID); err != nil {
		return nil, err
	}

	before := snapshot(t)

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		t.Title = title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Priority != nil {
		if !ValidPriority(*in.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *in.Priority)
		}
		t.Priority = *in.Priority
	}
	if in.Status != nil {
		if !ValidStatus(*in.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *in.Status)
		}
		t.Status = *in.Status
		switch {
		case t.Status == StatusCompleted && t.CompletedAt == nil:
			now := s.now().UTC()
			t.CompletedAt = &now
		case t.Status != StatusCompleted:
			t.CompletedAt = nil
		}
	}
	if in.Category != nil {
		t.Category = *in.Category
	}
	if in.Tags != nil {
		t.Tags = *in.Tags
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.ReminderDate != nil {
		t.ReminderDate = in.ReminderDate
	}

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	if err := s.audit.RecordActivity(ctx, &audit.Activity{
		Action:      audit.ActionUpdate,
		EntityType:  entityType,
		EntityID:    t.ID,
		Description: fmt.Sprintf("Updated task: %s", t.Title),
		Changes:     &audit.Changes{Before: before, After: snapshot(t)},
		UserID:      &actor.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus changes only the status. Completion stamps completed_at;
// every other status clears it.
func (s *Service) UpdateStatus(ctx context.Context, actor *identity.User, id string, status Status, meta audit.RequestMeta) (*Task, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnership(actor, t.OwnerID); err != nil {
		return nil, err
	}

	oldStatus := t.Status
	t.Status = status
	if status == StatusCompleted {
		now := s.now().UTC()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}

	if err := s.store.Update(ctx, t); err != nil {
		return nil, err
	}

	if err := s.audit.RecordActivity(ctx, &audit.Activity{
		Action:      audit.ActionUpdateStatus,
		EntityType:  entityType,
		EntityID:    t.ID,
		Description: fmt.Sprintf("Changed task status from %s to %s", oldStatus, status),
		Changes: &audit.Changes{
			Before: map[string]any{"status": string(oldStatus)},
			After:  map[string]any{"status": string(status)},
		},
		UserID:    &actor.ID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a task owned by the actor (or any task, for an admin).
func (s *Service) Delete(ctx context.Context, actor *identity.User, id string, meta audit.RequestMeta) error {
	t, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.RequireOwnership(actor, t.OwnerID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	return s.audit.RecordActivity(ctx, &audit.Activity{
		Action:      audit.ActionDelete,
		EntityType:  entityType,
		EntityID:    id,
		Description: fmt.Sprintf("Deleted task: %s", t.Title),
		UserID:      &actor.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	})
}

// TaskStats aggregates counts for the admin dashboard.
func (s *Service) TaskStats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx, s.now().UTC())
}

func snapshot(t *Task) map[string]any {
	return map[string]any{
		"title":    t.Title,
		"status":   string(t.Status),
		"priority": string(t.Priority),
	}
}
