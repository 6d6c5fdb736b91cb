package task

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/ids"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store used when no database is configured and
// throughout the handler tests.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]Task)}
}

func (s *MemoryStore) Create(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = ids.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.tasks[t.ID] = *t
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tasks[id]; ok {
		copied := t
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Update(ctx context.Context, t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	s.tasks[t.ID] = *t
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, f Filter) ([]Task, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Task
	for _, t := range s.tasks {
		if matches(t, f) {
			matched = append(matched, t)
		}
	}
	// Newest first; ULIDs sort by creation time, so the id breaks ties the
	// same way the SQL ordering does.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	start := (f.Page - 1) * f.PageSize
	if start >= total {
		return []Task{}, total, nil
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matches(t Task, f Filter) bool {
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(t.Title + " " + t.Description + " " + t.Tags)
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) Stats(ctx context.Context, now time.Time) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{ByPriority: map[string]int{}, ByCategory: map[string]int{}}
	for _, t := range s.tasks {
		st.TotalTasks++
		switch t.Status {
		case StatusTodo:
			st.TodoTasks++
		case StatusInProgress:
			st.InProgressTasks++
		case StatusReview:
			st.ReviewTasks++
		case StatusCompleted:
			st.CompletedTasks++
		}
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != StatusCompleted {
			st.OverdueTasks++
		}
		st.ByPriority[string(t.Priority)]++
		if t.Category != "" {
			st.ByCategory[t.Category]++
		}
	}
	return st, nil
}
