package audit

import (
	"context"
	"sync"
	"time"

	"taskdeck/internal/ids"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store used when no database is configured and
// throughout the handler tests.
type MemoryStore struct {
	mu         sync.RWMutex
	activities []Activity
	events     []SecurityEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) RecordActivity(ctx context.Context, entry *Activity) error {
	if err := validateActivity(entry); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.activities = append(s.activities, *entry)
	return nil
}

func (s *MemoryStore) RecordSecurity(ctx context.Context, event *SecurityEvent) error {
	if err := validateSecurityEvent(event); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == "" {
		event.ID = ids.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	s.events = append(s.events, *event)
	return nil
}

func (s *MemoryStore) ListActivities(ctx context.Context, page, pageSize int) ([]Activity, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.activities)
	start, end := pageBounds(total, page, pageSize)
	items := make([]Activity, 0, end-start)
	// Stored oldest-first; serve newest-first.
	for i := total - 1 - start; i >= total-end; i-- {
		items = append(items, s.activities[i])
	}
	return items, total, nil
}

func (s *MemoryStore) ListSecurityEvents(ctx context.Context, severity string, page, pageSize int) ([]SecurityEvent, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []SecurityEvent
	for _, ev := range s.events {
		if severity == "" || ev.Severity == severity {
			filtered = append(filtered, ev)
		}
	}
	total := len(filtered)
	start, end := pageBounds(total, page, pageSize)
	items := make([]SecurityEvent, 0, end-start)
	for i := total - 1 - start; i >= total-end; i-- {
		items = append(items, filtered[i])
	}
	return items, total, nil
}

func (s *MemoryStore) RecentActivities(ctx context.Context, n int) ([]Activity, error) {
	items, _, err := s.ListActivities(ctx, 1, n)
	return items, err
}

func (s *MemoryStore) CountAlertsSince(ctx context.Context, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, ev := range s.events {
		if ev.Severity == SeverityInfo {
			continue
		}
		if !ev.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// SecurityEvents returns a copy of every recorded security event, for tests.
func (s *MemoryStore) SecurityEvents() []SecurityEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SecurityEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Activities returns a copy of every recorded activity entry, for tests.
func (s *MemoryStore) Activities() []Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Activity, len(s.activities))
	copy(out, s.activities)
	return out
}

func pageBounds(total, page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
