package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func recordActivities(t *testing.T, store *MemoryStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := store.RecordActivity(context.Background(), &Activity{
			Action:      ActionCreate,
			EntityType:  "Task",
			EntityID:    fmt.Sprintf("t%d", i),
			Description: fmt.Sprintf("entry %d", i),
		}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
}

func TestRecordValidation(t *testing.T) {
	store := NewMemoryStore()

	if err := store.RecordActivity(context.Background(), &Activity{EntityType: "Task"}); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("missing action: got %v", err)
	}
	if err := store.RecordSecurity(context.Background(), &SecurityEvent{EventType: EventLoginFailed, Severity: "NOISY"}); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("bad severity: got %v", err)
	}
}

func TestListActivitiesNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	recordActivities(t, store, 5)

	items, total, err := store.ListActivities(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(items) != 2 {
		t.Fatalf("total=%d items=%d", total, len(items))
	}
	if items[0].EntityID != "t4" || items[1].EntityID != "t3" {
		t.Fatalf("order: %+v", items)
	}

	items, _, err = store.ListActivities(context.Background(), 3, 2)
	if err != nil {
		t.Fatalf("last page: %v", err)
	}
	if len(items) != 1 || items[0].EntityID != "t0" {
		t.Fatalf("last page: %+v", items)
	}

	items, _, err = store.ListActivities(context.Background(), 9, 2)
	if err != nil || len(items) != 0 {
		t.Fatalf("beyond end: %v %v", items, err)
	}
}

func TestListSecurityEventsSeverityFilter(t *testing.T) {
	store := NewMemoryStore()
	for i, sev := range []string{SeverityInfo, SeverityWarning, SeverityWarning, SeverityCritical} {
		if err := store.RecordSecurity(context.Background(), &SecurityEvent{
			EventType:   EventLoginFailed,
			Severity:    sev,
			Description: fmt.Sprintf("event %d", i),
		}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	_, total, err := store.ListSecurityEvents(context.Background(), "", 1, 10)
	if err != nil || total != 4 {
		t.Fatalf("unfiltered total = %d (%v)", total, err)
	}
	items, total, err := store.ListSecurityEvents(context.Background(), SeverityWarning, 1, 10)
	if err != nil || total != 2 {
		t.Fatalf("warning total = %d (%v)", total, err)
	}
	for _, ev := range items {
		if ev.Severity != SeverityWarning {
			t.Fatalf("filter leaked: %+v", ev)
		}
	}
}

func TestRecentActivitiesAndAlerts(t *testing.T) {
	store := NewMemoryStore()
	recordActivities(t, store, 12)

	recent, err := store.RecentActivities(context.Background(), 10)
	if err != nil || len(recent) != 10 {
		t.Fatalf("recent = %d (%v)", len(recent), err)
	}
	if recent[0].EntityID != "t11" {
		t.Fatalf("recent order: %+v", recent[0])
	}

	old := time.Now().UTC().Add(-48 * time.Hour)
	for _, ev := range []SecurityEvent{
		{EventType: EventLoginFailed, Severity: SeverityWarning, CreatedAt: old},
		{EventType: EventLoginFailed, Severity: SeverityWarning},
		{EventType: EventLoginFailed, Severity: SeverityCritical},
		{EventType: EventLoginSuccess, Severity: SeverityInfo},
	} {
		ev := ev
		if err := store.RecordSecurity(context.Background(), &ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	n, err := store.CountAlertsSince(context.Background(), time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	// INFO never counts; the 48h-old warning is outside the window.
	if n != 2 {
		t.Fatalf("alerts = %d, want 2", n)
	}
}
