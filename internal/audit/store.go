package audit

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidEntry indicates a structurally incomplete entry was submitted.
var ErrInvalidEntry = errors.New("audit: invalid entry")

// Recorder appends entries. Implementations must make the entry durable
// before returning; callers treat a non-nil error as a request failure.
type Recorder interface {
	RecordActivity(ctx context.Context, entry *Activity) error
	RecordSecurity(ctx context.Context, event *SecurityEvent) error
}

// Store is the full audit surface: append plus the queries consumed by the
// admin dashboard. Both listings are reverse-chronological.
type Store interface {
	Recorder

	ListActivities(ctx context.Context, page, pageSize int) ([]Activity, int, error)
	// ListSecurityEvents filters by severity when severity is non-empty.
	ListSecurityEvents(ctx context.Context, severity string, page, pageSize int) ([]SecurityEvent, int, error)
	// RecentActivities returns the most recent n entries.
	RecentActivities(ctx context.Context, n int) ([]Activity, error)
	// CountAlertsSince counts WARNING and CRITICAL security events recorded
	// at or after the given instant.
	CountAlertsSince(ctx context.Context, since time.Time) (int, error)
}

func validateActivity(entry *Activity) error {
	if entry == nil || entry.Action == "" || entry.EntityType == "" {
		return ErrInvalidEntry
	}
	return nil
}

func validateSecurityEvent(event *SecurityEvent) error {
	if event == nil || event.EventType == "" {
		return ErrInvalidEntry
	}
	switch event.Severity {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return nil
	default:
		return ErrInvalidEntry
	}
}
