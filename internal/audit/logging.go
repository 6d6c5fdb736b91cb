package audit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

var _ Store = (*loggingStore)(nil)

// WithLogging wraps a Store so every successful append also emits a
// structured log line. The log is a convenience mirror; the store write is
// the durable record and its error is what propagates.
func WithLogging(next Store, logger *logrus.Logger) Store {
	return &loggingStore{next: next, logger: logger}
}

type loggingStore struct {
	next   Store
	logger *logrus.Logger
}

func (s *loggingStore) RecordActivity(ctx context.Context, entry *Activity) error {
	if err := s.next.RecordActivity(ctx, entry); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"audit":       "activity",
		"action":      entry.Action,
		"entity_type": entry.EntityType,
		"entity_id":   entry.EntityID,
		"user_id":     deref(entry.UserID),
	}).Info(entry.Description)
	return nil
}

func (s *loggingStore) RecordSecurity(ctx context.Context, event *SecurityEvent) error {
	if err := s.next.RecordSecurity(ctx, event); err != nil {
		return err
	}
	fields := logrus.Fields{
		"audit":      "security",
		"event_type": event.EventType,
		"severity":   event.Severity,
		"user_id":    deref(event.UserID),
		"ip":         event.IPAddress,
	}
	switch event.Severity {
	case SeverityWarning:
		s.logger.WithFields(fields).Warn(event.Description)
	case SeverityCritical:
		s.logger.WithFields(fields).Error(event.Description)
	default:
		s.logger.WithFields(fields).Info(event.Description)
	}
	return nil
}

func (s *loggingStore) ListActivities(ctx context.Context, page, pageSize int) ([]Activity, int, error) {
	return s.next.ListActivities(ctx, page, pageSize)
}

func (s *loggingStore) ListSecurityEvents(ctx context.Context, severity string, page, pageSize int) ([]SecurityEvent, int, error) {
	return s.next.ListSecurityEvents(ctx, severity, page, pageSize)
}

func (s *loggingStore) RecentActivities(ctx context.Context, n int) ([]Activity, error) {
	return s.next.RecentActivities(ctx, n)
}

func (s *loggingStore) CountAlertsSince(ctx context.Context, since time.Time) (int, error) {
	return s.next.CountAlertsSince(ctx, since)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
