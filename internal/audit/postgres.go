package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"taskdeck/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) RecordActivity(ctx context.Context, entry *Activity) error {
	if err := validateActivity(entry); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = ids.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	var changes []byte
	if entry.Changes != nil {
		var err error
		changes, err = json.Marshal(entry.Changes)
		if err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx,
		`insert into activity_logs(id, action, entity_type, entity_id, description, changes, ip_address, user_agent, user_id, created_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		entry.ID, entry.Action, entry.EntityType, entry.EntityID, entry.Description,
		changes, entry.IPAddress, entry.UserAgent, entry.UserID, entry.CreatedAt,
	)
	return err
}

func (s *PGStore) RecordSecurity(ctx context.Context, event *SecurityEvent) error {
	if err := validateSecurityEvent(event); err != nil {
		return err
	}
	if event.ID == "" {
		event.ID = ids.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return err
		}
	}
	_, err := s.db.ExecContext(ctx,
		`insert into security_events(id, event_type, severity, description, ip_address, user_agent, metadata, user_id, created_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		event.ID, event.EventType, event.Severity, event.Description,
		event.IPAddress, event.UserAgent, metadata, event.UserID, event.CreatedAt,
	)
	return err
}

func (s *PGStore) ListActivities(ctx context.Context, page, pageSize int) ([]Activity, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `select count(*) from activity_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	rows, err := s.db.QueryContext(ctx,
		`select id, action, entity_type, entity_id, description, changes, ip_address, user_agent, user_id, created_at
		 from activity_logs order by created_at desc, id desc limit $1 offset $2`,
		pageSize, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Activity
	for rows.Next() {
		entry, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, entry)
	}
	return items, total, rows.Err()
}

func (s *PGStore) ListSecurityEvents(ctx context.Context, severity string, page, pageSize int) ([]SecurityEvent, int, error) {
	var (
		total int
		err   error
	)
	if severity != "" {
		err = s.db.QueryRowContext(ctx, `select count(*) from security_events where severity=$1`, severity).Scan(&total)
	} else {
		err = s.db.QueryRowContext(ctx, `select count(*) from security_events`).Scan(&total)
	}
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	var rows *sql.Rows
	if severity != "" {
		rows, err = s.db.QueryContext(ctx,
			`select id, event_type, severity, description, ip_address, user_agent, metadata, user_id, created_at
			 from security_events where severity=$1 order by created_at desc, id desc limit $2 offset $3`,
			severity, pageSize, offset,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`select id, event_type, severity, description, ip_address, user_agent, metadata, user_id, created_at
			 from security_events order by created_at desc, id desc limit $1 offset $2`,
			pageSize, offset,
		)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []SecurityEvent
	for rows.Next() {
		event, err := scanSecurityEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, event)
	}
	return items, total, rows.Err()
}

func (s *PGStore) RecentActivities(ctx context.Context, n int) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, action, entity_type, entity_id, description, changes, ip_address, user_agent, user_id, created_at
		 from activity_logs order by created_at desc, id desc limit $1`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Activity
	for rows.Next() {
		entry, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, entry)
	}
	return items, rows.Err()
}

func (s *PGStore) CountAlertsSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from security_events where severity in ($1,$2) and created_at >= $3`,
		SeverityWarning, SeverityCritical, since,
	).Scan(&count)
	return count, err
}

func scanActivity(rows *sql.Rows) (Activity, error) {
	var (
		entry   Activity
		changes []byte
	)
	if err := rows.Scan(&entry.ID, &entry.Action, &entry.EntityType, &entry.EntityID,
		&entry.Description, &changes, &entry.IPAddress, &entry.UserAgent,
		&entry.UserID, &entry.CreatedAt); err != nil {
		return Activity{}, err
	}
	if len(changes) > 0 {
		entry.Changes = &Changes{}
		if err := json.Unmarshal(changes, entry.Changes); err != nil {
			return Activity{}, err
		}
	}
	return entry, nil
}

func scanSecurityEvent(rows *sql.Rows) (SecurityEvent, error) {
	var (
		event    SecurityEvent
		metadata []byte
	)
	if err := rows.Scan(&event.ID, &event.EventType, &event.Severity, &event.Description,
		&event.IPAddress, &event.UserAgent, &metadata, &event.UserID, &event.CreatedAt); err != nil {
		return SecurityEvent{}, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
			return SecurityEvent{}, err
		}
	}
	return event, nil
}
