// Package audit is the append-only record of security-relevant and general
// activity events. Entries are written synchronously before the triggering
// response is returned; a failed write fails the request. Entries are never
// updated or deleted.
package audit

import "time"

// Activity actions.
const (
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionUpdateStatus = "UPDATE_STATUS"
	ActionDelete       = "DELETE"
)

// Security event types.
const (
	EventUserRegistered    = "USER_REGISTERED"
	EventLoginSuccess      = "LOGIN_SUCCESS"
	EventLoginFailed       = "LOGIN_FAILED"
	EventPasswordChanged   = "PASSWORD_CHANGED"
	EventUserRoleChanged   = "USER_ROLE_CHANGED"
	EventUserStatusChanged = "USER_STATUS_CHANGED"
)

// Security event severities.
const (
	SeverityInfo     = "INFO"
	SeverityWarning  = "WARNING"
	SeverityCritical = "CRITICAL"
)

// Changes captures a before/after diff attached to an activity entry.
type Changes struct {
	Before map[string]any `json:"before,omitempty"`
	After  map[string]any `json:"after,omitempty"`
}

// Activity is one general activity entry (create/update/delete of a domain
// entity). UserID is a pointer because the acting identity may be unknown or
// since deleted.
type Activity struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	EntityType  string    `json:"entity_type"`
	EntityID    string    `json:"entity_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Changes     *Changes  `json:"changes,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	UserID      *string   `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// SecurityEvent is one security-relevant entry (registration, login attempts,
// credential and account changes).
type SecurityEvent struct {
	ID          string         `json:"id"`
	EventType   string         `json:"event_type"`
	Severity    string         `json:"severity"`
	Description string         `json:"description,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UserID      *string        `json:"user_id"`
	CreatedAt   time.Time      `json:"created_at"`
}

// RequestMeta carries the network provenance of the triggering request into
// the services that emit audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
