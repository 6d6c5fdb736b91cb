// Package team implements teams and memberships. A membership binds one
// user to one team with a team-scoped role; every team keeps at least one
// owner at all times.
package team

import (
	"errors"
	"time"
)

// Team-scoped membership roles, distinct from the site-wide identity roles.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

var (
	ErrNotFound       = errors.New("team not found")
	ErrMemberNotFound = errors.New("team member not found")
	ErrAlreadyMember  = errors.New("user already in team")
	ErrLastOwner      = errors.New("cannot remove the only owner")
	ErrInvalidInput   = errors.New("invalid input")
)

type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member is the association record binding a user to a team.
type Member struct {
	TeamID   string    `json:"team_id"`
	UserID   string    `json:"user_id"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
