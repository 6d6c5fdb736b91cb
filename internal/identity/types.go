// Package identity holds the credential store: user accounts, their roles
// and flags, and the registration/login/credential lifecycle around them.
package identity

import "time"

// Role is the site-wide role of an account. The hierarchy for authorization
// purposes is admin > auditor > user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleAuditor Role = "auditor"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleUser, RoleAuditor:
		return true
	}
	return false
}

// Theme preferences.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// User is one account. Accounts are never physically deleted; deactivation
// flips IsActive instead.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	FullName        string     `json:"full_name,omitempty"`
	PasswordHash    string     `json:"-"`
	Role            Role       `json:"role"`
	IsActive        bool       `json:"is_active"`
	IsVerified      bool       `json:"is_verified"`
	ThemePreference string     `json:"theme_preference"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at,omitempty"`
	LastLogin       *time.Time `json:"last_login"`
}

// Stats is the user slice of the admin dashboard.
type Stats struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	InactiveUsers int `json:"inactive_users"`
	AdminUsers    int `json:"admin_users"`
	RegularUsers  int `json:"regular_users"`
}
