package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/audit"
	"taskdeck/internal/token"
)

// Service implements the credential lifecycle: registration, login, token
// refresh, and profile/credential changes. Every mutation lands an audit
// entry before the caller sees success.
type Service struct {
	store  Store
	tokens *token.Service
	audit  audit.Recorder
	now    func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the identity service.
func NewService(store Store, tokens *token.Service, recorder audit.Recorder, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("identity: store is required")
	}
	if tokens == nil {
		return nil, errors.New("identity: token service is required")
	}
	if recorder == nil {
		return nil, errors.New("identity: audit recorder is required")
	}
	s := &Service{store: store, tokens: tokens, audit: recorder, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterInput is the payload accepted at registration.
type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
}

// Register creates a new account with the default role and emits a
// USER_REGISTERED security event. Duplicate email and duplicate username are
// reported as distinct errors.
func (s *Service) Register(ctx context.Context, in RegisterInput, meta audit.RequestMeta) (*User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	username := strings.TrimSpace(in.Username)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if len(username) < 3 {
		return nil, fmt.Errorf("%w: username must be at least 3 characters", ErrInvalidInput)
	}
	if err := CheckPasswordStrength(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &User{
		Email:           email,
		Username:        username,
		FullName:        strings.TrimSpace(in.FullName),
		PasswordHash:    hash,
		Role:            RoleUser,
		IsActive:        true,
		ThemePreference: ThemeSystem,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.audit.RecordSecurity(ctx, &audit.SecurityEvent{
		EventType:   audit.EventUserRegistered,
		Severity:    audit.SeverityInfo,
		Description: fmt.Sprintf("New user registered: %s", user.Username),
		UserID:      &user.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by username and password. Unknown username and wrong
// password fail identically with ErrInvalidCredentials so the response does
// not leak which was wrong; both record a LOGIN_FAILED event, carrying the
// user id only when the username matched a real account.
func (s *Service) Login(ctx context.Context, username, password string, meta audit.RequestMeta) (token.Pair, *User, error) {
	user, err := s.store.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return token.Pair{}, nil, err
	}

	if user == nil || VerifyPassword(user.PasswordHash, password) != nil {
		event := &audit.SecurityEvent{
			EventType:   audit.EventLoginFailed,
			Severity:    audit.SeverityWarning,
			Description: fmt.Sprintf("Failed login attempt for username: %s", username),
			IPAddress:   meta.IPAddress,
			UserAgent:   meta.UserAgent,
		}
		if user != nil {
			event.UserID = &user.ID
		}
		if err := s.audit.RecordSecurity(ctx, event); err != nil {
			return token.Pair{}, nil, err
		}
		return token.Pair{}, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return token.Pair{}, nil, ErrAccountInactive
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return token.Pair{}, nil, err
	}

	now := s.now().UTC()
	if err := s.store.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return token.Pair{}, nil, err
	}
	user.LastLogin = &now

	if err := s.audit.RecordSecurity(ctx, &audit.SecurityEvent{
		EventType:   audit.EventLoginSuccess,
		Severity:    audit.SeverityInfo,
		Description: fmt.Sprintf("User logged in: %s", user.Username),
		UserID:      &user.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}); err != nil {
		return token.Pair{}, nil, err
	}
	return pair, user, nil
}

// Refresh validates a refresh token and rotates it into a fresh pair. The
// previous refresh token is not revoked server-side; it remains valid until
// its natural expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return token.Pair{}, err
	}
	if err := token.RequireType(claims, token.TypeRefresh); err != nil {
		return token.Pair{}, err
	}
	user, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return token.Pair{}, token.ErrInvalidToken
		}
		return token.Pair{}, err
	}
	if !user.IsActive {
		return token.Pair{}, ErrAccountInactive
	}
	return s.tokens.IssuePair(user.ID)
}

// GetByID loads a user by id.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.store.FindByID(ctx, id)
}

// ProfileUpdate is a partial self-service profile change.
type ProfileUpdate struct {
	Email           *string
	FullName        *string
	ThemePreference *string
}

// UpdateProfile applies a partial update to the caller's own profile. An
// email change is rejected when the address is already registered.
func (s *Service) UpdateProfile(ctx context.Context, user *User, upd ProfileUpdate) (*User, error) {
	if upd.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*upd.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
		}
		if email != user.Email {
			if _, err := s.store.FindByEmail(ctx, email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if upd.FullName != nil {
		user.FullName = strings.TrimSpace(*upd.FullName)
	}
	if upd.ThemePreference != nil {
		switch *upd.ThemePreference {
		case ThemeSystem, ThemeLight, ThemeDark:
			user.ThemePreference = *upd.ThemePreference
		default:
			return nil, fmt.Errorf("%w: unsupported theme preference %q", ErrInvalidInput, *upd.ThemePreference)
		}
	}
	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword requires the correct current password and applies the same
// strength policy as registration to the replacement.
func (s *Service) ChangePassword(ctx context.Context, user *User, current, next string, meta audit.RequestMeta) error {
	if VerifyPassword(user.PasswordHash, current) != nil {
		return ErrWrongPassword
	}
	if err := CheckPasswordStrength(next); err != nil {
		return err
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	user.PasswordHash = hash

	return s.audit.RecordSecurity(ctx, &audit.SecurityEvent{
		EventType:   audit.EventPasswordChanged,
		Severity:    audit.SeverityInfo,
		Description: fmt.Sprintf("Password changed for user: %s", user.Username),
		UserID:      &user.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	})
}

// ListUsers returns accounts ordered by creation time.
func (s *Service) ListUsers(ctx context.Context, offset, limit int) ([]User, error) {
	return s.store.List(ctx, offset, limit)
}

// SetRole changes a user's site-wide role (admin operation; the handler
// gates on role before calling).
func (s *Service) SetRole(ctx context.Context, actor *User, targetID string, role Role, meta audit.RequestMeta) (*User, error) {
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	target, err := s.store.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	previous := target.Role
	if previous == role {
		return target, nil
	}
	target.Role = role
	if err := s.store.Update(ctx, target); err != nil {
		return nil, err
	}

	if err := s.audit.RecordSecurity(ctx, &audit.SecurityEvent{
		EventType:   audit.EventUserRoleChanged,
		Severity:    audit.SeverityInfo,
		Description: fmt.Sprintf("Role of %s changed from %s to %s", target.Username, previous, role),
		Metadata:    map[string]any{"before": string(previous), "after": string(role)},
		UserID:      &actor.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}); err != nil {
		return nil, err
	}
	return target, nil
}

// SetStatus activates or deactivates an account. An admin deactivating
// their own account is rejected.
func (s *Service) SetStatus(ctx context.Context, actor *User, targetID string, active bool, meta audit.RequestMeta) (*User, error) {
	if targetID == actor.ID && !active {
		return nil, ErrSelfDeactivation
	}
	target, err := s.store.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsActive == active {
		return target, nil
	}
	target.IsActive = active
	if err := s.store.Update(ctx, target); err != nil {
		return nil, err
	}

	severity := audit.SeverityInfo
	if !active {
		severity = audit.SeverityWarning
	}
	if err := s.audit.RecordSecurity(ctx, &audit.SecurityEvent{
		EventType:   audit.EventUserStatusChanged,
		Severity:    severity,
		Description: fmt.Sprintf("User %s active=%t", target.Username, active),
		Metadata:    map[string]any{"is_active": active},
		UserID:      &actor.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}); err != nil {
		return nil, err
	}
	return target, nil
}

// UserStats aggregates account counts for the admin dashboard.
func (s *Service) UserStats(ctx context.Context) (Stats, error) {
	return s.store.Stats(ctx)
}
