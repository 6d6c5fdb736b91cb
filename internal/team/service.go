package team

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskdeck/internal/audit"
	"taskdeck/internal/identity"
	"taskdeck/internal/policy"
)

const entityType = "Team"

// UserDirectory resolves users when adding members by email. Satisfied by
// identity.Store.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*identity.User, error)
}

// Service applies the team membership policy: owners and team admins manage
// members, anyone may leave, and the last owner can never be removed.
type Service struct {
	store Store
	users UserDirectory
	audit audit.Recorder
}

func NewService(store Store, users UserDirectory, recorder audit.Recorder) (*Service, error) {
	if store == nil {
		return nil, errors.New("team: store is required")
	}
	if users == nil {
		return nil, errors.New("team: user directory is required")
	}
	if recorder == nil {
		return nil, errors.New("team: audit recorder is required")
	}
	return &Service{store: store, users: users, audit: recorder}, nil
}

// Create stores a new team with the actor as its first owner.
func (s *Service) Create(ctx context.Context, actor *identity.User, name, description string, meta audit.RequestMeta) (*Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	t := &Team{Name: name, Description: description}
	if err := s.store.CreateTeam(ctx, t); err != nil {
		return nil, err
	}
	if err := s.store.AddMember(ctx, &Member{TeamID: t.ID, UserID: actor.ID, Role: RoleOwner}); err != nil {
		return nil, err
	}

	if err := s.audit.RecordActivity(ctx, &audit.Activity{
		Action:      audit.ActionCreate,
		EntityType:  entityType,
		EntityID:    t.ID,
		Description: fmt.Sprintf("Created team: %s", t.Name),
		UserID:      &actor.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}); err != nil {
		return nil, err
	}
	return t, nil
}

// ListMine returns the teams the actor belongs to.
func (s *Service) ListMine(ctx context.Context, actor *identity.User) ([]Team, error) {
	teams, err := s.store.TeamsFor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []Team{}
	}
	return teams, nil
}

// Get returns a team and its membership roster. Visible to team members and
// site admins.
func (s *Service) Get(ctx context.Context, actor *identity.User, id string) (*Team, []Member, error) {
	t, err := s.store.FindTeam(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.store.FindMember(ctx, id, actor.ID); err != nil {
		if !errors.Is(err, ErrMemberNotFound) {
			return nil, nil, err
		}
		if actor.Role != identity.RoleAdmin {
			return nil, nil, policy.ErrForbidden
		}
	}

	members, err := s.store.Members(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return t, members, nil
}

// AddMember adds a user to a team by email. Only a team owner or team admin
// may add members.
func (s *Service) AddMember(ctx context.Context, actor *identity.User, teamID, email string, role Role, meta audit.RequestMeta) (*Member, error) {
	if role == "" {
		role = RoleMember
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown team role %q", ErrInvalidInput, role)
	}
	if _, err := s.store.FindTeam(ctx, teamID); err != nil {
		return nil, err
	}
	if err := s.requireManager(ctx, actor, teamID); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with that email", identity.ErrNotFound)
		}
		return nil, err
	}

	m := &Member{TeamID: teamID, UserID: user.ID, Role: role}
	if err := s.store.AddMember(ctx, m); err != nil {
		return nil, err
	}

	if err := s.audit.RecordActivity(ctx, &audit.Activity{
		Action:      audit.ActionUpdate,
		EntityType:  entityType,
		EntityID:    teamID,
		Description: fmt.Sprintf("Added %s to team as %s", user.Username, role),
		UserID:      &actor.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// RemoveMember removes a membership. Owners and team admins may remove
// anyone; any member may remove themselves. Removing the team's only owner
// is always rejected.
func (s *Service) RemoveMember(ctx context.Context, actor *identity.User, teamID, userID string, meta audit.RequestMeta) error {
	if _, err := s.store.FindTeam(ctx, teamID); err != nil {
		return err
	}
	if actor.ID != userID {
		if err := s.requireManager(ctx, actor, teamID); err != nil {
			return err
		}
	}

	target, err := s.store.FindMember(ctx, teamID, userID)
	if err != nil {
		return err
	}
	if target.Role == RoleOwner {
		owners, err := s.store.CountOwners(ctx, teamID)
		if err != nil {
			return err
		}
		if owners == 1 {
			return ErrLastOwner
		}
	}

	if err := s.store.RemoveMember(ctx, teamID, userID); err != nil {
		return err
	}

	return s.audit.RecordActivity(ctx, &audit.Activity{
		Action:      audit.ActionUpdate,
		EntityType:  entityType,
		EntityID:    teamID,
		Description: "Removed member from team",
		UserID:      &actor.ID,
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	})
}

// requireManager passes when the actor holds an owner or admin membership
// in the team.
func (s *Service) requireManager(ctx context.Context, actor *identity.User, teamID string) error {
	m, err := s.store.FindMember(ctx, teamID, actor.ID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return policy.ErrForbidden
		}
		return err
	}
	if m.Role != RoleOwner && m.Role != RoleAdmin {
		return policy.ErrForbidden
	}
	return nil
}
