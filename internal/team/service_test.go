package team

import (
	"context"
	"errors"
	"testing"

	"taskdeck/internal/audit"
	"taskdeck/internal/identity"
	"taskdeck/internal/policy"
)

type fixture struct {
	svc   *Service
	store *MemoryStore
	users *identity.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := NewMemoryStore()
	users := identity.NewMemoryStore()
	svc, err := NewService(store, users, audit.NewMemoryStore())
	if err != nil {
		t.Fatalf("team service: %v", err)
	}
	return &fixture{svc: svc, store: store, users: users}
}

func (f *fixture) addUser(t *testing.T, email, username string) *identity.User {
	t.Helper()
	u := &identity.User{Email: email, Username: username, Role: identity.RoleUser, IsActive: true}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (f *fixture) createTeam(t *testing.T, actor *identity.User, name string) *Team {
	t.Helper()
	team, err := f.svc.Create(context.Background(), actor, name, "", audit.RequestMeta{})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	return team
}

func TestCreateTeamMakesActorOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice@example.com", "alice")
	team := f.createTeam(t, alice, "platform")

	m, err := f.store.FindMember(context.Background(), team.ID, alice.ID)
	if err != nil {
		t.Fatalf("creator membership: %v", err)
	}
	if m.Role != RoleOwner {
		t.Fatalf("creator role = %s", m.Role)
	}
}

func TestGetRequiresMembershipOrSiteAdmin(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice@example.com", "alice")
	bob := f.addUser(t, "bob@example.com", "bob")
	team := f.createTeam(t, alice, "platform")

	if _, _, err := f.svc.Get(context.Background(), bob, team.ID); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("non-member get: got %v", err)
	}

	siteAdmin := &identity.User{ID: "root", Role: identity.RoleAdmin}
	if _, members, err := f.svc.Get(context.Background(), siteAdmin, team.ID); err != nil || len(members) != 1 {
		t.Fatalf("site admin get: %v (%d members)", err, len(members))
	}

	if _, _, err := f.svc.Get(context.Background(), alice, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing team: got %v", err)
	}
}

func TestAddMember(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice@example.com", "alice")
	bob := f.addUser(t, "bob@example.com", "bob")
	carol := f.addUser(t, "carol@example.com", "carol")
	team := f.createTeam(t, alice, "platform")

	// Non-member cannot add.
	if _, err := f.svc.AddMember(context.Background(), bob, team.ID, carol.Email, RoleMember, audit.RequestMeta{}); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("non-member add: got %v", err)
	}

	m, err := f.svc.AddMember(context.Background(), alice, team.ID, "BOB@example.com", "", audit.RequestMeta{})
	if err != nil {
		t.Fatalf("owner add: %v", err)
	}
	if m.Role != RoleMember {
		t.Fatalf("default role = %s", m.Role)
	}

	// Plain members cannot add either.
	if _, err := f.svc.AddMember(context.Background(), bob, team.ID, carol.Email, RoleMember, audit.RequestMeta{}); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("member add: got %v", err)
	}

	if _, err := f.svc.AddMember(context.Background(), alice, team.ID, bob.Email, RoleMember, audit.RequestMeta{}); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("duplicate add: got %v", err)
	}
	if _, err := f.svc.AddMember(context.Background(), alice, team.ID, "ghost@example.com", RoleMember, audit.RequestMeta{}); !errors.Is(err, identity.ErrNotFound) {
		t.Fatalf("unknown email: got %v", err)
	}
	if _, err := f.svc.AddMember(context.Background(), alice, team.ID, carol.Email, Role("lead"), audit.RequestMeta{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad role: got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice@example.com", "alice")
	bob := f.addUser(t, "bob@example.com", "bob")
	carol := f.addUser(t, "carol@example.com", "carol")
	team := f.createTeam(t, alice, "platform")

	if _, err := f.svc.AddMember(context.Background(), alice, team.ID, bob.Email, RoleMember, audit.RequestMeta{}); err != nil {
		t.Fatalf("add bob: %v", err)
	}
	if _, err := f.svc.AddMember(context.Background(), alice, team.ID, carol.Email, RoleMember, audit.RequestMeta{}); err != nil {
		t.Fatalf("add carol: %v", err)
	}

	// A plain member cannot remove someone else.
	if err := f.svc.RemoveMember(context.Background(), bob, team.ID, carol.ID, audit.RequestMeta{}); !errors.Is(err, policy.ErrForbidden) {
		t.Fatalf("member removing other: got %v", err)
	}

	// Anyone may remove themselves.
	if err := f.svc.RemoveMember(context.Background(), carol, team.ID, carol.ID, audit.RequestMeta{}); err != nil {
		t.Fatalf("self removal: %v", err)
	}

	// An owner can remove members.
	if err := f.svc.RemoveMember(context.Background(), alice, team.ID, bob.ID, audit.RequestMeta{}); err != nil {
		t.Fatalf("owner removal: %v", err)
	}

	if err := f.svc.RemoveMember(context.Background(), alice, team.ID, bob.ID, audit.RequestMeta{}); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("removing non-member: got %v", err)
	}
}

func TestLastOwnerCannotBeRemoved(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice@example.com", "alice")
	bob := f.addUser(t, "bob@example.com", "bob")
	team := f.createTeam(t, alice, "platform")

	if _, err := f.svc.AddMember(context.Background(), alice, team.ID, bob.Email, RoleAdmin, audit.RequestMeta{}); err != nil {
		t.Fatalf("add bob: %v", err)
	}

	// Even a team admin cannot remove the only owner; self-removal of the
	// last owner is also rejected.
	if err := f.svc.RemoveMember(context.Background(), bob, team.ID, alice.ID, audit.RequestMeta{}); !errors.Is(err, ErrLastOwner) {
		t.Fatalf("admin removing last owner: got %v", err)
	}
	if err := f.svc.RemoveMember(context.Background(), alice, team.ID, alice.ID, audit.RequestMeta{}); !errors.Is(err, ErrLastOwner) {
		t.Fatalf("last owner leaving: got %v", err)
	}

	// With a second owner present, the first may leave.
	if err := f.svc.RemoveMember(context.Background(), alice, team.ID, bob.ID, audit.RequestMeta{}); err != nil {
		t.Fatalf("remove admin: %v", err)
	}
	if _, err := f.svc.AddMember(context.Background(), alice, team.ID, bob.Email, RoleOwner, audit.RequestMeta{}); err != nil {
		t.Fatalf("re-add as owner: %v", err)
	}
	if err := f.svc.RemoveMember(context.Background(), alice, team.ID, alice.ID, audit.RequestMeta{}); err != nil {
		t.Fatalf("owner leaving with co-owner: %v", err)
	}
}
