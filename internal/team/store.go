package team

import "context"

// Store persists teams and memberships.
type Store interface {
	CreateTeam(ctx context.Context, t *Team) error
	FindTeam(ctx context.Context, id string) (*Team, error)
	TeamsFor(ctx context.Context, userID string) ([]Team, error)

	AddMember(ctx context.Context, m *Member) error
	FindMember(ctx context.Context, teamID, userID string) (*Member, error)
	RemoveMember(ctx context.Context, teamID, userID string) error
	Members(ctx context.Context, teamID string) ([]Member, error)
	CountOwners(ctx context.Context, teamID string) (int, error)
}
