package team

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskdeck/internal/ids"
)

var _ Store = (*MemoryStore)(nil)

type memberKey struct{ teamID, userID string }

// MemoryStore is an in-memory Store used when no database is configured and
// throughout the handler tests.
type MemoryStore struct {
	mu      sync.RWMutex
	teams   map[string]Team
	members map[memberKey]Member
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		teams:   make(map[string]Team),
		members: make(map[memberKey]Member),
	}
}

func (s *MemoryStore) CreateTeam(ctx context.Context, t *Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = ids.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	s.teams[t.ID] = *t
	return nil
}

func (s *MemoryStore) FindTeam(ctx context.Context, id string) (*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.teams[id]; ok {
		copied := t
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) TeamsFor(ctx context.Context, userID string) ([]Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var teams []Team
	for key, m := range s.members {
		if m.UserID == userID {
			if t, ok := s.teams[key.teamID]; ok {
				teams = append(teams, t)
			}
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams, nil
}

func (s *MemoryStore) AddMember(ctx context.Context, m *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey{m.TeamID, m.UserID}
	if _, ok := s.members[key]; ok {
		return ErrAlreadyMember
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	s.members[key] = *m
	return nil
}

func (s *MemoryStore) FindMember(ctx context.Context, teamID, userID string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.members[memberKey{teamID, userID}]; ok {
		copied := m
		return &copied, nil
	}
	return nil, ErrMemberNotFound
}

func (s *MemoryStore) RemoveMember(ctx context.Context, teamID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memberKey{teamID, userID}
	if _, ok := s.members[key]; !ok {
		return ErrMemberNotFound
	}
	delete(s.members, key)
	return nil
}

func (s *MemoryStore) Members(ctx context.Context, teamID string) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var members []Member
	for key, m := range s.members {
		if key.teamID == teamID {
			members = append(members, m)
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (s *MemoryStore) CountOwners(ctx context.Context, teamID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for key, m := range s.members {
		if key.teamID == teamID && m.Role == RoleOwner {
			n++
		}
	}
	return n, nil
}
