package team

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"taskdeck/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL. The membership table carries a
// composite primary key (team_id, user_id); duplicate inserts surface as
// ErrAlreadyMember.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) CreateTeam(ctx context.Context, t *Team) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`insert into teams(id, name, description, created_at, updated_at) values($1,$2,$3,$4,$5)`,
		t.ID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (s *PGStore) FindTeam(ctx context.Context, id string) (*Team, error) {
	var t Team
	err := s.db.QueryRowContext(ctx,
		`select id, name, description, created_at, updated_at from teams where id=$1`, id,
	).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PGStore) TeamsFor(ctx context.Context, userID string) ([]Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`select t.id, t.name, t.description, t.created_at, t.updated_at
		 from teams t join team_members m on m.team_id = t.id
		 where m.user_id=$1 order by t.created_at asc`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *PGStore) AddMember(ctx context.Context, m *Member) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`insert into team_members(team_id, user_id, role, joined_at) values($1,$2,$3,$4)`,
		m.TeamID, m.UserID, m.Role, m.JoinedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyMember
	}
	return err
}

func (s *PGStore) FindMember(ctx context.Context, teamID, userID string) (*Member, error) {
	var m Member
	err := s.db.QueryRowContext(ctx,
		`select team_id, user_id, role, joined_at from team_members where team_id=$1 and user_id=$2`,
		teamID, userID,
	).Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *PGStore) RemoveMember(ctx context.Context, teamID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`delete from team_members where team_id=$1 and user_id=$2`, teamID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *PGStore) Members(ctx context.Context, teamID string) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`select team_id, user_id, role, joined_at from team_members where team_id=$1 order by joined_at asc`,
		teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *PGStore) CountOwners(ctx context.Context, teamID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from team_members where team_id=$1 and role=$2`,
		teamID, RoleOwner,
	).Scan(&n)
	return n, err
}
