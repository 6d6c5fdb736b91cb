package identity

import (
	"context"
	"database/sql"
	"time"

	"taskdeck/internal/ids"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const userColumns = `id, email, username, full_name, password_hash, role, is_active, is_verified, theme_preference, created_at, updated_at, last_login`

func (s *PGStore) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, email, username, full_name, password_hash, role, is_active, is_verified, theme_preference, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		u.ID, u.Email, u.Username, u.FullName, u.PasswordHash, u.Role,
		u.IsActive, u.IsVerified, u.ThemePreference, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (s *PGStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.findBy(ctx, `id=$1`, id)
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.findBy(ctx, `email=$1`, email)
}

func (s *PGStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.findBy(ctx, `username=$1`, username)
}

func (s *PGStore) findBy(ctx context.Context, where string, arg any) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+userColumns+` from users where `+where, arg)
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.IsVerified, &u.ThemePreference,
		&u.CreatedAt, &u.UpdatedAt, &u.LastLogin); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PGStore) Update(ctx context.Context, u *User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`update users set email=$2, username=$3, full_name=$4, role=$5, is_active=$6, is_verified=$7, theme_preference=$8, updated_at=$9
		 where id=$1`,
		u.ID, u.Email, u.Username, u.FullName, u.Role, u.IsActive, u.IsVerified,
		u.ThemePreference, u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`update users set password_hash=$2, updated_at=$3 where id=$1`,
		id, passwordHash, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`update users set last_login=$2 where id=$1`, id, at)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) List(ctx context.Context, offset, limit int) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+userColumns+` from users order by created_at asc limit $1 offset $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.FullName, &u.PasswordHash,
			&u.Role, &u.IsActive, &u.IsVerified, &u.ThemePreference,
			&u.CreatedAt, &u.UpdatedAt, &u.LastLogin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PGStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`select count(*),
		        count(*) filter (where is_active),
		        count(*) filter (where role=$1),
		        count(*) filter (where role=$2)
		 from users`, RoleAdmin, RoleUser,
	).Scan(&st.TotalUsers, &st.ActiveUsers, &st.AdminUsers, &st.RegularUsers)
	if err != nil {
		return Stats{}, err
	}
	st.InactiveUsers = st.TotalUsers - st.ActiveUsers
	return st, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
