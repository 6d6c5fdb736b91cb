package task

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
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

const taskColumns = `id, title, description, priority, status, category, tags, due_date, reminder_date, completed_at, owner_id, created_at, updated_at`

func (s *PGStore) Create(ctx context.Context, t *Task) error {
	if t.ID == "" {
		t.ID = ids.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`insert into tasks(id, title, description, priority, status, category, tags, due_date, reminder_date, completed_at, owner_id, created_at, updated_at)
		 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		t.ID, t.Title, t.Description, t.Priority, t.Status, t.Category, t.Tags,
		t.DueDate, t.ReminderDate, t.CompletedAt, t.OwnerID, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (s *PGStore) FindByID(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+taskColumns+` from tasks where id=$1`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *PGStore) Update(ctx context.Context, t *Task) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`update tasks set title=$2, description=$3, priority=$4, status=$5, category=$6, tags=$7, due_date=$8, reminder_date=$9, completed_at=$10, updated_at=$11
		 where id=$1`,
		t.ID, t.Title, t.Description, t.Priority, t.Status, t.Category, t.Tags,
		t.DueDate, t.ReminderDate, t.CompletedAt, t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from tasks where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]Task, int, error) {
	where, args := buildFilter(f)

	var total int
	if err := s.db.QueryRowContext(ctx,
		`select count(*) from tasks`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.PageSize
	offset := (f.Page - 1) * f.PageSize
	args = append(args, limit, offset)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`select %s from tasks%s order by created_at desc, id desc limit $%d offset $%d`,
			taskColumns, where, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, total, rows.Err()
}

func buildFilter(f Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.OwnerID != "" {
		add(`owner_id=$%d`, f.OwnerID)
	}
	if f.Status != "" {
		add(`status=$%d`, f.Status)
	}
	if f.Priority != "" {
		add(`priority=$%d`, f.Priority)
	}
	if f.Category != "" {
		add(`category=$%d`, f.Category)
	}
	if f.Search != "" {
		add(`(title ilike $%d or description ilike $%[1]d or tags ilike $%[1]d)`, "%"+f.Search+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " where " + strings.Join(conds, " and "), args
}

func (s *PGStore) Stats(ctx context.Context, now time.Time) (Stats, error) {
	st := Stats{ByPriority: map[string]int{}, ByCategory: map[string]int{}}
	err := s.db.QueryRowContext(ctx,
		`select count(*),
		        count(*) filter (where status=$1),
		        count(*) filter (where status=$2),
		        count(*) filter (where status=$3),
		        count(*) filter (where status=$4),
		        count(*) filter (where due_date < $5 and status <> $4)
		 from tasks`,
		StatusTodo, StatusInProgress, StatusReview, StatusCompleted, now,
	).Scan(&st.TotalTasks, &st.TodoTasks, &st.InProgressTasks, &st.ReviewTasks,
		&st.CompletedTasks, &st.OverdueTasks)
	if err != nil {
		return Stats{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`select priority, count(*) from tasks group by priority`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var p string
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return Stats{}, err
		}
		st.ByPriority[p] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	rows, err = s.db.QueryContext(ctx,
		`select category, count(*) from tasks where category <> '' group by category`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return Stats{}, err
		}
		st.ByCategory[c] = n
	}
	return st, rows.Err()
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.Category, &t.Tags, &t.DueDate, &t.ReminderDate, &t.CompletedAt,
		&t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}
