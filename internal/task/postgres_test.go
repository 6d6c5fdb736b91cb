package task

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestBuildFilter(t *testing.T) {
	where, args := buildFilter(Filter{})
	if where != "" || args != nil {
		t.Fatalf("empty filter: %q %v", where, args)
	}

	where, args = buildFilter(Filter{OwnerID: "u1", Status: StatusTodo, Search: "rep"})
	want := ` where owner_id=$1 and status=$2 and (title ilike $3 or description ilike $3 or tags ilike $3)`
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
	if len(args) != 3 || args[2] != "%rep%" {
		t.Fatalf("args = %v", args)
	}
}

func TestPGListCountsBeforePaging(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	store := NewPGStore(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`select count\(\*\) from tasks where owner_id=\$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`select .+ from tasks where owner_id=\$1 order by created_at desc`).
		WithArgs("u1", 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "priority", "status", "category", "tags",
			"due_date", "reminder_date", "completed_at", "owner_id", "created_at", "updated_at",
		}).
			AddRow("t2", "beta", "", "medium", "todo", "", "", nil, nil, nil, "u1", now, now).
			AddRow("t1", "alpha", "", "medium", "todo", "", "", nil, nil, nil, "u1", now, now))

	items, total, err := store.List(context.Background(), Filter{OwnerID: "u1", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(items) != 2 || items[0].ID != "t2" {
		t.Fatalf("items=%v total=%d", items, total)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPGDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	store := NewPGStore(db)

	mock.ExpectExec(`delete from tasks where id=\$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v", err)
	}
}
