package task

import (
	"context"
	"time"
)

// Store persists tasks. List returns the requested page newest-first along
// with the total match count before paging.
type Store interface {
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) ([]Task, int, error)
	Stats(ctx context.Context, now time.Time) (Stats, error)
}
