package ports

import (
	"context"

	"github.com/taskhub/task-manager/internal/core/domain"
)

// ListTasksFilter carries all query parameters for listing tasks.
// OwnerID is always set by the service layer (owner scoping).
type ListTasksFilter struct {
	OwnerID   string
	Completed *bool  // nil = no completion filter
	SortField string // task attribute to order by; empty = store-default order
	SortDesc  bool
	Limit     int64 // negative = unbounded
	Skip      int64 // negative = none
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	// Create inserts a new task and returns it with its generated ID.
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	// FindByID retrieves a task without owner scoping. Only the public
	// image endpoint may use it.
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// FindByOwner retrieves a task matching both id and owner.
	// Returns domain.ErrTaskNotFound on any mismatch.
	FindByOwner(ctx context.Context, id, ownerID string) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, error)
	// Update replaces the stored document with t (matched by ID and owner)
	// and bumps updated_at.
	Update(ctx context.Context, t *domain.Task) (*domain.Task, error)
	// Delete removes the task matching id and owner, returning the deleted
	// record, or domain.ErrTaskNotFound.
	Delete(ctx context.Context, id, ownerID string) (*domain.Task, error)
	// DeleteByOwner removes every task owned by ownerID and returns the ids
	// of the deleted tasks so callers can drop derived state, such as cached
	// task images. Used by the account-deletion cascade.
	DeleteByOwner(ctx context.Context, ownerID string) ([]string, error)
}
