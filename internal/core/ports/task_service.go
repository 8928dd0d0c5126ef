package ports

import (
	"context"

	"github.com/taskhub/task-manager/internal/core/domain"
)

// CreateTaskInput carries the fields accepted on task creation.
type CreateTaskInput struct {
	Description string
	Completed   bool
}

// TaskUpdate is a partial task change; nil fields are left untouched.
// Only description and completed are mutable.
type TaskUpdate struct {
	Description *string
	Completed   *bool
}

// TaskService defines use-case operations on tasks, all owner-scoped except
// the public Image fetch.
type TaskService interface {
	Create(ctx context.Context, ownerID string, input CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, error)
	// Get returns the task matching both id and owner, or domain.ErrTaskNotFound.
	Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error)
	Update(ctx context.Context, ownerID, taskID string, update TaskUpdate) (*domain.Task, error)
	// Delete removes the owner's task and returns the deleted record.
	Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error)

	// UpdateImage stores png, already normalized to 250x250 by the
	// transport layer, on the owner's task and returns the updated task.
	UpdateImage(ctx context.Context, ownerID, taskID string, png []byte) (*domain.Task, error)
	// Image returns the stored image PNG for any task id.
	// Returns domain.ErrNoImage when the task or the image is missing.
	Image(ctx context.Context, taskID string) ([]byte, error)
	DeleteImage(ctx context.Context, ownerID, taskID string) error
}
