package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-manager/internal/core/domain"
	"github.com/taskhub/task-manager/internal/core/ports"
)

// TaskService implements task use-cases. Every operation except the public
// Image fetch is scoped to the owning user.
type TaskService struct {
	tasks  ports.TaskRepository
	cache  ports.ImageCache
	logger zerolog.Logger
}

func NewTaskService(tasks ports.TaskRepository, cache ports.ImageCache, logger zerolog.Logger) *TaskService {
	return &TaskService{tasks: tasks, cache: cache, logger: logger}
}

func (s *TaskService) Create(ctx context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error) {
	task := &domain.Task{
		Description: input.Description,
		Completed:   input.Completed,
		OwnerID:     ownerID,
	}
	task.Normalize()
	if err := task.Validate(); err != nil {
		return nil, err
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", created.ID).Str("owner_id", ownerID).Msg("task created")
	return created, nil
}

func (s *TaskService) List(ctx context.Context, filter ports.ListTasksFilter) ([]*domain.Task, error) {
	return s.tasks.List(ctx, filter)
}

func (s *TaskService) Get(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	return s.tasks.FindByOwner(ctx, taskID, ownerID)
}

func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, update ports.TaskUpdate) (*domain.Task, error) {
	task, err := s.tasks.FindByOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}

	task.Normalize()
	if err := task.Validate(); err != nil {
		return nil, err
	}

	return s.tasks.Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	task, err := s.tasks.Delete(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, taskImageCacheKey(taskID))

	s.logger.Info().Str("task_id", taskID).Str("owner_id", ownerID).Msg("task deleted")
	return task, nil
}

// UpdateImage stores png, already normalized by the transport layer, on the
// owner's task.
func (s *TaskService) UpdateImage(ctx context.Context, ownerID, taskID string, png []byte) (*domain.Task, error) {
	task, err := s.tasks.FindByOwner(ctx, taskID, ownerID)
	if err != nil {
		return nil, err
	}

	task.Image = png
	updated, err := s.tasks.Update(ctx, task)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, taskImageCacheKey(taskID))
	return updated, nil
}

// Image serves the public task-image lookup. Missing task and missing image
// are indistinguishable to the caller.
func (s *TaskService) Image(ctx context.Context, taskID string) ([]byte, error) {
	key := taskImageCacheKey(taskID)
	if data, ok := s.cache.Get(ctx, key); ok {
		return data, nil
	}

	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrNoImage
		}
		return nil, err
	}
	if len(task.Image) == 0 {
		return nil, domain.ErrNoImage
	}

	s.cache.Set(ctx, key, task.Image)
	return task.Image, nil
}

func (s *TaskService) DeleteImage(ctx context.Context, ownerID, taskID string) error {
	task, err := s.tasks.FindByOwner(ctx, taskID, ownerID)
	if err != nil {
		return err
	}

	task.Image = nil
	if _, err := s.tasks.Update(ctx, task); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, taskImageCacheKey(taskID))
	return nil
}

func taskImageCacheKey(taskID string) string {
	return "task-image:" + taskID
}
