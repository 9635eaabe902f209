package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskflow/internal/cache"
	apperrors "taskflow/internal/errors"
	"taskflow/internal/model"
	"taskflow/internal/repository"
)

const invalidateTimeout = 2 * time.Second

// CreateTaskInput carries the fields of a new task. Status defaults to pending.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      model.TaskStatus
	DueDate     *time.Time
}

// TaskService manages a user's tasks and keeps the task list cache consistent.
// Every operation is scoped to the verified identity passed as userID.
type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*model.Task, error)
	List(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, patch model.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
}

type taskService struct {
	repo   repository.TaskRepository
	cache  cache.TaskCache
	logger *zap.Logger
}

// NewTaskService builds a TaskService with repository and cache.
func NewTaskService(repo repository.TaskRepository, taskCache cache.TaskCache, logger *zap.Logger) TaskService {
	return &taskService{repo: repo, cache: taskCache, logger: logger}
}

func (s *taskService) Create(ctx context.Context, userID uuid.UUID, in CreateTaskInput) (*model.Task, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthorized
	}
	if in.Status == "" {
		in.Status = model.TaskStatusPending
	}
	if !in.Status.Valid() {
		return nil, invalidStatus()
	}

	task := &model.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
		OwnerID:     userID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		s.logger.Error("create task", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.invalidate(ctx, userID)
	return task, nil
}

// List serves the cached snapshot when fresh and otherwise reads through to the store.
func (s *taskService) List(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthorized
	}
	// generation is read before the store query so a racing mutation wins
	cached, generation, ok := s.cache.Load(ctx, userID)
	if ok {
		return cached, nil
	}

	tasks, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		s.logger.Error("list tasks", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	s.cache.Store(ctx, userID, generation, tasks)
	return tasks, nil
}

func (s *taskService) Update(ctx context.Context, userID, taskID uuid.UUID, patch model.TaskPatch) (*model.Task, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthorized
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalidStatus()
	}

	task, err := s.repo.UpdateOwned(ctx, taskID, userID, patch)
	if err != nil {
		return nil, s.mutationError("update task", userID, err)
	}

	if !patch.Empty() {
		s.invalidate(ctx, userID)
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	if userID == uuid.Nil {
		return nil, apperrors.ErrUnauthorized
	}

	task, err := s.repo.DeleteOwned(ctx, taskID, userID)
	if err != nil {
		return nil, s.mutationError("delete task", userID, err)
	}

	s.invalidate(ctx, userID)
	return task, nil
}

// invalidate clears the list cache after a committed write. It detaches from
// the request so a client disconnect cannot leave a stale snapshot behind.
func (s *taskService) invalidate(ctx context.Context, userID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	s.cache.Invalidate(ctx, userID)
}

// mutationError hides whether a task is missing or owned by someone else.
func (s *taskService) mutationError(op string, userID uuid.UUID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrTaskNotFound
	}
	s.logger.Error(op, zap.String("user_id", userID.String()), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

func invalidStatus() error {
	return apperrors.NewValidationError([]apperrors.FieldError{{
		Field:   "status",
		Message: "must be one of: pending completed",
	}})
}
