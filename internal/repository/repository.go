package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"taskflow/internal/model"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines credential persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// TaskRepository defines task persistence operations.
// Every lookup of a single task is filtered by id and owner together.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)
	// UpdateOwned applies patch atomically and returns the updated task.
	// An empty patch returns the current task without writing.
	UpdateOwned(ctx context.Context, id, ownerID uuid.UUID, patch model.TaskPatch) (*model.Task, error)
	// DeleteOwned removes the task atomically and returns its prior state.
	DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error)
}
