// Package memory provides in-process repositories for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

// UserRepository keeps users in a map guarded by a RWMutex.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]model.User
	byEmail map[string]uuid.UUID
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates an empty user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]model.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[user.Email]; taken {
		return repository.ErrDuplicate
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.byID[id]
	return &user, nil
}

// TaskRepository keeps tasks in a map guarded by a RWMutex.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]model.Task
}

var _ repository.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates an empty task repository.
func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[uuid.UUID]model.Task)}
}

func (r *TaskRepository) Create(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Status == "" {
		task.Status = model.TaskStatusPending
	}
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now
	r.tasks[task.ID] = copyTask(*task)
	return nil
}

func (r *TaskRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tasks := []model.Task{}
	for _, task := range r.tasks {
		if task.OwnerID == ownerID {
			tasks = append(tasks, copyTask(task))
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *TaskRepository) UpdateOwned(_ context.Context, id, ownerID uuid.UUID, patch model.TaskPatch) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	if !patch.Empty() {
		patch.Apply(&task)
		task.UpdatedAt = time.Now().UTC()
		r.tasks[id] = task
	}
	out := copyTask(task)
	return &out, nil
}

func (r *TaskRepository) DeleteOwned(_ context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	delete(r.tasks, id)
	return &task, nil
}

// copyTask detaches the due date pointer from stored state.
func copyTask(t model.Task) model.Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	return t
}
