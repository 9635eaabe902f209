package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskflow/internal/model"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new GORM-backed task repository.
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Create inserts a new task.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return translate(r.db.WithContext(ctx).Create(task).Error)
}

// ListByOwner returns every task owned by ownerID, oldest first.
func (r *taskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateOwned locks the owned row, applies the patch and commits.
func (r *taskRepository) UpdateOwned(ctx context.Context, id, ownerID uuid.UUID, patch model.TaskPatch) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOwnedForUpdate(tx, id, ownerID, &task); err != nil {
			return err
		}
		if patch.Empty() {
			return nil
		}

		now := time.Now()
		cols := patch.Columns()
		cols["updated_at"] = now
		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(cols).Error; err != nil {
			return err
		}
		patch.Apply(&task)
		task.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// DeleteOwned locks the owned row, deletes it and returns its prior state.
func (r *taskRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOwnedForUpdate(tx, id, ownerID, &task); err != nil {
			return err
		}
		return tx.Where("id = ?", task.ID).Delete(&model.Task{}).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// findOwnedForUpdate selects the task with SELECT ... FOR UPDATE on the combined id+owner predicate.
func findOwnedForUpdate(tx *gorm.DB, id, ownerID uuid.UUID, task *model.Task) error {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(task).Error
}
