package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

type taskRepository struct {
	coll *mongo.Collection
}

// NewTaskRepository builds a MongoDB-backed task repository.
func NewTaskRepository(db *mongo.Database) repository.TaskRepository {
	return &taskRepository{coll: db.Collection(tasksCollection)}
}

// Create inserts a new task, assigning its id, default status and timestamps.
func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if task.Status == "" {
		task.Status = model.TaskStatusPending
	}
	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now

	_, err := r.coll.InsertOne(ctx, newTaskDocument(task))
	return err
}

// ListByOwner returns every task owned by ownerID, oldest first.
func (r *taskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner": ownerID.String()}, opts)
	if err != nil {
		return nil, err
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(docs))
	for _, doc := range docs {
		task, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

// UpdateOwned runs a single findOneAndUpdate filtered by id and owner.
func (r *taskRepository) UpdateOwned(ctx context.Context, id, ownerID uuid.UUID, patch model.TaskPatch) (*model.Task, error) {
	filter := ownedFilter(id, ownerID)
	if patch.Empty() {
		return decodeTask(r.coll.FindOne(ctx, filter))
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeTask(r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": patchFields(patch)}, opts))
}

// DeleteOwned runs a single findOneAndDelete filtered by id and owner.
func (r *taskRepository) DeleteOwned(ctx context.Context, id, ownerID uuid.UUID) (*model.Task, error) {
	return decodeTask(r.coll.FindOneAndDelete(ctx, ownedFilter(id, ownerID)))
}

func ownedFilter(id, ownerID uuid.UUID) bson.M {
	return bson.M{"_id": id.String(), "owner": ownerID.String()}
}

func patchFields(patch model.TaskPatch) bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.DueDate != nil {
		set["dueDate"] = *patch.DueDate
	}
	return set
}

func decodeTask(res *mongo.SingleResult) (*model.Task, error) {
	var doc taskDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.toModel()
}
