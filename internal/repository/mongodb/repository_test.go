package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"taskflow/internal/model"
	"taskflow/internal/repository"
)

func taskDoc(id, owner uuid.UUID, title, status string) bson.D {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return bson.D{
		{Key: "_id", Value: id.String()},
		{Key: "title", Value: title},
		{Key: "description", Value: title + " description"},
		{Key: "status", Value: status},
		{Key: "owner", Value: owner.String()},
		{Key: "createdAt", Value: now},
		{Key: "updatedAt", Value: now},
	}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &model.User{Email: "alice@x.io", PasswordHash: "hash", FirstName: "Alice", LastName: "Doe"}
		require.NoError(mt, repo.Create(context.Background(), user))
		assert.NotEqual(mt, uuid.Nil, user.ID)
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: taskflow.users index: email_1",
		}))

		err := repo.Create(context.Background(), &model.User{Email: "alice@x.io"})
		assert.ErrorIs(mt, err, repository.ErrDuplicate)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := uuid.New()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "taskflow.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id.String()},
			{Key: "email", Value: "alice@x.io"},
			{Key: "password", Value: "hash"},
			{Key: "fname", Value: "Alice"},
			{Key: "lname", Value: "Doe"},
		}))

		user, err := repo.FindByEmail(context.Background(), "alice@x.io")
		require.NoError(mt, err)
		assert.Equal(mt, id, user.ID)
		assert.Equal(mt, "hash", user.PasswordHash)
		assert.Equal(mt, "Doe", user.LastName)
	})

	mt.Run("find by email not found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "taskflow.users", mtest.FirstBatch))

		user, err := repo.FindByEmail(context.Background(), "ghost@x.io")
		assert.Nil(mt, user)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestTaskRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		task := &model.Task{Title: "T1", Description: "d", OwnerID: uuid.New()}
		require.NoError(mt, repo.Create(context.Background(), task))
		assert.NotEqual(mt, uuid.Nil, task.ID)
		assert.Equal(mt, model.TaskStatusPending, task.Status)
	})

	mt.Run("list by owner", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		owner := uuid.New()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "taskflow.tasks", mtest.FirstBatch,
			taskDoc(uuid.New(), owner, "T1", "pending"),
			taskDoc(uuid.New(), owner, "T2", "completed"),
		))

		tasks, err := repo.ListByOwner(context.Background(), owner)
		require.NoError(mt, err)
		require.Len(mt, tasks, 2)
		assert.Equal(mt, "T1", tasks[0].Title)
		assert.Equal(mt, model.TaskStatusCompleted, tasks[1].Status)
		assert.Equal(mt, owner, tasks[1].OwnerID)

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		assert.Equal(mt, owner.String(), filter.Lookup("owner").StringValue())
	})

	mt.Run("list empty is not nil", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "taskflow.tasks", mtest.FirstBatch))

		tasks, err := repo.ListByOwner(context.Background(), uuid.New())
		require.NoError(mt, err)
		assert.NotNil(mt, tasks)
		assert.Empty(mt, tasks)
	})

	mt.Run("update owned", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		id, owner := uuid.New(), uuid.New()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: taskDoc(id, owner, "T1", "completed")},
		})

		status := model.TaskStatusCompleted
		task, err := repo.UpdateOwned(context.Background(), id, owner, model.TaskPatch{Status: &status})
		require.NoError(mt, err)
		assert.Equal(mt, model.TaskStatusCompleted, task.Status)

		query := mt.GetStartedEvent().Command.Lookup("query").Document()
		assert.Equal(mt, id.String(), query.Lookup("_id").StringValue())
		assert.Equal(mt, owner.String(), query.Lookup("owner").StringValue())
	})

	mt.Run("update foreign task", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		title := "hijack"
		task, err := repo.UpdateOwned(context.Background(), uuid.New(), uuid.New(), model.TaskPatch{Title: &title})
		assert.Nil(mt, task)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("empty patch reads without writing", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		id, owner := uuid.New(), uuid.New()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "taskflow.tasks", mtest.FirstBatch,
			taskDoc(id, owner, "T1", "pending")))

		task, err := repo.UpdateOwned(context.Background(), id, owner, model.TaskPatch{})
		require.NoError(mt, err)
		assert.Equal(mt, "T1", task.Title)
		assert.Equal(mt, "find", mt.GetStartedEvent().CommandName)
	})

	mt.Run("delete owned", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		id, owner := uuid.New(), uuid.New()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: taskDoc(id, owner, "T1", "pending")},
		})

		task, err := repo.DeleteOwned(context.Background(), id, owner)
		require.NoError(mt, err)
		assert.Equal(mt, id, task.ID)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		task, err := repo.DeleteOwned(context.Background(), uuid.New(), uuid.New())
		assert.Nil(mt, task)
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates both indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		require.NoError(mt, EnsureIndexes(context.Background(), mt.DB))
	})

	mt.Run("propagates failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    85,
			Name:    "IndexOptionsConflict",
			Message: "index already exists with different options",
		}))
		err := EnsureIndexes(context.Background(), mt.DB)
		assert.ErrorContains(mt, err, "users email index")
	})
}
