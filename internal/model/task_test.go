package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStatus_Valid(t *testing.T) {
	assert.True(t, TaskStatusPending.Valid())
	assert.True(t, TaskStatusCompleted.Valid())
	assert.False(t, TaskStatus("Completed").Valid())
	assert.False(t, TaskStatus("").Valid())
}

func TestTaskPatch(t *testing.T) {
	assert.True(t, TaskPatch{}.Empty())

	title := "new title"
	status := TaskStatusCompleted
	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	patch := TaskPatch{Title: &title, Status: &status, DueDate: &due}
	require.False(t, patch.Empty())

	task := Task{ID: uuid.New(), Title: "old", Description: "keep", Status: TaskStatusPending}
	patch.Apply(&task)

	assert.Equal(t, "new title", task.Title)
	assert.Equal(t, "keep", task.Description)
	assert.Equal(t, TaskStatusCompleted, task.Status)
	require.NotNil(t, task.DueDate)
	assert.NotSame(t, &due, task.DueDate)

	assert.Equal(t, map[string]interface{}{
		"title":    "new title",
		"status":   TaskStatusCompleted,
		"due_date": due,
	}, patch.Columns())
}

func TestTask_BeforeCreate(t *testing.T) {
	task := Task{Title: "T1"}
	require.NoError(t, task.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, TaskStatusPending, task.Status)

	completed := Task{Status: TaskStatusCompleted}
	require.NoError(t, completed.BeforeCreate(nil))
	assert.Equal(t, TaskStatusCompleted, completed.Status)
}
