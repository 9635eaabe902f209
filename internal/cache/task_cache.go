package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/model"
)

const (
	// TaskListTTL bounds how long a task list snapshot is served.
	TaskListTTL = time.Hour
	// generationTTL outlives any snapshot so a stale one can never match.
	generationTTL = 24 * time.Hour
)

// TaskCache caches a user's full task list.
//
// Every mutation bumps a per-user generation counter before deleting the
// snapshot. A snapshot is served only when it was computed under the current
// generation, so a List racing with a mutation cannot repopulate stale data.
type TaskCache interface {
	// Load returns the cached list when fresh, plus the generation the
	// caller must pass to Store.
	Load(ctx context.Context, userID uuid.UUID) (tasks []model.Task, generation int64, ok bool)
	Store(ctx context.Context, userID uuid.UUID, generation int64, tasks []model.Task)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type snapshot struct {
	Generation int64        `json:"generation"`
	Tasks      []model.Task `json:"tasks"`
}

type taskCache struct {
	store Store
}

// NewTaskCache builds a TaskCache on top of a key-value Store.
// A nil store yields a cache that always misses.
func NewTaskCache(store Store) TaskCache {
	return &taskCache{store: store}
}

// TaskListKey is the snapshot key for a user.
func TaskListKey(userID uuid.UUID) string {
	return fmt.Sprintf("tasks:%s", userID.String())
}

func generationKey(userID uuid.UUID) string {
	return TaskListKey(userID) + ":gen"
}

func (c *taskCache) Load(ctx context.Context, userID uuid.UUID) ([]model.Task, int64, bool) {
	if c.store == nil {
		return nil, 0, false
	}
	vals, _ := c.store.MGet(ctx, TaskListKey(userID), generationKey(userID))
	if len(vals) != 2 {
		return nil, 0, false
	}

	var generation int64
	if vals[1] != nil {
		parsed, err := strconv.ParseInt(string(vals[1]), 10, 64)
		if err != nil {
			return nil, 0, false
		}
		generation = parsed
	}

	if vals[0] == nil {
		return nil, generation, false
	}
	var cached snapshot
	if err := json.Unmarshal(vals[0], &cached); err != nil {
		return nil, generation, false
	}
	if cached.Generation != generation {
		return nil, generation, false
	}
	if cached.Tasks == nil {
		cached.Tasks = []model.Task{}
	}
	return cached.Tasks, generation, true
}

func (c *taskCache) Store(ctx context.Context, userID uuid.UUID, generation int64, tasks []model.Task) {
	if c.store == nil {
		return
	}
	payload, err := json.Marshal(snapshot{Generation: generation, Tasks: tasks})
	if err != nil {
		return
	}
	_ = c.store.Set(ctx, TaskListKey(userID), payload, TaskListTTL)
}

func (c *taskCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c.store == nil {
		return
	}
	_, _ = c.store.Incr(ctx, generationKey(userID), generationTTL)
	_ = c.store.Delete(ctx, TaskListKey(userID))
}
