package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"

	"taskflow/internal/auth"
	"taskflow/internal/cache"
	"taskflow/internal/config"
	"taskflow/internal/db"
	apperrors "taskflow/internal/errors"
	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/service"
)

const (
	demoEmail    = "demo@taskflow.local"
	demoPassword = "demo1234"
)

type sampleTask struct {
	title       string
	description string
	status      model.TaskStatus
	dueIn       time.Duration
}

var sampleTasks = []sampleTask{
	{"Read the API docs", "Open /swagger/index.html and try the task endpoints", model.TaskStatusCompleted, 0},
	{"Plan the week", "List the three most important goals", model.TaskStatusPending, 48 * time.Hour},
	{"Water the plants", "Balcony and kitchen", model.TaskStatusPending, 24 * time.Hour},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx := context.Background()

	// Open applies migrations or indexes for the selected backend
	stores, err := db.Open(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("store init", zap.Error(err))
	}
	defer func() { _ = stores.Close(ctx) }()

	kv, closeCache := cache.Open(ctx, cfg, lg)
	defer func() { _ = closeCache() }()

	jwtService, err := auth.NewJWTService(cfg.JWT.Secret)
	if err != nil {
		lg.Fatal("token service init", zap.Error(err))
	}

	authService := service.NewAuthService(stores.Users, jwtService, lg)
	taskService := service.NewTaskService(stores.Tasks, cache.NewTaskCache(kv), lg)

	created, err := seed(ctx, authService, taskService)
	if err != nil {
		lg.Fatal("seed failed", zap.Error(err))
	}

	lg.Info("seed completed",
		zap.String("email", demoEmail),
		zap.String("password", demoPassword),
		zap.Int("tasks_created", created),
	)
}

// seed creates the demo user and its sample tasks. Running it again only
// logs in the existing user and leaves a non-empty task list untouched.
func seed(ctx context.Context, authService service.AuthService, taskService service.TaskService) (int, error) {
	_, user, err := authService.Signup(ctx, demoEmail, demoPassword, "Demo", "User")
	if errors.Is(err, apperrors.ErrEmailTaken) {
		_, user, err = authService.Login(ctx, demoEmail, demoPassword)
	}
	if err != nil {
		return 0, fmt.Errorf("demo user: %w", err)
	}

	existing, err := taskService.List(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("list demo tasks: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, st := range sampleTasks {
		in := service.CreateTaskInput{Title: st.title, Description: st.description, Status: st.status}
		if st.dueIn > 0 {
			due := time.Now().Add(st.dueIn).UTC().Truncate(time.Hour)
			in.DueDate = &due
		}
		if _, err := taskService.Create(ctx, user.ID, in); err != nil {
			return created, fmt.Errorf("create task %q: %w", st.title, err)
		}
		created++
	}
	return created, nil
}
