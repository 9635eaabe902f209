package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"taskflow/docs"
	"taskflow/internal/auth"
	"taskflow/internal/cache"
	"taskflow/internal/config"
	"taskflow/internal/db"
	"taskflow/internal/handler"
	"taskflow/internal/logger"
	"taskflow/internal/router"
	"taskflow/internal/service"
)

// @title Taskflow API
// @version 1.0
// @description Task tracking API with bearer token authentication and a cached task list.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, lg)
	stop()
	if err != nil {
		lg.Error("server exited", zap.Error(err))
		_ = lg.Sync()
		os.Exit(1)
	}
	_ = lg.Sync()
}

// run returns instead of exiting so every deferred close runs.
func run(ctx context.Context, cfg *config.Config, lg *zap.Logger) error {
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret)
	if err != nil {
		return fmt.Errorf("token service init: %w", err)
	}

	stores, err := db.Open(ctx, cfg, lg)
	if err != nil {
		return fmt.Errorf("store init (%s): %w", cfg.Store.Driver, err)
	}
	defer func() { _ = stores.Close(context.Background()) }()

	kv, closeCache := cache.Open(ctx, cfg, lg)
	defer func() { _ = closeCache() }()

	// Initialize services
	authService := service.NewAuthService(stores.Users, jwtService, lg)
	taskService := service.NewTaskService(stores.Tasks, cache.NewTaskCache(kv), lg)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(
		e,
		cfg,
		lg,
		auth.NewGate(jwtService, lg),
		handler.NewAuthHandler(authService),
		handler.NewTaskHandler(taskService),
	)

	swaggerURL := "http://localhost:" + cfg.Server.Port + "/swagger/index.html"
	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
		swaggerURL = "http://" + host + "/swagger/index.html"
		if strings.HasPrefix(cfg.SwaggerHost, "https://") {
			docs.SwaggerInfo.Schemes = []string{"https"}
			swaggerURL = "https://" + host + "/swagger/index.html"
		}
	}
	lg.Info("swagger documentation available", zap.String("url", swaggerURL))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		lg.Info("shutting down")
	case serveErr = <-errCh:
		serveErr = fmt.Errorf("server start: %w", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("graceful shutdown", zap.Error(err))
	}
	return serveErr
}
