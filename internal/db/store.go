package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskflow/internal/config"
	"taskflow/internal/repository"
	"taskflow/internal/repository/memory"
	"taskflow/internal/repository/mongodb"
)

// Stores bundles the repositories of the configured backend.
type Stores struct {
	Users repository.UserRepository
	Tasks repository.TaskRepository
	close func(ctx context.Context) error
}

// Close releases the backend connection.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects the backend selected by STORE_DRIVER and prepares its schema.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	switch cfg.Store.Driver {
	case config.StoreMySQL:
		gormDB, err := NewMySQL(cfg.MySQL.DSN)
		if err != nil {
			return nil, err
		}
		return openMySQL(gormDB, logger)

	case config.StoreMongo:
		client, err := NewMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			return nil, err
		}
		database := client.Database(cfg.Mongo.Database)
		if err := mongodb.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Info("connected to mongodb", zap.String("database", cfg.Mongo.Database))
		return &Stores{
			Users: mongodb.NewUserRepository(database),
			Tasks: mongodb.NewTaskRepository(database),
			close: client.Disconnect,
		}, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store; data is lost on restart")
		return &Stores{
			Users: memory.NewUserRepository(),
			Tasks: memory.NewTaskRepository(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// openMySQL migrates the schema and releases the pool if that fails.
func openMySQL(gormDB *gorm.DB, logger *zap.Logger) (*Stores, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql handle: %w", err)
	}
	if err := Migrate(gormDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	logger.Info("connected to mysql")
	return &Stores{
		Users: repository.NewUserRepository(gormDB),
		Tasks: repository.NewTaskRepository(gormDB),
		close: func(context.Context) error { return sqlDB.Close() },
	}, nil
}
