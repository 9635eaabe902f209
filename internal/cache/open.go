package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskflow/internal/config"
)

const pingTimeout = 2 * time.Second

// Open builds the key-value store selected by CACHE_DRIVER. A nil Store
// disables caching. The returned func releases the backend.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, func() error) {
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		client := New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx); err != nil {
			// keep the client: it reconnects on its own and misses meanwhile
			logger.Warn("redis unreachable; task lists will be served from the store", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
		}
		return client, client.Close
	case config.CacheMemory:
		return NewMemory(), func() error { return nil }
	default:
		logger.Info("task list cache disabled")
		return nil, func() error { return nil }
	}
}
