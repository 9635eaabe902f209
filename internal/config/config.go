package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMongo  = "mongo"
	StoreMySQL  = "mysql"
	StoreMemory = "memory"
)

// Cache drivers.
const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV" envDefault:"false"`

	Server Server `envPrefix:"SERVER_"`
	CORS   CORS
	Store  Store  `envPrefix:"STORE_"`
	MySQL  MySQL  `envPrefix:"MYSQL_"`
	Mongo  Mongo  `envPrefix:"MONGODB_"`
	Cache  Cache  `envPrefix:"CACHE_"`
	Redis  Redis  `envPrefix:"REDIS_"`
	JWT    JWT    `envPrefix:"JWT_"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Server contains HTTP server parameters.
type Server struct {
	Port            string        `env:"PORT" envDefault:"5000"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// CORS contains the browser origins allowed to call the API.
type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	FrontendURL    string   `env:"FRONTEND_URL"`
}

// Origins returns the allow-list including the frontend URL when set.
func (c CORS) Origins() []string {
	origins := make([]string, 0, len(c.AllowedOrigins)+1)
	origins = append(origins, c.AllowedOrigins...)
	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}
	return origins
}

// Store selects the persistence backend for users and tasks.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"mongo"`
}

// MySQL contains relational store connection parameters.
type MySQL struct {
	DSN string `env:"DSN" envDefault:"user:password@tcp(localhost:3306)/taskflow?charset=utf8mb4&parseTime=True&loc=Local"`
}

// Mongo contains document store connection parameters.
type Mongo struct {
	URI      string        `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database string        `env:"DATABASE" envDefault:"taskflow"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Cache selects the task list cache backend.
type Cache struct {
	Driver string `env:"DRIVER" envDefault:"redis"`
}

// Redis contains cache connection parameters.
type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// JWT contains token signing parameters.
type JWT struct {
	Secret string `env:"SECRET,required,notEmpty"`
}

// Load reads an optional .env file and builds Config from the environment.
func Load() (*Config, error) {
	// best-effort: a missing .env leaves the real environment untouched
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case StoreMongo, StoreMySQL, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	switch c.Cache.Driver {
	case CacheRedis, CacheMemory, CacheNone:
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q", c.Cache.Driver)
	}
	return nil
}
