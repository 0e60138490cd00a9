package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
)

// Config selects and parameterises a backend.
type Config struct {
	Backend   string
	Namespace string

	SQLitePath string

	PostgresDSN      string
	PostgresMaxConns int32

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3 S3Config
}

// Open builds the configured backend and wraps it in the configured namespace.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case "", BackendMemory:
		s = NewMemory()
	case BackendSQLite:
		s, err = NewSQLite(cfg.SQLitePath)
	case BackendPostgres:
		s, err = NewPostgres(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns)
	case BackendRedis:
		s, err = NewRedis(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case BackendS3:
		s, err = NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown kv backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	return Namespaced(s, cfg.Namespace), nil
}
