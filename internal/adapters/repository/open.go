package repository

import (
	"context"
	"fmt"
)

// Settings selects and parameterises a backend.
type Settings struct {
	Backend       string
	HistoryPath   string
	DatabaseDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
}

// Open builds the configured backend and wraps it with metrics and logging.
func Open(ctx context.Context, cfg Settings, opts ...Option) (*Instrumented, error) {
	const op = "repository.Open"
	o := applyOptions(opts)
	if cfg.RedisKey != "" {
		opts = append(opts, WithRedisKey(cfg.RedisKey))
	}

	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case BackendMemory:
		store = NewMemoryStore()
	case BackendFile:
		store, err = NewFileStore(cfg.HistoryPath, opts...)
	case BackendSQLite, BackendPostgres:
		store, err = OpenSQL(ctx, cfg.Backend, cfg.DatabaseDSN, opts...)
	case BackendRedis:
		store, err = DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, opts...)
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedDriver, cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return Instrument(store, cfg.Backend, o.logger), nil
}
