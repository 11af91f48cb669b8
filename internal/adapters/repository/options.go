package repository

import (
	"github.com/okian/gradebook/pkg/logger"
)

// Option configures a store.
type Option func(*options)

type options struct {
	logger    logger.Logger
	redisKey  string
	filePerms uint32
}

func defaultOptions() options {
	return options{
		logger:    logger.Nop(),
		redisKey:  DefaultRedisKey,
		filePerms: 0o644,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used by the store.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRedisKey sets the list key used by RedisStore.
func WithRedisKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.redisKey = key
		}
	}
}

// WithFileMode sets the permission bits of the history file.
func WithFileMode(perm uint32) Option {
	return func(o *options) {
		if perm != 0 {
			o.filePerms = perm
		}
	}
}
