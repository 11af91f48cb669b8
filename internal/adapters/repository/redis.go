package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/okian/gradebook/internal/domain/model"
	"github.com/okian/gradebook/pkg/logger"
)

// DefaultRedisKey is the list key holding the history.
const DefaultRedisKey = "gradebook:history"

// RedisClient is the subset of the go-redis client used by RedisStore.
type RedisClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps the history in one redis list, newest at index 0.
type RedisStore struct {
	client RedisClient
	closer func() error
	key    string
	logger logger.Logger
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client RedisClient, opts ...Option) *RedisStore {
	o := applyOptions(opts)
	return &RedisStore{
		client: client,
		closer: func() error { return nil },
		key:    o.redisKey,
		logger: o.logger,
	}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int, opts ...Option) (*RedisStore, error) {
	const op = "repository.DialRedis"
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	s := NewRedisStore(client, opts...)
	s.closer = client.Close
	return s, nil
}

func (s *RedisStore) Append(ctx context.Context, e model.Evaluation) error {
	const op = "repository.RedisStore.Append"
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.client.LPush(ctx, s.key, payload).Err(); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	if err := s.client.LTrim(ctx, s.key, 0, Capacity-1).Err(); err != nil {
		return fmt.Errorf("%s: trim: %w: %v", op, ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) LoadAll(ctx context.Context) ([]model.Evaluation, error) {
	const op = "repository.RedisStore.LoadAll"
	items, err := s.client.LRange(ctx, s.key, 0, Capacity-1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.Evaluation{}, nil
		}
		return []model.Evaluation{}, fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	history := make([]model.Evaluation, 0, len(items))
	for _, item := range items {
		var e model.Evaluation
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return []model.Evaluation{}, fmt.Errorf("%s: %w: %v", op, ErrCorrupt, err)
		}
		history = append(history, e)
	}
	return history, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	const op = "repository.RedisStore.Clear"
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) int {
	n, err := s.client.LLen(ctx, s.key).Result()
	if err != nil {
		s.logger.Warn(ctx, "count failed", logger.String("backend", BackendRedis), logger.Error(err))
		return 0
	}
	if n > Capacity {
		return Capacity
	}
	return int(n)
}

func (s *RedisStore) Close() error {
	return s.closer()
}
