package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeRedis implements RedisClient over in-memory lists.
type fakeRedis struct {
	mu    sync.Mutex
	lists map[string][]string
	err   error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{lists: map[string][]string{}}
}

func (f *fakeRedis) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	for _, v := range values {
		var s string
		switch t := v.(type) {
		case []byte:
			s = string(t)
		case string:
			s = t
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

func (f *fakeRedis) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStatusCmd(ctx)
	l := f.lists[key]
	if int(stop)+1 < len(l) {
		f.lists[key] = l[start : stop+1]
	}
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringSliceCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	l := f.lists[key]
	end := int(stop) + 1
	if end > len(l) {
		end = len(l)
	}
	out := make([]string, end-int(start))
	copy(out, l[start:end])
	cmd.SetVal(out)
	return cmd
}

func (f *fakeRedis) LLen(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := f.lists[k]; ok {
			n++
			delete(f.lists, k)
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisStore(t *testing.T) {
	Convey("Given a redis store", t, func() {
		contract(func() Store { return NewRedisStore(newFakeRedis()) })

		Convey("When a custom key is configured", func() {
			client := newFakeRedis()
			s := NewRedisStore(client, WithRedisKey("custom:history"))
			So(s.Append(context.Background(), evaluationN(1)), ShouldBeNil)

			Convey("Then records land under that key", func() {
				So(len(client.lists["custom:history"]), ShouldEqual, 1)
				So(client.lists[DefaultRedisKey], ShouldBeEmpty)
			})
		})

		Convey("When the list holds a malformed entry", func() {
			client := newFakeRedis()
			client.lists[DefaultRedisKey] = []string{"not-json"}
			s := NewRedisStore(client)
			history, err := s.LoadAll(context.Background())

			Convey("Then ErrCorrupt is returned with an empty history", func() {
				So(errors.Is(err, ErrCorrupt), ShouldBeTrue)
				So(history, ShouldBeEmpty)
			})
		})

		Convey("When the server is unreachable", func() {
			client := newFakeRedis()
			client.err = errors.New("connection refused")
			s := NewRedisStore(client)

			Convey("Then operations report ErrUnavailable", func() {
				So(errors.Is(s.Append(context.Background(), evaluationN(1)), ErrUnavailable), ShouldBeTrue)
				_, err := s.LoadAll(context.Background())
				So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
				So(s.Count(context.Background()), ShouldEqual, 0)
			})
		})
	})
}
