package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis implements redisCmdable over in-memory lists and strings.
type fakeRedis struct {
	mu      sync.Mutex
	lists   map[string][]string
	strings map[string]string
	ttls    map[string]time.Duration
	err     error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		lists:   make(map[string][]string),
		strings: make(map[string]string),
		ttls:    make(map[string]time.Duration),
	}
}

func (f *fakeRedis) LPush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	for _, v := range values {
		var s string
		switch t := v.(type) {
		case []byte:
			s = string(t)
		case string:
			s = t
		default:
			s = fmt.Sprint(t)
		}
		f.lists[key] = append([]string{s}, f.lists[key]...)
	}
	return redis.NewIntResult(int64(len(f.lists[key])), nil)
}

func (f *fakeRedis) BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringSliceResult(nil, f.err)
	}
	for _, key := range keys {
		list := f.lists[key]
		if len(list) == 0 {
			continue
		}
		last := list[len(list)-1]
		f.lists[key] = list[:len(list)-1]
		return redis.NewStringSliceResult([]string{key, last}, nil)
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.strings[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.strings[key] = fmt.Sprint(value)
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.strings[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.strings[k]; ok {
			delete(f.strings, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if _, ok := f.strings[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	f.ttls[key] = expiration
	return redis.NewBoolResult(true, nil)
}
