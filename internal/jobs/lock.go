package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockTTL = 30 * time.Minute

// Lease is a held lock.
type Lease interface {
	// Refresh extends the lease. ok is false when the lease has already expired and
	// another owner may hold the key.
	Refresh(ctx context.Context) (ok bool, err error)
	Release(ctx context.Context) error
}

// Locker hands out exclusive leases by key.
type Locker interface {
	// Acquire returns ok=false without error when another owner holds key.
	Acquire(ctx context.Context, key string) (lease Lease, ok bool, err error)
}

// RedisLocker implements Locker using Redis SETNX + TTL.
type RedisLocker struct {
	client redisCmdable
	prefix string
	ttl    time.Duration
}

// NewRedisLocker constructs a Redis-backed locker.
func NewRedisLocker(client redisCmdable, prefix string, ttl time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if prefix == "" {
		prefix = "conreach:lock:"
	}
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (Lease, bool, error) {
	if key == "" {
		return nil, false, errors.New("lock key is required")
	}
	owner := uuid.NewString()
	full := l.prefix + key
	ok, err := l.client.SetNX(ctx, full, owner, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{client: l.client, key: full, owner: owner, ttl: l.ttl}, true, nil
}

type redisLease struct {
	client redisCmdable
	key    string
	owner  string
	ttl    time.Duration
}

// Refresh resets the TTL while the owner value still matches.
func (l *redisLease) Refresh(ctx context.Context) (bool, error) {
	value, err := l.client.Get(ctx, l.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		return false, nil
	}
	ok, err := l.client.PExpire(ctx, l.key, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("extend lock: %w", err)
	}
	return ok, nil
}

// Release frees the lock only if the owner value still matches.
func (l *redisLease) Release(ctx context.Context) error {
	value, err := l.client.Get(ctx, l.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		return nil
	}
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	return nil
}

// LocalLocker is an in-process Locker for single-binary deployments.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) Acquire(_ context.Context, key string) (Lease, bool, error) {
	if key == "" {
		return nil, false, errors.New("lock key is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, false, nil
	}
	l.held[key] = struct{}{}
	return &localLease{locker: l, key: key}, true, nil
}

type localLease struct {
	locker *LocalLocker
	key    string
	once   sync.Once
}

// Refresh is a no-op: local leases do not expire.
func (l *localLease) Refresh(context.Context) (bool, error) {
	return true, nil
}

func (l *localLease) Release(context.Context) error {
	l.once.Do(func() {
		l.locker.mu.Lock()
		delete(l.locker.held, l.key)
		l.locker.mu.Unlock()
	})
	return nil
}
