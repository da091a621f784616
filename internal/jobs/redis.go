package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultQueueKey    = "conreach:deliveries"
	defaultPollTimeout = 5 * time.Second
)

// redisCmdable is the part of *redis.Client used by the queue and the locker.
type redisCmdable interface {
	LPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// NewRedisClient parses url and verifies connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisQueue is a Queue on a Redis list: LPUSH to enqueue, BRPOP to dequeue.
type RedisQueue struct {
	client      redisCmdable
	key         string
	pollTimeout time.Duration
}

// NewRedisQueue returns a queue stored under key.
func NewRedisQueue(client redisCmdable, key string) (*RedisQueue, error) {
	if client == nil {
		return nil, errors.New("redis client required for queue")
	}
	if key == "" {
		key = defaultQueueKey
	}
	return &RedisQueue{client: client, key: key, pollTimeout: defaultPollTimeout}, nil
}

// Durable reports that queued tasks survive a restart of this process.
func (q *RedisQueue) Durable() bool { return true }

func (q *RedisQueue) Enqueue(ctx context.Context, task Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("lpush: %w", err)
	}
	return nil
}

// Dequeue polls with BRPOP so a cancelled context is noticed within one poll timeout.
func (q *RedisQueue) Dequeue(ctx context.Context) (Task, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Task{}, err
		}
		res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Task{}, ctxErr
			}
			return Task{}, fmt.Errorf("brpop: %w", err)
		}
		if len(res) != 2 {
			return Task{}, fmt.Errorf("brpop: unexpected reply of %d elements", len(res))
		}
		var task Task
		if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
			return Task{}, fmt.Errorf("decode task: %w", err)
		}
		return task, nil
	}
}
