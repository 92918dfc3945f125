package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// AlertQueueKey is where monitors push scored items for the notifier.
	AlertQueueKey = "marks:queue:alerts"
	// DeadLetterKey collects payloads the notifier could not deliver.
	DeadLetterKey = "marks:queue:failed"
)

// Queue is a thin Redis list wrapper used as the handoff between the
// monitor processes and the notifier.
type Queue struct {
	client *redis.Client
}

func NewQueue(redisURL string) (*Queue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &Queue{client: client}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) Push(ctx context.Context, key string, data string) error {
	return q.client.LPush(ctx, key, data).Err()
}

// Pop blocks up to timeout waiting for the next payload. Returns redis.Nil
// via the error when the timeout elapses with an empty queue.
func (q *Queue) Pop(ctx context.Context, key string, timeout time.Duration) (string, error) {
	result, err := q.client.BRPop(ctx, timeout, key).Result()
	if err != nil {
		return "", err
	}
	return result[1], nil
}

func (q *Queue) Len(ctx context.Context, key string) (int64, error) {
	return q.client.LLen(ctx, key).Result()
}
