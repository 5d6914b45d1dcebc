// Package queue consumes raw log documents from a Redis list for
// asynchronous ingestion.
package queue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"fraglog/internal/logging"
)

const (
	defaultQueueKey    = "ingest_logs"
	retrySuffix        = ":retry"
	dlqSuffix          = ":dlq"
	retryCounterSuffix = ":retry-count:"
	maxRetryAttempts   = 3
	brPopBlock         = 5 * time.Second
)

// RedisQueue is a Redis-list-backed document queue. Failed payloads cycle
// through a retry list and land on a dead-letter list after
// maxRetryAttempts.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue builds a queue helper for the named list.
func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = defaultQueueKey
	}
	return &RedisQueue{client: client, key: key}
}

// Consume BRPOPs documents and delivers them to handler until the context
// is canceled. workerCount > 1 fans payloads out to a pool fed through a
// buffered channel; otherwise handling is inline.
func (q *RedisQueue) Consume(ctx context.Context, workerCount, bufferSize int, handler func([]byte) error) error {
	logger := logging.Logger()

	if workerCount < 1 {
		workerCount = 1
	}

	process := func(payload []byte) {
		if err := handler(payload); err != nil {
			logger.Warnf("handler error, scheduling retry: %v", err)
			if err := q.scheduleRetry(ctx, payload); err != nil {
				logger.Errorf("retry handling failed: %v", err)
			}
			return
		}
		_ = q.client.Del(ctx, q.retryCounterKey(payload)).Err()
	}

	jobs := make(chan []byte, bufferSize)
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for payload := range jobs {
				process(payload)
			}
		}()
	}
	defer func() {
		close(jobs)
		wg.Wait()
	}()

	logger.Infof("consuming %s with %d workers", q.key, workerCount)

	retryKey := q.key + retrySuffix
	for {
		if ctx.Err() != nil {
			logger.Warnf("redis consumer exiting: %v", ctx.Err())
			return ctx.Err()
		}

		result, err := q.client.BRPop(ctx, brPopBlock, retryKey, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warnf("redis BRPOP error: %v", err)
			continue
		}
		if len(result) < 2 {
			continue
		}

		select {
		case jobs <- []byte(result[1]):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *RedisQueue) scheduleRetry(ctx context.Context, payload []byte) error {
	logger := logging.Logger()

	counterKey := q.retryCounterKey(payload)
	attempt, err := q.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return err
	}
	_ = q.client.Expire(ctx, counterKey, 24*time.Hour).Err()

	if attempt > maxRetryAttempts {
		logger.Warnf("moving document to DLQ after %d attempts", attempt-1)
		_ = q.client.LPush(ctx, q.key+dlqSuffix, payload).Err()
		return q.client.Del(ctx, counterKey).Err()
	}
	return q.client.LPush(ctx, q.key+retrySuffix, payload).Err()
}

func (q *RedisQueue) retryCounterKey(payload []byte) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s%s%s", q.key, retryCounterSuffix, hex.EncodeToString(sum[:]))
}
