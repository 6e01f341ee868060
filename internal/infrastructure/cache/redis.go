package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/yt-rag-engine/pkg/config"
)

// RedisClient wraps the pipeline's cache usage: query-embedding memoization
// (avoids re-embedding an identical query text), backlog-count snapshots
// consumed by the health sensor, and chat-bot progress-ping throttling.
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a Redis-backed cache client.
func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

// GetEmbedding retrieves a memoized query embedding, if present.
func (r *RedisClient) GetEmbedding(ctx context.Context, queryHash string) ([]float32, bool, error) {
	val, err := r.client.Get(ctx, embeddingKey(queryHash)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var vec []float32
	if err := json.Unmarshal(val, &vec); err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// SetEmbedding memoizes a query embedding for reuse across identical
// queries within ttl.
func (r *RedisClient) SetEmbedding(ctx context.Context, queryHash string, vec []float32, ttl time.Duration) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, embeddingKey(queryHash), data, ttl).Err()
}

// SetBacklogSnapshot caches the health sensor's most recent backlog count
// per stage so status endpoints don't need to hit the job store on every
// request.
func (r *RedisClient) SetBacklogSnapshot(ctx context.Context, stage string, count int64) error {
	return r.client.Set(ctx, backlogKey(stage), count, 5*time.Minute).Err()
}

// GetBacklogSnapshot reads the cached backlog count for a stage.
func (r *RedisClient) GetBacklogSnapshot(ctx context.Context, stage string) (int64, bool, error) {
	val, err := r.client.Get(ctx, backlogKey(stage)).Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// ShouldSendProgressPing enforces a minimum interval between chat-bot
// progress notifications for a given submission, using SETNX with a TTL as
// the throttle window.
func (r *RedisClient) ShouldSendProgressPing(ctx context.Context, submissionID string, minInterval time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, progressKey(submissionID), 1, minInterval).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Close closes the underlying connection.
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// IncrLeaseExpiry increments the rolling count of claims recovered by the
// scheduler's expired-lease sweep, read and reset on every health-sensor
// tick (and scaled to a per-hour rate) to detect a crashing-worker storm.
func (r *RedisClient) IncrLeaseExpiry(ctx context.Context, n int64) error {
	return r.client.IncrBy(ctx, leaseExpiryKey, n).Err()
}

// TakeLeaseExpiryCount reads and resets the lease-expiry counter.
func (r *RedisClient) TakeLeaseExpiryCount(ctx context.Context) (int64, error) {
	val, err := r.client.GetDel(ctx, leaseExpiryKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

func embeddingKey(hash string) string { return "embed:query:" + hash }
func backlogKey(stage string) string  { return "backlog:" + stage }
func progressKey(id string) string    { return "progress:ping:" + id }

const leaseExpiryKey = "pipeline:lease_expiry_count"
