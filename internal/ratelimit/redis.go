package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:lead:"

// RedisStore keeps window records in Redis so the submission cap holds
// across server instances. Expiry replaces the periodic sweep: every record
// carries a TTL of one window, refreshed on admission.
//
// The read-check-write cycle is not transactional across instances; two
// replicas racing the same key can each admit one attempt at the cap
// boundary. That matches the best-effort posture of the limiter.
type RedisStore struct {
	client *redis.Client
	cfg    Config
	now    func() time.Time
}

// RedisOption customizes a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisClock overrides the store's time source for tests.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) { s.now = now }
}

// NewRedisStore creates a Redis-backed limiter store.
func NewRedisStore(client *redis.Client, cfg Config, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		cfg:    cfg.withDefaults(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check applies the admission ladder for key against Redis state.
func (s *RedisStore) Check(ctx context.Context, key string) (Decision, error) {
	now := s.now()
	rkey := redisKeyPrefix + key

	vals, err := s.client.HGetAll(ctx, rkey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: read %s: %w", rkey, err)
	}

	var count int
	var lastAttempt time.Time
	if len(vals) > 0 {
		count, _ = strconv.Atoi(vals["count"])
		if ms, perr := strconv.ParseInt(vals["last"], 10, 64); perr == nil {
			lastAttempt = time.UnixMilli(ms)
		}
	}

	d, newCount, persist := decide(s.cfg, count, lastAttempt, now)
	if !persist {
		return d, nil
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, rkey, "count", newCount, "last", now.UnixMilli())
	pipe.Expire(ctx, rkey, s.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("ratelimit: write %s: %w", rkey, err)
	}
	return d, nil
}
