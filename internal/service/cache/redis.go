package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ SpotCache = (*RedisSpotCache)(nil)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisSpotCache shares spot prices across service replicas. Redis enforces the TTL.
type RedisSpotCache struct {
	cli    redis.Cmdable
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

func NewRedisSpotCache(cli redis.Cmdable, prefix string, ttl time.Duration) *RedisSpotCache {
	return &RedisSpotCache{cli: cli, prefix: prefix, ttl: ttl, now: time.Now}
}

func (r *RedisSpotCache) GetSpot(ctx context.Context, productID int64) (SpotEntry, bool, error) {
	b, err := r.cli.Get(ctx, spotKey(r.prefix, productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return SpotEntry{}, false, nil
		}
		return SpotEntry{}, false, fmt.Errorf("redis get spot: %w", err)
	}
	var e SpotEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return SpotEntry{}, false, fmt.Errorf("decode spot: %w", err)
	}
	return e, true, nil
}

func (r *RedisSpotCache) SetSpot(ctx context.Context, productID int64, e SpotEntry) error {
	if e.FetchedAt.IsZero() {
		e.FetchedAt = r.now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode spot: %w", err)
	}
	if err := r.cli.Set(ctx, spotKey(r.prefix, productID), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set spot: %w", err)
	}
	return nil
}
