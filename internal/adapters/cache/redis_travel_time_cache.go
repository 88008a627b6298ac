package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
	"ttgen/internal/domain"
	"ttgen/internal/platform/obs"

	"github.com/redis/go-redis/v9"
)

// Redis backed cache of solver results, shared between concurrent runs.
type RedisTravelTimeCache struct {
	Client *redis.Client
	Prefix string
	// Zero keeps entries forever; results are deterministic per model.
	TTL time.Duration
}

func NewRedisTravelTimeCache(client *redis.Client, prefix string, ttl time.Duration) *RedisTravelTimeCache {
	return &RedisTravelTimeCache{Client: client, Prefix: prefix, TTL: ttl}
}

func (r *RedisTravelTimeCache) GetMany(
	ctx context.Context,
	keys []string,
) (_ map[string]domain.Result, err error) {
	defer obs.Time(ctx, "traveltime.redis.GetMany")(&err)

	if r.Client == nil {
		return nil, errors.New("travel time cache: redis client is nil")
	}

	uniq := uniqueKeys(keys)
	if len(uniq) == 0 {
		return map[string]domain.Result{}, nil
	}

	prefixed := make([]string, len(uniq))
	for i, k := range uniq {
		prefixed[i] = r.Prefix + k
	}

	vals, err := r.Client.MGet(ctx, prefixed...).Result()
	if err != nil {
		return nil, fmt.Errorf("get travel time cache: mget: %w", err)
	}

	out := make(map[string]domain.Result, len(uniq))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		res, err := DecodeResult([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("get travel time cache key=%q: %w", uniq[i], err)
		}
		out[uniq[i]] = res
	}

	return out, nil
}

func (r *RedisTravelTimeCache) PutMany(ctx context.Context, results map[string]domain.Result) (err error) {
	defer obs.Time(ctx, "traveltime.redis.PutMany")(&err)

	if r.Client == nil {
		return errors.New("travel time cache: redis client is nil")
	}

	if len(results) == 0 {
		return nil
	}

	pipe := r.Client.Pipeline()
	for key, res := range results {
		if key == "" {
			return errors.New("insert travel time cache: empty key")
		}
		blob, err := EncodeResult(res)
		if err != nil {
			return fmt.Errorf("insert travel time cache key=%q: %w", key, err)
		}
		pipe.Set(ctx, r.Prefix+key, blob, r.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert travel time cache: pipeline: %w", err)
	}
	return nil
}
