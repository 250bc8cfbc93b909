// Package cache stores fetched catalog pages in Redis, so that repeated
// lookups of the same page do not hit the site.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultPrefix = "flibusta:page:"

// Redis is a page cache backed by a Redis server.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to the Redis server at the given address; pages expire
// after the given duration (zero keeps them forever).
func NewRedis(addr string, ttl time.Duration) *Redis {
	return NewRedisFromClient(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

func NewRedisFromClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: DefaultPrefix, ttl: ttl}
}

func (r *Redis) WithPrefix(prefix string) *Redis {
	r.prefix = prefix
	return r
}

// Ping checks that the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not reach redis: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Get returns the cached page for the URL, and whether it was present.
func (r *Redis) Get(ctx context.Context, url string) (string, bool, error) {
	page, err := r.client.Get(ctx, r.prefix+url).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("could not read %s: %w", url, err)
	}
	return page, true, nil
}

func (r *Redis) Set(ctx context.Context, url string, page string) error {
	if err := r.client.Set(ctx, r.prefix+url, page, r.ttl).Err(); err != nil {
		return fmt.Errorf("could not store %s: %w", url, err)
	}
	return nil
}
