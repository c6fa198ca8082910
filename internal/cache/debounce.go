package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDebounce is a shared-cache debounce store. SET NX with a TTL makes
// the observe-and-mark step atomic across instances, so two app servers
// rendering the same offer to the same session still count one impression.
type RedisDebounce struct {
	client *redis.Client
	prefix string
}

// NewRedisDebounce returns a debounce store backed by the given Redis client.
func NewRedisDebounce(client *redis.Client, prefix string) *RedisDebounce {
	return &RedisDebounce{client: client, prefix: prefix}
}

// Observe reports whether an event for key should be recorded. The first
// observation inside any window wins; later ones are suppressed until the
// key expires. Redis failures report true: dropping the debounce is safer
// than dropping the event.
func (d *RedisDebounce) Observe(ctx context.Context, key string, window time.Duration) bool {
	ok, err := d.client.SetNX(ctx, d.prefix+key, 1, window).Result()
	if err != nil {
		return true
	}
	return ok
}
