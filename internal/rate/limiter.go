package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter responde si una clave tiene cupo en la ventana actual.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter implementa ventana fija sobre Redis (INCR + EXPIRE).
type RedisLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().Unix() / int64(l.window.Seconds())
	k := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	pipe := l.rdb.Pipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		// ante fallo de Redis dejamos pasar: el limiter no debe tumbar el login
		return true, err
	}
	return incr.Val() <= int64(l.limit), nil
}
