// Package rate implementa limitación de requests por ventana fija.
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE)
type RedisLimiter struct {
	Client rdb.UniversalClient
	Prefix string
	Max    int64
	Window time.Duration
	now    func() time.Time
}

func NewRedisLimiter(client rdb.UniversalClient, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	winStart := l.now().UTC().Truncate(l.Window)
	redisKey := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	// set expiry on first hit
	window := ttl.Val()
	if incr.Val() == 1 || window < 0 {
		if err := l.Client.Expire(ctx, redisKey, l.Window).Err(); err != nil {
			return Result{}, err
		}
		window = l.Window
	}

	return buildResult(incr.Val(), l.Max, window, l.Window), nil
}

func buildResult(hits, max int64, ttl, window time.Duration) Result {
	remaining := max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		// Retry after: resto de la ventana
		res.RetryAfter = ttl
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Duration(math.Ceil(window.Seconds())) * time.Second
		}
	}
	return res
}
