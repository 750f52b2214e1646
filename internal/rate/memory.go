package rate

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter es la variante en proceso del fixed window, para un solo nodo.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration

	mu   sync.Mutex
	hits *gocache.Cache
	now  func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:    int64(max),
		Window: window,
		hits:   gocache.New(window, 2*window),
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now()
	winStart := now.UTC().Truncate(l.Window)
	k := fmt.Sprintf("%s:%d", key, winStart.Unix())
	ttl := winStart.Add(l.Window).Sub(now)

	l.mu.Lock()
	var hits int64 = 1
	if v, ok := l.hits.Get(k); ok {
		hits = v.(int64) + 1
	}
	l.hits.Set(k, hits, ttl)
	l.mu.Unlock()

	return buildResult(hits, l.Max, ttl, l.Window), nil
}
