package rate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Factory crea un Limiter para una combinación limit+window.
type Factory func(limit int, window time.Duration) Limiter

// Pool permite usar diferentes límites por endpoint reutilizando
// un limiter por configuración.
type Pool struct {
	factory Factory
	mu      sync.RWMutex
	// Cache de limiters por configuración
	limiters map[string]Limiter
}

func NewPool(f Factory) *Pool {
	return &Pool{factory: f, limiters: make(map[string]Limiter)}
}

// AllowWithLimits aplica limit/window a key.
func (p *Pool) AllowWithLimits(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	return p.Get(limit, window).Allow(ctx, key)
}

// Get retorna (o crea) el limiter para limit+window.
func (p *Pool) Get(limit int, window time.Duration) Limiter {
	configKey := fmt.Sprintf("%d:%s", limit, window.String())

	p.mu.RLock()
	l, ok := p.limiters[configKey]
	p.mu.RUnlock()
	if ok {
		return l
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok = p.limiters[configKey]; !ok {
		l = p.factory(limit, window)
		p.limiters[configKey] = l
	}
	return l
}

// FactoryFor arma la Factory según backend ("redis" | "memory").
func FactoryFor(backend string, client rdb.UniversalClient, prefix string) (Factory, error) {
	switch backend {
	case "redis":
		if client == nil {
			return nil, errors.New("rate: redis backend without client")
		}
		return func(limit int, window time.Duration) Limiter {
			return NewRedisLimiter(client, prefix+"rl:", limit, window)
		}, nil
	case "memory", "":
		return func(limit int, window time.Duration) Limiter {
			return NewMemoryLimiter(limit, window)
		}, nil
	}
	return nil, fmt.Errorf("rate: unknown backend %q", backend)
}
