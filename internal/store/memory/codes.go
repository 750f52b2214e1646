package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
)

// expiredGrace mantiene el registro vencido en cache un rato para reportar
// ErrCodeExpired; después el janitor de go-cache lo descarta.
const expiredGrace = time.Hour

// CodeRepo guarda códigos en go-cache. El mutex hace atómico el
// compare-and-delete de Consume.
type CodeRepo struct {
	mu sync.Mutex
	c  *gocache.Cache
}

func NewCodeRepo() *CodeRepo {
	return &CodeRepo{c: gocache.New(gocache.NoExpiration, 5*time.Minute)}
}

var _ repository.CodeRepository = (*CodeRepo)(nil)

func (r *CodeRepo) Upsert(_ context.Context, vc repository.VerificationCode) error {
	ttl := vc.Lifetime() + expiredGrace
	if ttl <= 0 {
		ttl = time.Second
	}
	r.mu.Lock()
	r.c.Set(vc.Email, vc, ttl)
	r.mu.Unlock()
	return nil
}

func (r *CodeRepo) Consume(_ context.Context, email, code string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.c.Get(email)
	if !ok {
		return repository.ErrCodeNotFound
	}
	vc := v.(repository.VerificationCode)
	if !now.Before(vc.ExpiresAt) {
		return repository.ErrCodeExpired
	}
	if vc.Code != code {
		return repository.ErrCodeMismatch
	}
	r.c.Delete(email)
	return nil
}

func (r *CodeRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for k, it := range r.c.Items() {
		vc, ok := it.Object.(repository.VerificationCode)
		if ok && !now.Before(vc.ExpiresAt) {
			r.c.Delete(k)
			n++
		}
	}
	return n, nil
}
