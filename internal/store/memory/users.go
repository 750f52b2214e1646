// Package memory implementa los repositorios en memoria (dev y tests).
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
)

// UserRepo guarda cuentas en mapas indexados igual que los índices únicos de pg.
type UserRepo struct {
	mu        sync.RWMutex
	byID      map[string]*repository.User
	byEmail   map[string]string
	bySubject map[string]string
	byMobile  map[string]string
	now       func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:      map[string]*repository.User{},
		byEmail:   map[string]string{},
		bySubject: map[string]string{},
		byMobile:  map[string]string{},
		now:       time.Now,
	}
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByID(_ context.Context, id string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyOf(id)
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	return r.lookup(r.byEmail, strings.ToLower(email))
}

func (r *UserRepo) GetBySubject(_ context.Context, subject string) (*repository.User, error) {
	return r.lookup(r.bySubject, subject)
}

func (r *UserRepo) GetByMobile(_ context.Context, mobile string) (*repository.User, error) {
	return r.lookup(r.byMobile, mobile)
}

func (r *UserRepo) lookup(idx map[string]string, key string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := idx[key]
	if !ok || key == "" {
		return nil, repository.ErrNotFound
	}
	return r.copyOf(id)
}

// copyOf retorna una copia para que el llamador no mute el estado interno.
// Requiere el lock tomado.
func (r *UserRepo) copyOf(id string) (*repository.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepo) Create(_ context.Context, u *repository.User) error {
	if u == nil || u.Email == "" || !u.HasAuthPath() {
		return repository.ErrInvalidInput
	}
	email := strings.ToLower(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byEmail[email]; dup {
		return repository.ErrConflict
	}
	if u.ProviderSubject != nil && *u.ProviderSubject != "" {
		if _, dup := r.bySubject[*u.ProviderSubject]; dup {
			return repository.ErrConflict
		}
	}
	if u.Mobile != nil && *u.Mobile != "" {
		if _, dup := r.byMobile[*u.Mobile]; dup {
			return repository.ErrConflict
		}
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = repository.RoleUser
	}
	if u.Status == "" {
		u.Status = repository.StatusActive
	}
	now := r.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	cp := *u
	r.byID[cp.ID] = &cp
	r.byEmail[email] = cp.ID
	if cp.ProviderSubject != nil && *cp.ProviderSubject != "" {
		r.bySubject[*cp.ProviderSubject] = cp.ID
	}
	if cp.Mobile != nil && *cp.Mobile != "" {
		r.byMobile[*cp.Mobile] = cp.ID
	}
	return nil
}

func (r *UserRepo) UpdateRefreshFingerprint(_ context.Context, id string, fp *string) error {
	return r.mutate(id, func(u *repository.User) {
		if fp == nil {
			u.RefreshFingerprint = nil
			return
		}
		v := *fp
		u.RefreshFingerprint = &v
	})
}

func (r *UserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	if hash == "" {
		return repository.ErrInvalidInput
	}
	return r.mutate(id, func(u *repository.User) { u.PasswordHash = &hash })
}

func (r *UserRepo) SetEmailVerified(_ context.Context, email string) error {
	r.mu.RLock()
	id, ok := r.byEmail[strings.ToLower(email)]
	r.mu.RUnlock()
	if !ok {
		return repository.ErrNotFound
	}
	return r.mutate(id, func(u *repository.User) { u.EmailVerified = true })
}

func (r *UserRepo) mutate(id string, fn func(*repository.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = r.now().UTC()
	return nil
}

func (r *UserRepo) Ping(context.Context) error { return nil }
