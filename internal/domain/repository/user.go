package repository

import (
	"context"
	"time"
)

// Role es la categoría cerrada que gobierna qué puede hacer una cuenta.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleUser   Role = "user"
)

// Valid reporta si r pertenece a la enumeración.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleUser:
		return true
	}
	return false
}

// Status de la cuenta.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User es el registro de identidad de una cuenta.
type User struct {
	ID              string
	Email           string
	Name            string
	Mobile          *string
	AvatarURL       string
	PasswordHash    *string
	ProviderSubject *string
	EmailVerified   bool
	Role            Role
	Status          Status
	// RefreshFingerprint es el hash del refresh token vigente.
	RefreshFingerprint *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasAuthPath reporta si la cuenta tiene al menos un medio de autenticación.
func (u *User) HasAuthPath() bool {
	return (u.PasswordHash != nil && *u.PasswordHash != "") ||
		(u.ProviderSubject != nil && *u.ProviderSubject != "")
}

// PublicUser es la proyección de User apta para salir por la API.
// No tiene campos para hash de password ni fingerprint de refresh.
type PublicUser struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	Mobile        string    `json:"mobile,omitempty"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	Role          Role      `json:"role"`
	Status        Status    `json:"status"`
	HasPassword   bool      `json:"hasPassword"`
	Linked        bool      `json:"linkedProvider"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Public construye la vista pública.
func (u *User) Public() PublicUser {
	p := PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		AvatarURL:     u.AvatarURL,
		EmailVerified: u.EmailVerified,
		Role:          u.Role,
		Status:        u.Status,
		HasPassword:   u.PasswordHash != nil && *u.PasswordHash != "",
		Linked:        u.ProviderSubject != nil && *u.ProviderSubject != "",
		CreatedAt:     u.CreatedAt,
	}
	if u.Mobile != nil {
		p.Mobile = *u.Mobile
	}
	return p
}

// UserRepository define operaciones sobre cuentas.
// Todas las búsquedas son por índice único; ErrNotFound si no hay fila.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetBySubject(ctx context.Context, subject string) (*User, error)
	GetByMobile(ctx context.Context, mobile string) (*User, error)

	// Create persiste la cuenta. Si u.ID está vacío se genera.
	// Retorna ErrConflict si email, subject o móvil ya existen, y
	// ErrInvalidInput si la cuenta no tiene ningún medio de autenticación.
	Create(ctx context.Context, u *User) error

	// UpdateRefreshFingerprint sobrescribe el fingerprint (nil lo limpia).
	UpdateRefreshFingerprint(ctx context.Context, id string, fp *string) error

	UpdatePasswordHash(ctx context.Context, id, hash string) error

	SetEmailVerified(ctx context.Context, email string) error

	// Ping verifica conectividad (readiness).
	Ping(ctx context.Context) error
}
