package repository

import (
	"context"
	"time"
)

// VerificationCode es el código de un solo uso vivo para un email.
// A lo sumo existe uno por email.
type VerificationCode struct {
	Email     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Lifetime es la vida del código medida desde IssuedAt con el mismo reloj
// que ExpiresAt. Sin IssuedAt cae al reloj de pared.
func (c VerificationCode) Lifetime() time.Duration {
	if c.IssuedAt.IsZero() {
		return time.Until(c.ExpiresAt)
	}
	return c.ExpiresAt.Sub(c.IssuedAt)
}

// CodeRepository persiste códigos de verificación.
type CodeRepository interface {
	// Upsert reemplaza cualquier código previo del email en una sola operación.
	Upsert(ctx context.Context, c VerificationCode) error

	// Consume compara y borra en una operación atómica. Sólo el llamador que
	// borra el registro obtiene nil. Errores: ErrCodeNotFound, ErrCodeExpired
	// (now >= ExpiresAt) y ErrCodeMismatch.
	Consume(ctx context.Context, email, code string, now time.Time) error

	// DeleteExpired borra códigos vencidos y retorna cuántos borró.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
