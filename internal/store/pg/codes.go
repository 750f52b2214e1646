package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
)

type CodeRepo struct {
	db DB
}

func NewCodeRepo(db DB) *CodeRepo { return &CodeRepo{db: db} }

var _ repository.CodeRepository = (*CodeRepo)(nil)

func (r *CodeRepo) Upsert(ctx context.Context, c repository.VerificationCode) error {
	const q = `
		INSERT INTO verification_code (email, code, expires_at, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = now()
	`
	_, err := r.db.Exec(ctx, q, c.Email, c.Code, c.ExpiresAt.UTC())
	return mapErr("upsert_code", err)
}

// Consume borra el registro sólo si email, código y vigencia coinciden en la
// misma sentencia. Si no borró nada, diagnostica el motivo con una lectura.
func (r *CodeRepo) Consume(ctx context.Context, email, code string, now time.Time) error {
	const del = `
		DELETE FROM verification_code
		WHERE email = $1 AND code = $2 AND expires_at > $3
		RETURNING email
	`
	var got string
	err := r.db.QueryRow(ctx, del, email, code, now.UTC()).Scan(&got)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return mapErr("consume_code", err)
	}

	var expiresAt time.Time
	err = r.db.QueryRow(ctx,
		`SELECT expires_at FROM verification_code WHERE email = $1`, email,
	).Scan(&expiresAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return repository.ErrCodeNotFound
	case err != nil:
		return mapErr("diagnose_code", err)
	case !now.Before(expiresAt):
		return repository.ErrCodeExpired
	default:
		return repository.ErrCodeMismatch
	}
}

func (r *CodeRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM verification_code WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, mapErr("delete_expired_codes", err)
	}
	return int(tag.RowsAffected()), nil
}
