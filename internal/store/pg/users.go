package pg

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
)

const userColumns = `id, email, name, mobile, avatar_url, password_hash, provider_subject,
	email_verified, role, status, refresh_fingerprint, created_at, updated_at`

type UserRepo struct {
	db  DB
	now func() time.Time
}

func NewUserRepo(db DB) *UserRepo {
	return &UserRepo{db: db, now: time.Now}
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}
	return r.getOne(ctx, "get_by_id", `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	return r.getOne(ctx, "get_by_email", `SELECT `+userColumns+` FROM app_user WHERE lower(email) = lower($1)`, email)
}

func (r *UserRepo) GetBySubject(ctx context.Context, subject string) (*repository.User, error) {
	return r.getOne(ctx, "get_by_subject", `SELECT `+userColumns+` FROM app_user WHERE provider_subject = $1`, subject)
}

func (r *UserRepo) GetByMobile(ctx context.Context, mobile string) (*repository.User, error) {
	return r.getOne(ctx, "get_by_mobile", `SELECT `+userColumns+` FROM app_user WHERE mobile = $1`, mobile)
}

func (r *UserRepo) getOne(ctx context.Context, op, q string, arg any) (*repository.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, q, arg))
	if err != nil {
		return nil, mapErr(op, err)
	}
	return u, nil
}

func scanUser(row pgx.Row) (*repository.User, error) {
	var (
		u           repository.User
		role, state string
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Mobile, &u.AvatarURL, &u.PasswordHash, &u.ProviderSubject,
		&u.EmailVerified, &role, &state, &u.RefreshFingerprint, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = repository.Role(role)
	u.Status = repository.Status(state)
	return &u, nil
}

// Create inserta la cuenta en un único INSERT; la unicidad la resuelven los
// índices únicos, así dos altas concurrentes no pueden ganar ambas.
func (r *UserRepo) Create(ctx context.Context, u *repository.User) error {
	if u == nil || u.Email == "" || !u.HasAuthPath() {
		return repository.ErrInvalidInput
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

	const q = `
		INSERT INTO app_user (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.Exec(ctx, q,
		u.ID, u.Email, u.Name, u.Mobile, u.AvatarURL, u.PasswordHash, u.ProviderSubject,
		u.EmailVerified, string(u.Role), string(u.Status), u.RefreshFingerprint, u.CreatedAt, u.UpdatedAt,
	)
	return mapErr("create_user", err)
}

func (r *UserRepo) UpdateRefreshFingerprint(ctx context.Context, id string, fp *string) error {
	return r.updateOne(ctx, "update_refresh_fingerprint",
		`UPDATE app_user SET refresh_fingerprint = $2, updated_at = $3 WHERE id = $1`, id, fp)
}

func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	if hash == "" {
		return repository.ErrInvalidInput
	}
	return r.updateOne(ctx, "update_password_hash",
		`UPDATE app_user SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash)
}

func (r *UserRepo) SetEmailVerified(ctx context.Context, email string) error {
	return r.updateOne(ctx, "set_email_verified",
		`UPDATE app_user SET email_verified = true, updated_at = $2 WHERE lower(email) = lower($1)`, email)
}

// updateOne agrega updated_at como último parámetro y exige una fila afectada.
func (r *UserRepo) updateOne(ctx context.Context, op, q string, args ...any) error {
	tag, err := r.db.Exec(ctx, q, append(args, r.now().UTC())...)
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
