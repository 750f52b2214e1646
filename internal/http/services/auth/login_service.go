package auth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
	"github.com/dropDatabas3/bizdesk/internal/security/password"
)

type loginService struct {
	*base
}

// Login nunca crea cuentas. Con password, email desconocido, cuenta sin
// password y password incorrecta devuelven el mismo ErrInvalidCredentials.
func (s *loginService) Login(ctx context.Context, req LoginRequest) (sess *Session, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
	)
	defer func() { outcome(ctx, "login", subjectOf(req), err) }()

	var u *repository.User
	switch r := req.(type) {
	case PasswordLogin:
		u, err = s.passwordUser(ctx, r)
		if err != nil {
			log.Debug("password login rejected", logger.Err(err))
			return nil, err
		}

	case ProviderLogin:
		claim, err := s.verifyIdentity(ctx, r.IDToken)
		if err != nil {
			return nil, err
		}
		// sin vinculación automática por email: solo cuentas creadas con este subject
		u, err = s.deps.Users.GetBySubject(ctx, claim.Subject)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: unsupported login variant %T", ErrInvalidInput, req)
	}

	if u.Status != repository.StatusActive {
		log.Info("login on inactive account", logger.UserID(u.ID))
		return nil, ErrAccountDisabled
	}
	return s.issueSession(ctx, u)
}

func (s *loginService) passwordUser(ctx context.Context, r PasswordLogin) (*repository.User, error) {
	email := normalizeEmail(r.Email)
	if email == "" || r.Password == "" {
		return nil, ErrInvalidInput
	}
	if err := s.checkEmail(email); err != nil {
		return nil, err
	}

	u, err := s.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			s.burnVerify(r.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == nil || *u.PasswordHash == "" {
		s.burnVerify(r.Password)
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(r.Password, *u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	// hashes legacy (bcrypt) o con parámetros viejos se actualizan en el login
	if password.NeedsRehash(s.deps.Hashing, *u.PasswordHash) {
		if h, err := s.hash(r.Password); err == nil {
			if err := s.deps.Users.UpdatePasswordHash(ctx, u.ID, h); err != nil {
				logger.From(ctx).Warn("password rehash failed", logger.UserID(u.ID), logger.Err(err))
			} else {
				u.PasswordHash = &h
			}
		}
	}
	return u, nil
}
