package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
	"github.com/dropDatabas3/bizdesk/internal/security/password"
)

type passwordService struct {
	*base
}

// ForgotPassword:
//
//	ForgotStart    -> emite código solo si la cuenta existe; responde igual en ambos casos
//	ForgotComplete -> consume el código y reemplaza el hash; no inicia sesión
func (s *passwordService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.password"),
		logger.Op("ForgotPassword"),
	)
	defer func() { outcome(ctx, "forgot_password", subjectOf(req), err) }()

	switch r := req.(type) {
	case ForgotStart:
		email := normalizeEmail(r.Email)
		if err := s.checkEmail(email); err != nil {
			return err
		}
		u, err := s.deps.Users.GetByEmail(ctx, email)
		if err != nil {
			if repository.IsNotFound(err) {
				log.Debug("reset requested for unknown email")
				return nil
			}
			return err
		}
		if u.Status != repository.StatusActive {
			log.Info("reset requested for inactive account", logger.UserID(u.ID))
			return nil
		}
		return s.issueCode(ctx, email, purposeReset)

	case ForgotComplete:
		email := normalizeEmail(r.Email)
		code := strings.TrimSpace(r.Code)
		if code == "" || r.NewPassword == "" {
			return ErrInvalidInput
		}
		if err := s.checkEmail(email); err != nil {
			return err
		}
		if err := s.checkPassword(r.NewPassword); err != nil {
			return err
		}
		u, err := s.deps.Users.GetByEmail(ctx, email)
		if err != nil {
			if repository.IsNotFound(err) {
				// mismo error que un código inexistente
				return ErrCodeNotFound
			}
			return err
		}
		if err := s.deps.Codes.Verify(ctx, email, code); err != nil {
			log.Debug("reset code rejected", logger.Err(err))
			return err
		}
		hash, err := s.hash(r.NewPassword)
		if err != nil {
			return err
		}
		if err := s.deps.Users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		// el reset corta la sesión vigente
		if err := s.deps.Users.UpdateRefreshFingerprint(ctx, u.ID, nil); err != nil {
			return fmt.Errorf("clear refresh fingerprint: %w", err)
		}
		if !u.EmailVerified {
			if err := s.deps.Users.SetEmailVerified(ctx, email); err != nil {
				log.Warn("mark email verified failed", logger.Err(err))
			}
		}
		log.Info("password reset", logger.UserID(u.ID))
		return nil

	default:
		return fmt.Errorf("%w: unsupported forgot-password variant %T", ErrInvalidInput, req)
	}
}

// ChangePassword exige la password actual, que la nueva sea distinta y que cumpla la política.
func (s *passwordService) ChangePassword(ctx context.Context, who repository.Principal, current, next string) (err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.password"),
		logger.Op("ChangePassword"),
		logger.UserID(who.ID),
	)
	defer func() { outcome(ctx, "change_password", who.Email, err) }()

	if current == "" || next == "" {
		return ErrInvalidInput
	}
	u, err := s.deps.Users.GetByID(ctx, who.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrInvalidCredentials
		}
		return err
	}
	if u.PasswordHash == nil || !password.Verify(current, *u.PasswordHash) {
		return ErrInvalidCredentials
	}
	if next == current {
		return ErrPasswordReuse
	}
	if err := s.checkPassword(next); err != nil {
		return err
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	if err := s.deps.Users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	log.Info("password changed")
	return nil
}
