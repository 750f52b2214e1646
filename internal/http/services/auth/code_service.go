package auth

import (
	"context"
	"strings"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

type codeService struct {
	*base
}

// ResendCode emite un código nuevo para email. No requiere cuenta (alta en curso).
func (s *codeService) ResendCode(ctx context.Context, email string) (err error) {
	defer func() { outcome(ctx, "resend_code", email, err) }()

	email = normalizeEmail(email)
	if err := s.checkEmail(email); err != nil {
		return err
	}
	return s.issueCode(ctx, email, purposeVerify)
}

// VerifyCode consume el código. Si hay cuenta con ese email queda verificada.
func (s *codeService) VerifyCode(ctx context.Context, email, code string) (err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.code"),
		logger.Op("VerifyCode"),
	)
	defer func() { outcome(ctx, "verify_code", email, err) }()

	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrInvalidInput
	}
	if err := s.checkEmail(email); err != nil {
		return err
	}
	if err := s.deps.Codes.Verify(ctx, email, code); err != nil {
		return err
	}

	if err := s.deps.Users.SetEmailVerified(ctx, email); err != nil && !repository.IsNotFound(err) {
		log.Warn("mark email verified failed", logger.Err(err))
		return err
	}
	return nil
}
