package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

type signupService struct {
	*base
}

// Signup corre el alta según la variante:
//
//	PasswordSignupStart    -> código enviado, sin cuenta
//	PasswordSignupComplete -> verifica código, crea cuenta, emite sesión
//	ProviderSignup         -> verifica ID token, crea cuenta, emite sesión
//
// Toda validación ocurre antes de tocar el store.
func (s *signupService) Signup(ctx context.Context, req SignupRequest) (res *SignupResult, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.signup"),
		logger.Op("Signup"),
	)
	defer func() { outcome(ctx, "signup", subjectOf(req), err) }()

	switch r := req.(type) {
	case PasswordSignupStart:
		email, mobile, err := s.validatePassword(r.Email, r.Password, r.Mobile)
		if err != nil {
			return nil, err
		}
		if err := s.ensureAvailable(ctx, email, "", mobile); err != nil {
			return nil, err
		}
		if err := s.issueCode(ctx, email, purposeSignup); err != nil {
			log.Warn("signup code not issued", logger.Err(err))
			return nil, err
		}
		log.Debug("signup code sent")
		return &SignupResult{CodeSent: true}, nil

	case PasswordSignupComplete:
		email, mobile, err := s.validatePassword(r.Email, r.Password, r.Mobile)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(r.Code) == "" {
			return nil, ErrInvalidInput
		}
		// antes de consumir el código, para no quemarlo en un conflicto
		if err := s.ensureAvailable(ctx, email, "", mobile); err != nil {
			return nil, err
		}
		if err := s.deps.Codes.Verify(ctx, email, strings.TrimSpace(r.Code)); err != nil {
			log.Debug("signup code rejected", logger.Err(err))
			return nil, err
		}
		hash, err := s.hash(r.Password)
		if err != nil {
			return nil, err
		}
		u := &repository.User{
			Email:         email,
			Name:          strings.TrimSpace(r.Name),
			Mobile:        strPtr(mobile),
			PasswordHash:  &hash,
			EmailVerified: true,
			Role:          repository.RoleUser,
			Status:        repository.StatusActive,
		}
		return s.finish(ctx, u)

	case ProviderSignup:
		mobile := strings.TrimSpace(r.Mobile)
		if err := s.checkMobile(mobile); err != nil {
			return nil, err
		}
		claim, err := s.verifyIdentity(ctx, r.IDToken)
		if err != nil {
			return nil, err
		}
		if err := s.ensureAvailable(ctx, claim.Email, claim.Subject, mobile); err != nil {
			return nil, err
		}
		u := &repository.User{
			Email:           claim.Email,
			Name:            claim.Name,
			Mobile:          strPtr(mobile),
			AvatarURL:       claim.Picture,
			ProviderSubject: &claim.Subject,
			EmailVerified:   true,
			Role:            repository.RoleUser,
			Status:          repository.StatusActive,
		}
		return s.finish(ctx, u)

	default:
		return nil, fmt.Errorf("%w: unsupported signup variant %T", ErrInvalidInput, req)
	}
}

// validatePassword valida email, password y móvil; devuelve los valores normalizados.
func (s *signupService) validatePassword(rawEmail, plain, rawMobile string) (email, mobile string, err error) {
	email = normalizeEmail(rawEmail)
	mobile = strings.TrimSpace(rawMobile)
	if email == "" || plain == "" {
		return "", "", ErrInvalidInput
	}
	if err := s.checkEmail(email); err != nil {
		return "", "", err
	}
	if err := s.checkPassword(plain); err != nil {
		return "", "", err
	}
	if err := s.checkMobile(mobile); err != nil {
		return "", "", err
	}
	return email, mobile, nil
}

func (s *signupService) finish(ctx context.Context, u *repository.User) (*SignupResult, error) {
	if err := s.create(ctx, u); err != nil {
		return nil, err
	}
	logger.From(ctx).Info("account created",
		logger.Component("auth.signup"), logger.UserID(u.ID), logger.Role(string(u.Role)))

	sess, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	return &SignupResult{Session: sess}, nil
}
