package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	jwtx "github.com/dropDatabas3/bizdesk/internal/jwt"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

type sessionService struct {
	*base
}

// Refresh canjea un refresh token por un par nuevo. Solo vale el último
// refresh emitido para la cuenta (fingerprint guardado); cualquier otro es
// ErrSessionRevoked.
func (s *sessionService) Refresh(ctx context.Context, refreshToken string) (sess *Session, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.session"),
		logger.Op("Refresh"),
	)
	defer func() { outcome(ctx, "refresh", "", err) }()

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrInvalidRefresh
	}
	claims, err := s.deps.Issuer.Verify(refreshToken, jwtx.KindRefresh)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return nil, ErrRefreshExpired
		}
		return nil, ErrInvalidRefresh
	}

	u, err := s.deps.Users.GetByID(ctx, claims.UserID())
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if u.RefreshFingerprint == nil ||
		subtle.ConstantTimeCompare([]byte(*u.RefreshFingerprint), []byte(jwtx.Fingerprint(refreshToken))) != 1 {
		log.Info("superseded refresh token presented", logger.UserID(u.ID))
		return nil, ErrSessionRevoked
	}
	if u.Status != repository.StatusActive {
		return nil, ErrAccountDisabled
	}
	return s.issueSession(ctx, u)
}

// Logout limpia el fingerprint: el refresh vigente deja de servir.
// El access token sigue valiendo hasta expirar.
func (s *sessionService) Logout(ctx context.Context, who repository.Principal) (err error) {
	defer func() { outcome(ctx, "logout", who.Email, err) }()

	if err := s.deps.Users.UpdateRefreshFingerprint(ctx, who.ID, nil); err != nil && !repository.IsNotFound(err) {
		return err
	}
	return nil
}

func (s *sessionService) Me(ctx context.Context, who repository.Principal) (repository.PublicUser, error) {
	u, err := s.deps.Users.GetByID(ctx, who.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return repository.PublicUser{}, ErrAccountNotFound
		}
		return repository.PublicUser{}, err
	}
	return u.Public(), nil
}
