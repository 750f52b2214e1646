package auth

import (
	"errors"
	"strings"

	"github.com/dropDatabas3/bizdesk/internal/otp"
)

// Errores de los flujos. Los controllers los traducen a AppError.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidMobile      = errors.New("invalid mobile")
	ErrInvalidRole        = errors.New("invalid role")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrPasswordReuse      = errors.New("new password equals current")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrEmailUnverified    = errors.New("provider email not verified")
	ErrProviderDisabled   = errors.New("identity provider not configured")
	ErrInvalidIDToken     = errors.New("invalid identity token")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrRefreshExpired     = errors.New("refresh token expired")
	ErrSessionRevoked     = errors.New("session superseded")
	ErrTokenIssueFailed   = errors.New("failed to issue token")

	// Errores de código: mismos valores que otp para que errors.Is funcione en ambos sentidos.
	ErrCodeNotFound = otp.ErrNotFound
	ErrCodeExpired  = otp.ErrExpired
	ErrCodeMismatch = otp.ErrMismatch
	ErrCodeDispatch = otp.ErrDispatch
)

// PolicyError detalla por qué una password no cumple la política.
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string {
	return ErrWeakPassword.Error() + ": " + strings.Join(e.Reasons, ", ")
}

func (e *PolicyError) Is(target error) bool { return target == ErrWeakPassword }
