package auth

import (
	"errors"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/bizdesk/internal/http/errors"
	svc "github.com/dropDatabas3/bizdesk/internal/http/services/auth"
)

// writeAuthError traduce los errores de los services auth a AppError.
func writeAuthError(w http.ResponseWriter, err error) {
	var pe *svc.PolicyError

	switch {
	case errors.As(err, &pe):
		httperrors.WriteError(w, httperrors.ErrPasswordTooWeak.WithDetail(strings.Join(pe.Reasons, ", ")))
	case errors.Is(err, svc.ErrWeakPassword):
		httperrors.WriteError(w, httperrors.ErrPasswordTooWeak)
	case errors.Is(err, svc.ErrPasswordReuse):
		httperrors.WriteError(w, httperrors.ErrPasswordReuse)

	case errors.Is(err, svc.ErrInvalidInput):
		httperrors.WriteError(w, httperrors.ErrBadRequest)
	case errors.Is(err, svc.ErrInvalidEmail):
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("email: must be a valid email address"))
	case errors.Is(err, svc.ErrInvalidMobile):
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("mobile: must be a valid phone number"))
	case errors.Is(err, svc.ErrInvalidRole):
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("role: must be one of admin, member, user"))

	case errors.Is(err, svc.ErrAccountExists):
		httperrors.WriteError(w, httperrors.ErrConflict)
	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, svc.ErrAccountNotFound):
		httperrors.WriteError(w, httperrors.ErrAccountNotFound)
	case errors.Is(err, svc.ErrAccountDisabled):
		httperrors.WriteError(w, httperrors.ErrAccountDisabled)

	case errors.Is(err, svc.ErrEmailUnverified):
		httperrors.WriteError(w, httperrors.ErrEmailUnverified)
	case errors.Is(err, svc.ErrProviderDisabled):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("identity provider sign-in is not enabled"))
	case errors.Is(err, svc.ErrInvalidIDToken):
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("identity token rejected"))

	case errors.Is(err, svc.ErrRefreshExpired):
		httperrors.WriteError(w, httperrors.ErrTokenExpired)
	case errors.Is(err, svc.ErrInvalidRefresh):
		httperrors.WriteError(w, httperrors.ErrTokenInvalid)
	case errors.Is(err, svc.ErrSessionRevoked):
		httperrors.WriteError(w, httperrors.ErrSessionRevoked)

	case errors.Is(err, svc.ErrCodeNotFound):
		httperrors.WriteError(w, httperrors.ErrCodeNotFound)
	case errors.Is(err, svc.ErrCodeExpired):
		httperrors.WriteError(w, httperrors.ErrCodeExpired)
	case errors.Is(err, svc.ErrCodeMismatch):
		httperrors.WriteError(w, httperrors.ErrCodeMismatch)
	case errors.Is(err, svc.ErrCodeDispatch):
		httperrors.WriteError(w, httperrors.ErrEmailDispatch)

	default:
		httperrors.WriteError(w, httperrors.ErrInternal.WithCause(err))
	}
}
