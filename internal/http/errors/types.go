// Package errors define el formato estándar de errores de la API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa original, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError intenta convertir un error genérico en un AppError.
// Si no lo es, devuelve un error interno genérico conservando la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail devuelve una COPIA con detalle, para no mutar los errores base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// 400
var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "The request is malformed or missing required fields.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrValidation = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "One or more fields are invalid.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrPasswordTooWeak = &AppError{
		Code:       "PASSWORD_TOO_WEAK",
		Message:    "The password does not meet the security policy.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrPasswordReuse = &AppError{
		Code:       "PASSWORD_REUSE",
		Message:    "The new password must differ from the current one.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrCodeMismatch = &AppError{
		Code:       "CODE_MISMATCH",
		Message:    "The verification code is incorrect.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrCodeExpired = &AppError{
		Code:       "CODE_EXPIRED",
		Message:    "The verification code has expired. Request a new one.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBodyTooLarge = &AppError{
		Code:       "BODY_TOO_LARGE",
		Message:    "The request body exceeds the maximum size.",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
)

// 401
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication is required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrInvalidCredentials = &AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Invalid email or password.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenMissing = &AppError{
		Code:       "TOKEN_MISSING",
		Message:    "Missing token.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenExpired = &AppError{
		Code:       "TOKEN_EXPIRED",
		Message:    "Your session has expired, please log in again.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrTokenInvalid = &AppError{
		Code:       "TOKEN_INVALID",
		Message:    "Invalid token.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrSessionRevoked = &AppError{
		Code:       "SESSION_REVOKED",
		Message:    "This session is no longer valid, please log in again.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// 403
var (
	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "You do not have permission to perform this action.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrEmailUnverified = &AppError{
		Code:       "EMAIL_UNVERIFIED",
		Message:    "The identity provider reports this email as not verified.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrAccountDisabled = &AppError{
		Code:       "ACCOUNT_DISABLED",
		Message:    "This account is disabled.",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404
var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "The requested resource was not found.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrAccountNotFound = &AppError{
		Code:       "ACCOUNT_NOT_FOUND",
		Message:    "No account found, please sign up.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrCodeNotFound = &AppError{
		Code:       "CODE_NOT_FOUND",
		Message:    "No pending verification code for this email.",
		HTTPStatus: http.StatusNotFound,
	}
)

// 405 / 409 / 429
var (
	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "HTTP method not allowed for this resource.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrConflict = &AppError{
		Code:       "CONFLICT",
		Message:    "An account with these details already exists.",
		HTTPStatus: http.StatusConflict,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests. Try again later.",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// 5xx
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An internal error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrEmailDispatch = &AppError{
		Code:       "EMAIL_DISPATCH_FAILED",
		Message:    "We could not send the verification email. Try again later.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "The service is temporarily unavailable.",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)
