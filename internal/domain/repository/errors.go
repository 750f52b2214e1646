package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica una violación de unicidad (email, subject o móvil).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCodeNotFound: no hay código vivo para el email.
	ErrCodeNotFound = errors.New("verification code not found")

	// ErrCodeExpired: el código existe pero now >= expires_at.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrCodeMismatch: el código existe, no expiró, pero no coincide.
	ErrCodeMismatch = errors.New("verification code mismatch")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
