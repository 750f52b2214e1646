package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/bizdesk/internal/http/errors"
	"github.com/dropDatabas3/bizdesk/internal/validation"
)

// DefaultMaxBody es el límite de body para endpoints de auth.
const DefaultMaxBody = 64 * 1024

// ReadJSON decodifica el body (máx maxBytes) y valida los tags `validate`.
// Si falla ya escribió la respuesta y retorna false.
func ReadJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) bool {
	if ct := strings.ToLower(r.Header.Get("Content-Type")); ct != "" && !strings.Contains(ct, "application/json") {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("Content-Type must be application/json"))
		return false
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		switch {
		case errors.As(err, &mbe):
			httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
		case errors.Is(err, io.EOF):
			httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("empty body"))
		default:
			httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		}
		return false
	}

	if err := validation.Struct(v); err != nil {
		var fe *validation.FieldErrors
		if errors.As(err, &fe) {
			httperrors.WriteError(w, httperrors.ErrValidation.WithDetail(fe.Error()))
			return false
		}
		httperrors.WriteError(w, httperrors.ErrBadRequest)
		return false
	}
	return true
}

// WriteJSON escribe v con status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
