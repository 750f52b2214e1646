package middlewares

import (
	"context"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
)

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	ctxPrincipalKey ctxKey = "principal"
	ctxRequestIDKey ctxKey = "request_id"
	ctxInfoKey      ctxKey = "request_info"
)

// requestInfo lo crea WithLogging y lo completan middlewares posteriores
// (RequireAuth corre dentro del logging y no puede devolverle contexto).
type requestInfo struct {
	userID string
}

func withRequestInfo(ctx context.Context, ri *requestInfo) context.Context {
	return context.WithValue(ctx, ctxInfoKey, ri)
}

func getRequestInfo(ctx context.Context) *requestInfo {
	ri, _ := ctx.Value(ctxInfoKey).(*requestInfo)
	return ri
}

// WithPrincipal inyecta la identidad resuelta en el contexto
func WithPrincipal(ctx context.Context, p repository.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetPrincipal obtiene la identidad del request. ok=false si RequireAuth no corrió.
func GetPrincipal(ctx context.Context) (repository.Principal, bool) {
	p, ok := ctx.Value(ctxPrincipalKey).(repository.Principal)
	return p, ok && p.ID != ""
}

// GetUserID obtiene el user ID del contexto o "".
func GetUserID(ctx context.Context) string {
	if p, ok := GetPrincipal(ctx); ok {
		return p.ID
	}
	return ""
}

// GetRequestID obtiene el request ID del contexto o "".
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}
