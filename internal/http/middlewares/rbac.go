package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/http/errors"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// RequireRole deja pasar solo si el rol del principal está en roles.
// Va siempre después de RequireAuth; no verifica tokens.
func RequireRole(roles ...repository.Role) Middleware {
	allowed := make(map[repository.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			if _, ok := allowed[p.Role]; !ok {
				logger.From(r.Context()).Info("role not allowed",
					logger.Component("rbac"), logger.Role(string(p.Role)))
				errors.WriteError(w, errors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
