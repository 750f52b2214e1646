package middlewares

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/http/errors"
	jwtx "github.com/dropDatabas3/bizdesk/internal/jwt"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// AccessCookie es la cookie donde viaja el access token.
const AccessCookie = "accessToken"

// TokenVerifier es lo que RequireAuth necesita del emisor de tokens.
type TokenVerifier interface {
	Verify(token string, kind jwtx.Kind) (*jwtx.Claims, error)
}

// =================================================================================
// AUTHENTICATION MIDDLEWARE
// =================================================================================

// RequireAuth resuelve la identidad del request desde la cookie accessToken
// o, si no está, desde Authorization: Bearer. La cookie tiene precedencia.
//
//	sin token      -> 401 TOKEN_MISSING
//	token vencido  -> 401 TOKEN_EXPIRED
//	cualquier otro -> 401 TOKEN_INVALID
func RequireAuth(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractAccessToken(r)
			if raw == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				errors.WriteError(w, errors.ErrTokenMissing)
				return
			}

			claims, err := v.Verify(raw, jwtx.KindAccess)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				if stderrors.Is(err, jwtx.ErrExpired) {
					errors.WriteError(w, errors.ErrTokenExpired)
					return
				}
				logger.From(r.Context()).Debug("access token rejected", logger.Err(err))
				errors.WriteError(w, errors.ErrTokenInvalid)
				return
			}

			p := repository.Principal{
				ID:    claims.UserID(),
				Email: claims.Email,
				Role:  repository.Role(claims.Role),
			}
			if p.ID == "" || !p.Role.Valid() {
				errors.WriteError(w, errors.ErrTokenInvalid)
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			if ri := getRequestInfo(ctx); ri != nil {
				ri.userID = p.ID
			}
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(p.ID)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractAccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessCookie); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value)
	}
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) > len("bearer ") && strings.EqualFold(ah[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(ah[len("bearer "):])
	}
	return ""
}
