// Package router arma las rutas HTTP del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	httpmetrics "github.com/dropDatabas3/bizdesk/internal/http"
	authctrl "github.com/dropDatabas3/bizdesk/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/bizdesk/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/bizdesk/internal/http/errors"
	mw "github.com/dropDatabas3/bizdesk/internal/http/middlewares"
	"github.com/dropDatabas3/bizdesk/internal/rate"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Auth   *authctrl.Controllers
	Health *healthctrl.HealthController

	// Verifier valida access tokens en las rutas autenticadas.
	Verifier mw.TokenVerifier

	// Limiter es opcional; nil desactiva el rate limit de las rutas públicas.
	Limiter rate.Limiter

	// TrustedProxies: peers cuyo X-Forwarded-For cuenta para la clave del rate limit.
	TrustedProxies mw.TrustedProxies

	// Metrics se monta en /metrics si no es nil.
	Metrics http.Handler
}

// New retorna el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.Std(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
	)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// ─── Infra (sin no-store ni rate limit) ───
	r.Group(func(r chi.Router) {
		if d.Health != nil {
			r.Get("/healthz", d.Health.Healthz)
			r.Get("/readyz", d.Health.Readyz)
		}
		if d.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", d.Metrics)
		}
	})

	if d.Auth == nil {
		return r
	}
	a := d.Auth
	requireAuth := mw.RequireAuth(d.Verifier)

	r.Group(func(r chi.Router) {
		r.Use(mw.Std(mw.WithNoStore())...)
		r.Use(httpmetrics.WithMetrics)
		r.Use(mw.Std(mw.WithLogging())...)

		// ─── Públicas (rate limited por IP y ruta) ───
		r.Group(func(r chi.Router) {
			r.Use(mw.Std(mw.WithRateLimit(mw.RateLimitConfig{
				Limiter:        d.Limiter,
				TrustedProxies: d.TrustedProxies,
			}))...)

			r.Post("/signup", a.Signup.Signup)
			r.Post("/login", a.Login.Login)
			r.Post("/forgot-password", a.Password.ForgotPassword)
			r.Post("/resend-otp", a.Code.Resend)
			r.Post("/verify-otp", a.Code.Verify)
			r.Post("/refresh", a.Session.Refresh)
		})

		// ─── Autenticadas ───
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/change-password", a.Password.ChangePassword)
			r.Post("/logout", a.Session.Logout)
			r.Get("/me", a.Session.Me)

			r.With(mw.RequireRole(repository.RoleAdmin)).Post("/members", a.Member.Create)
		})
	})

	return r
}
