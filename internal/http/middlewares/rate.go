package middlewares

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dropDatabas3/bizdesk/internal/http/errors"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
	"github.com/dropDatabas3/bizdesk/internal/rate"
)

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPPathRateKey separa límites por endpoint (login vs signup) sin leer el body.
// La IP sale de trusted.ClientIP: sin proxies confiables es el peer.
func IPPathRateKey(trusted TrustedProxies) RateKeyFunc {
	return func(r *http.Request) string {
		return trusted.ClientIP(r) + "|" + r.URL.Path
	}
}

// RateLimitConfig configura el middleware de rate limiting.
type RateLimitConfig struct {
	Limiter rate.Limiter
	KeyFunc RateKeyFunc

	// TrustedProxies aplica sólo al KeyFunc por defecto.
	TrustedProxies TrustedProxies
}

// WithRateLimit rechaza con 429 cuando la clave supera el límite de la ventana.
// Si el limiter falla se deja pasar el request.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		return nil
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPPathRateKey(cfg.TrustedProxies)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := cfg.Limiter.Allow(r.Context(), cfg.KeyFunc(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable",
					logger.Component("rate"), logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}
			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				}
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))

			next.ServeHTTP(w, r)
		})
	}
}
