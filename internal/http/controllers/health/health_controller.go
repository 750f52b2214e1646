// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dropDatabas3/bizdesk/internal/http/helpers"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// Check es una dependencia a verificar en /readyz.
type Check func(ctx context.Context) error

type response struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components,omitempty"`
}

// HealthController maneja las rutas de health check.
type HealthController struct {
	version string
	checks  map[string]Check
	timeout time.Duration
}

// NewHealthController crea el controller; checks puede ser nil.
func NewHealthController(version string, checks map[string]Check) *HealthController {
	return &HealthController{version: version, checks: checks, timeout: 2 * time.Second}
}

// Healthz maneja GET /healthz: el proceso responde.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, response{Status: "ok", Version: c.version})
}

// Readyz maneja GET /readyz: 503 si alguna dependencia falla.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := response{Status: "ready", Version: c.version, Components: map[string]string{}}
	status := http.StatusOK
	for _, name := range names {
		if err := c.checks[name](ctx); err != nil {
			log.Warn("readiness check failed", logger.Component(name), logger.Err(err))
			resp.Components[name] = "down"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Components[name] = "up"
	}
	helpers.WriteJSON(w, status, resp)
}
