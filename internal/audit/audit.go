// Package audit registra los eventos de seguridad de los flujos de auth.
package audit

import (
	"context"

	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
	"github.com/dropDatabas3/bizdesk/internal/util"
)

// Outcomes con nivel propio; el resto se registra como warn.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Event es una entrada de auditoría. Email se enmascara al escribir.
type Event struct {
	Flow    string
	Outcome string
	Email   string
}

// Log escribe el evento en el logger del request (hereda request_id y user_id).
func Log(ctx context.Context, e Event) {
	log := logger.From(ctx).Named("audit").With(
		logger.Flow(e.Flow),
		logger.String("outcome", e.Outcome),
	)
	if e.Email != "" {
		log = log.With(logger.Email(util.MaskEmail(e.Email)))
	}

	switch e.Outcome {
	case OutcomeOK:
		log.Info("auth event")
	case OutcomeError:
		log.Error("auth event")
	default:
		log.Warn("auth event")
	}
}
