package otp

import (
	"context"
	"time"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// Janitor borra periódicamente códigos vencidos. El vencimiento se chequea
// igual al verificar; esto es sólo higiene de almacenamiento.
type Janitor struct {
	Codes repository.CodeRepository
	Every time.Duration
	Now   func() time.Time
}

// Run bloquea hasta que ctx se cancela.
func (j *Janitor) Run(ctx context.Context) error {
	every := j.Every
	if every <= 0 {
		every = 15 * time.Minute
	}
	now := j.Now
	if now == nil {
		now = time.Now
	}
	log := logger.From(ctx).With(logger.Component("otp.janitor"))

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := j.Codes.DeleteExpired(ctx, now())
			if err != nil {
				log.Warn("sweep failed", logger.Err(err))
				continue
			}
			if n > 0 {
				log.Debug("expired codes removed", logger.Int("count", n))
			}
		}
	}
}
