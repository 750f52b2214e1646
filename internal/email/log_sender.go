package email

import (
	"context"

	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// LogSender no entrega nada: registra el envío. Para dev sin SMTP.
// Con RevealBody el cuerpo de texto va al log en nivel debug, lo que
// expone códigos; nunca habilitar en prod.
type LogSender struct {
	RevealBody bool
}

func (s LogSender) Send(ctx context.Context, m Message) error {
	if m.To == "" {
		return ErrInvalidInput
	}
	log := logger.From(ctx).With(logger.Component("email.log"))
	log.Info("email dispatched (log sender)", logger.String("subject", m.Subject))
	if s.RevealBody {
		log.Debug("email body", logger.String("to", m.To), logger.String("text", m.Text))
	}
	return nil
}
