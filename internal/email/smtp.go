package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // "auto" | "starttls" | "ssl" | "none"
	InsecureSkipVerify bool
	Timeout            time.Duration
}

// Send arma el mensaje multipart/alternative y lo entrega en una conexión nueva.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" || msg.Subject == "" {
		return ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log := logger.From(ctx).With(
		logger.Component("email.smtp"),
		logger.String("host", s.Host),
		logger.Int("port", s.Port),
	)

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
	}
	if msg.HTML != "" {
		if msg.Text == "" {
			m.SetBody("text/html", msg.HTML)
		} else {
			m.AddAlternative("text/html", msg.HTML)
		}
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify, // solo dev
	}
	if s.Timeout > 0 {
		d.Timeout = s.Timeout
	}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default:
		// "auto"/"starttls": go-mail negocia STARTTLS si el server lo ofrece
	}

	if err := d.DialAndSend(m); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	log.Debug("email sent")
	return nil
}
