// Package email envía los mensajes salientes del sistema (códigos de verificación).
package email

import (
	"context"
	"errors"
)

var (
	ErrSendFailed     = errors.New("email: send failed")
	ErrTemplateRender = errors.New("email: template render failed")
	ErrInvalidInput   = errors.New("email: invalid input")
)

// Message es un email multipart (texto + html).
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender entrega un mensaje. Las implementaciones deben ser seguras para uso concurrente.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SenderFunc adapta una función a Sender.
type SenderFunc func(ctx context.Context, m Message) error

func (f SenderFunc) Send(ctx context.Context, m Message) error { return f(ctx, m) }
