// Package otp emite y valida códigos numéricos de un solo uso ligados a un email.
// No conoce cuentas: sirve igual para alta y para reset de password.
package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/bizdesk/internal/domain/repository"
	"github.com/dropDatabas3/bizdesk/internal/email"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
	tokens "github.com/dropDatabas3/bizdesk/internal/security/token"
)

var (
	// ErrNotFound: no hay código vivo para el email.
	ErrNotFound = repository.ErrCodeNotFound
	// ErrExpired: el código venció.
	ErrExpired = repository.ErrCodeExpired
	// ErrMismatch: el código no coincide.
	ErrMismatch = repository.ErrCodeMismatch
	// ErrDispatch: el código quedó guardado pero el email no salió.
	ErrDispatch = errors.New("otp: code dispatch failed")
)

// Service es el contrato que consumen los flujos de autenticación.
type Service interface {
	// Issue genera un código nuevo para email (pisando el anterior) y lo envía.
	Issue(ctx context.Context, email string, purpose email.Purpose) error
	// Verify consume el código si coincide y está vigente.
	Verify(ctx context.Context, email, code string) error
}

// Deps agrupa las dependencias del servicio.
type Deps struct {
	Codes   repository.CodeRepository
	Mailer  email.Sender
	TTL     time.Duration
	Digits  int
	Product string
	// Now permite un reloj simulado en tests.
	Now func() time.Time
	// Generate permite fijar el código en tests.
	Generate func(digits int) (string, error)
}

type service struct {
	d Deps
}

// NewService crea el servicio con defaults (10 minutos, 6 dígitos).
func NewService(d Deps) Service {
	if d.TTL <= 0 {
		d.TTL = 10 * time.Minute
	}
	if d.Digits <= 0 {
		d.Digits = 6
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Generate == nil {
		d.Generate = tokens.NumericCode
	}
	return &service{d: d}
}

func (s *service) Issue(ctx context.Context, addr string, purpose email.Purpose) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("otp"),
		logger.Op("Issue"),
	)
	addr = normalize(addr)
	if addr == "" {
		return fmt.Errorf("otp: %w", repository.ErrInvalidInput)
	}

	code, err := s.d.Generate(s.d.Digits)
	if err != nil {
		return fmt.Errorf("otp: generate: %w", err)
	}

	now := s.d.Now()
	vc := repository.VerificationCode{
		Email:     addr,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.d.TTL),
	}
	if err := s.d.Codes.Upsert(ctx, vc); err != nil {
		log.Error("code upsert failed", logger.Err(err))
		return fmt.Errorf("otp: store: %w", err)
	}

	msg, err := email.RenderCode(addr, email.CodeVars{
		Product: s.d.Product,
		Code:    code,
		TTL:     s.d.TTL,
		Purpose: purpose,
	})
	if err != nil {
		return fmt.Errorf("otp: %w", err)
	}
	if err := s.d.Mailer.Send(ctx, msg); err != nil {
		log.Warn("code dispatch failed", logger.Err(err))
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	log.Debug("code issued", logger.String("purpose", string(purpose)))
	return nil
}

func (s *service) Verify(ctx context.Context, addr, code string) error {
	addr = normalize(addr)
	code = strings.TrimSpace(code)
	if addr == "" || code == "" {
		return ErrNotFound
	}
	return s.d.Codes.Consume(ctx, addr, code, s.d.Now())
}

func normalize(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
