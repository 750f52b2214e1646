package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ToContext inyecta un logger en el contexto (lo usa WithLogging).
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From extrae el logger del contexto o cae al global.
func From(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return L()
}
