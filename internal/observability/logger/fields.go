package logger

import (
	"go.uber.org/zap"
)

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// =================================================================================
// IDENTIDAD
// =================================================================================

func UserID(v string) zap.Field { return zap.String("user_id", v) }
func Role(v string) zap.Field   { return zap.String("role", v) }

// Email registra el email. Nunca loguear códigos, passwords ni tokens.
func Email(v string) zap.Field { return zap.String("email", v) }

// Flow identifica el flujo de autenticación (signup, login, forgot, ...).
func Flow(v string) zap.Field { return zap.String("flow", v) }

// =================================================================================
// SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Backend(v string) zap.Field   { return zap.String("backend", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
