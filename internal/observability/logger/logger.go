// Package logger expone un logger zap único para todo el proceso, con soporte
// para loggers "scoped" por request vía context.
//
// Uso típico:
//
//	logger.Init(logger.Config{Env: cfg.Log.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("login"))
package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// Env: "dev" (consola) o "prod" (JSON). Default "dev".
	Env string
	// Level: debug, info, warn, error. Default "info".
	Level string
	// ServiceName y Version se agregan como campos base si no están vacíos.
	ServiceName string
	Version     string
}

var (
	mu       sync.RWMutex
	instance *zap.Logger
)

// Init construye el logger global. Llamadas sucesivas reemplazan la instancia,
// lo que permite a los subcomandos del CLI re-configurar el nivel.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	instance = l
	mu.Unlock()
}

// L retorna el logger global; si Init no fue llamado usa dev/info.
func L() *zap.Logger {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(Config{Env: "dev", Level: "info"})
	return L()
}

// Named retorna un logger con nombre de componente.
func Named(name string) *zap.Logger { return L().Named(name) }

// With retorna el logger global con campos adicionales.
func With(fields ...zap.Field) *zap.Logger { return L().With(fields...) }

// Sync flushea buffers pendientes. Ignora el error típico de stdout/stderr en TTYs.
func Sync() error {
	mu.RLock()
	l := instance
	mu.RUnlock()
	if l == nil {
		return nil
	}
	_ = l.Sync()
	return nil
}

func build(cfg Config) *zap.Logger {
	var zcfg zap.Config
	if strings.EqualFold(cfg.Env, "prod") {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	opts := []zap.Option{zap.AddCaller()}
	if strings.EqualFold(cfg.Env, "prod") {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	l, err := zcfg.Build(opts...)
	if err != nil {
		l = zap.NewNop()
	}
	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
