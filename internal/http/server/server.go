package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dropDatabas3/bizdesk/internal/config"
	"github.com/dropDatabas3/bizdesk/internal/observability/logger"
)

// New crea el http.Server con los timeouts de config.
func New(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

// Serve atiende en ln hasta que ctx se cancela y luego drena con timeout.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	log := logger.From(ctx).With(logger.Component("http"))

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
