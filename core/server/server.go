package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/openmarks/gradebook/pkg/logger"
)

// ErrMissingAddress is returned when the listener address is empty.
var ErrMissingAddress = errors.New("server address is required")

// Server wraps http.Server with context-driven graceful shutdown.
type Server struct {
	cfg Config
	log *slog.Logger
}

// New creates a Server. A nil log discards output.
func New(cfg Config, log *slog.Logger) (*Server, error) {
	if cfg.Addr == "" {
		return nil, ErrMissingAddress
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{cfg: cfg, log: log}, nil
}

// Run serves handler until ctx is canceled, then shuts down gracefully
// within the configured timeout. A canceled context is a clean exit, not an
// error.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "starting server", slog.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server", slog.Duration("timeout", s.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("server shutdown error", logger.Error(err))
		return err
	}
	<-errCh
	s.log.Info("server shutdown complete")
	return nil
}
