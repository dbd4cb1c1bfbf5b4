package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sandevgo/rizza/internal/config"
	"github.com/sandevgo/rizza/pkg/log"
)

// Server runs the REST API as a lifecycle-managed service.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

func NewServer(cfg *config.ServerConfig, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: time.Duration(cfg.ShutdownTimeout) * time.Second,
	}
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("starting http server")

	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	// The parent ctx is already canceled when we get here; give in-flight
	// requests their own deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	return s.srv.Shutdown(shutdownCtx)
}
