package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/julianstephens/littlesteps/internal/constants"
	"github.com/julianstephens/littlesteps/internal/errors"
	"github.com/julianstephens/littlesteps/internal/logger"
	"github.com/julianstephens/littlesteps/internal/storage"
)

// Config defines the inputs for the API server.
type Config struct {
	Addr  string
	Store storage.Provider
}

// Server hosts the JSON API.
type Server struct {
	addr       string
	httpServer *http.Server
}

// New builds a configured server.
func New(cfg Config) (*Server, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("http address is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("state store is required")
	}
	return &Server{
		addr: addr,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(cfg.Store),
			ReadHeaderTimeout: constants.ReadHeaderTimeout,
		},
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	logger.Info("API listening", "addr", s.addr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownGracePeriod)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("API stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
