package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/solatis/bulkmsg/internal/core/api"
	"github.com/solatis/bulkmsg/internal/core/config"
)

// HTTPServer serves the gin router.
type HTTPServer struct {
	server   *http.Server
	config   *config.ServerConfig
	mu       sync.Mutex
	listener net.Listener
}

// NewHTTPServer wraps the service router in an http.Server.
func NewHTTPServer(cfg *config.ServerConfig, service *api.Service) (*HTTPServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	return &HTTPServer{
		server: &http.Server{
			Handler:           service.Router(),
			ReadHeaderTimeout: cfg.RequestTimeout,
		},
		config: cfg,
	}, nil
}

// Start binds host:http_port and serves until Shutdown.
// Returns nil after a clean Shutdown.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.HTTPPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *HTTPServer) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	if err := s.server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *HTTPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown drains in-flight requests within the shutdown timeout.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.server.Close()
		return fmt.Errorf("graceful shutdown failed, forced close: %w", err)
	}
	return nil
}
