// Package chassis runs the HTTP API on one TCP listener.
//
// With TLS the listener negotiates HTTP/2 or HTTP/1.1 over ALPN. Without TLS
// it serves HTTP/1.1 and cleartext HTTP/2 (h2c) on the same port.
//
// In development mode, a self-signed ECDSA P-256 cert is generated automatically.
// In production, supply cert/key files via config.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// TLS modes.
const (
	TLSOff  = "off"
	TLSDev  = "dev"
	TLSFile = "file"
)

// Server is the HTTP chassis.
type Server struct {
	addr    string
	logger  *slog.Logger
	tlsCfg  *tls.Config
	handler http.Handler
	srv     *http.Server
	mu      sync.Mutex
}

// Config holds configuration for the chassis server.
type Config struct {
	Addr     string       // Listen address (e.g. ":8421")
	TLSMode  string       // off (default), dev or file
	CertFile string       // production cert path
	KeyFile  string       // production key path
	Handler  http.Handler // API handler
	Logger   *slog.Logger
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var tlsCfg *tls.Config
	switch cfg.TLSMode {
	case "", TLSOff:
	case TLSFile:
		var err error
		tlsCfg, err = ProductionTLSConfig(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS cert: %w", err)
		}
		cfg.Logger.Info("TLS: production certs loaded")
	case TLSDev:
		var err error
		tlsCfg, err = DevelopmentTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("generate dev TLS: %w", err)
		}
		cfg.Logger.Info("TLS: self-signed dev cert generated")
	default:
		return nil, fmt.Errorf("unknown TLS mode %q", cfg.TLSMode)
	}

	return &Server{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		tlsCfg:  tlsCfg,
		handler: cfg.Handler,
	}, nil
}

// securityHeaders wraps an http.Handler and adds standard security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// Start listens on the configured address and serves until ctx is cancelled
// or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("TCP listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln. It returns nil once ctx is cancelled; call Stop to drain.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	handler := securityHeaders(s.handler)
	proto := "HTTP/1.1+h2c"
	if s.tlsCfg != nil {
		tcpTLS := s.tlsCfg.Clone()
		tcpTLS.NextProtos = []string{"h2", "http/1.1"}
		ln = tls.NewListener(ln, tcpTLS)
		proto = "HTTP/1.1+HTTP/2 (TLS)"
	} else {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	s.srv = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.tlsCfg != nil {
		// Serve does not configure HTTP/2 on a pre-wrapped TLS listener.
		if err := http2.ConfigureServer(s.srv, &http2.Server{}); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("configure h2: %w", err)
		}
	}
	srv := s.srv
	s.mu.Unlock()

	s.logger.Info("chassis started", "addr", ln.Addr().String(), "proto", proto)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("TCP: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Stop gracefully shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("chassis stopping")
	if s.srv == nil {
		return nil
	}
	err := s.srv.Shutdown(ctx)
	s.logger.Info("chassis stopped")
	return err
}
