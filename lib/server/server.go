// Copyright 2026 The Kiosk Authors
// SPDX-License-Identifier: Apache-2.0

// Package server runs the background HTTP transport that resource
// providers register handlers on. The server is an explicit state
// machine: Start binds the listener and returns with the port
// assigned, Stop drains in-flight requests, and Start may be called
// again afterwards. Observers that only need to wait (rather than
// start) block on Ready.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// Server serves HTTP on a loopback TCP listener in the background.
// The zero value is not usable; construct with New.
type Server struct {
	address         string
	handler         http.Handler
	logger          *slog.Logger
	shutdownTimeout time.Duration

	mu        sync.Mutex
	running   bool
	ready     chan struct{}
	addr      net.Addr
	inner     *http.Server
	serveDone chan error
}

// Config configures a Server.
type Config struct {
	// Address is the TCP listen address. Defaults to "127.0.0.1:0"
	// (loopback, kernel-assigned port) — resources are served to
	// local clients, not the network.
	Address string

	// Handler is the HTTP handler for incoming requests. Required.
	Handler http.Handler

	// ShutdownTimeout is the maximum time to wait for in-flight
	// requests to complete during Stop. Defaults to 10 seconds.
	ShutdownTimeout time.Duration

	// Logger is the structured logger. Required.
	Logger *slog.Logger
}

// New creates a stopped server. Call Start to bind the listener.
func New(config Config) *Server {
	if config.Handler == nil {
		panic("server.Server: Handler is required")
	}
	if config.Logger == nil {
		panic("server.Server: Logger is required")
	}

	address := config.Address
	if address == "" {
		address = "127.0.0.1:0"
	}
	timeout := config.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Server{
		address:         address,
		handler:         config.Handler,
		logger:          config.Logger,
		shutdownTimeout: timeout,
		ready:           make(chan struct{}),
	}
}

// Start binds the listener and begins serving in the background. The
// kernel-assigned port is available through Addr and Port as soon as
// Start returns. Calling Start on a running server is a no-op.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.address, err)
	}

	s.inner = &http.Server{
		Handler: s.handler,

		// No read/write timeouts: range streams over large files can
		// legitimately run for a long time, and the client owns the
		// request lifecycle. Header and idle timeouts still bound
		// misbehaving connections.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.serveDone = make(chan error, 1)
	go func(inner *http.Server, done chan<- error) {
		err := inner.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		done <- err
	}(s.inner, s.serveDone)

	s.addr = listener.Addr()
	s.running = true
	close(s.ready)
	s.logger.Info("resource server listening", "address", s.addr.String())
	return nil
}

// Stop gracefully shuts the server down: the listener closes, and
// in-flight requests get up to ShutdownTimeout (bounded further by
// ctx) to complete. The server returns to the stopped state and may
// be started again. Calling Stop on a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	shutdownErr := s.inner.Shutdown(shutdownCtx)
	serveErr := <-s.serveDone

	s.running = false
	s.addr = nil
	s.inner = nil
	s.ready = make(chan struct{})

	if shutdownErr != nil {
		s.logger.Error("resource server shutdown error", "error", shutdownErr)
		return fmt.Errorf("resource server shutdown: %w", shutdownErr)
	}
	if serveErr != nil {
		return fmt.Errorf("resource server serve: %w", serveErr)
	}
	s.logger.Info("resource server stopped")
	return nil
}

// Ready returns a channel that is closed while the server is bound
// and accepting connections. After Stop the channel is replaced, so
// late observers wait for the next Start.
func (s *Server) Ready() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Addr returns the resolved listen address, or nil when stopped.
// Useful when the configured address uses port 0 — the resolved
// address contains the kernel-assigned port.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Port returns the bound TCP port. Fails when the server is stopped:
// a port only exists between Start and Stop.
func (s *Server) Port() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0, errors.New("server is not running")
	}
	return s.addr.(*net.TCPAddr).Port, nil
}
