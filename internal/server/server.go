// Package server accepts TCP clients and hands each one to a dispatcher.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/mcoot/netpong/internal/dispatch"
	"github.com/mcoot/netpong/internal/network"
)

// Config holds configuration for the game server
type Config struct {
	Host string
	Port int
	Conn network.Config
}

// DefaultConfig returns the default listen address 0.0.0.0:5555
func DefaultConfig() Config {
	return Config{
		Host: "0.0.0.0",
		Port: 5555,
		Conn: network.DefaultConfig(),
	}
}

// Server runs the accept loop
type Server struct {
	cfg        Config
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[*network.Conn]struct{}
	closing  bool

	wg sync.WaitGroup
}

// New creates a Server that dispatches connections against engine
func New(cfg Config, engine dispatch.Engine, logger *slog.Logger) *Server {
	return &Server{
		cfg:        cfg,
		dispatcher: dispatch.New(engine, logger),
		logger:     logger.With(slog.String("component", "server")),
		conns:      make(map[*network.Conn]struct{}),
	}
}

// Listen binds the listening socket. Failure here is the server's only fatal error.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("game server listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled or Shutdown is called.
// Each connection gets its own dispatcher goroutine.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server is not listening")
	}

	stop := context.AfterFunc(ctx, func() {
		_ = s.closeListener()
	})
	defer stop()

	var backoff time.Duration
	for {
		raw, err := ln.Accept()
		if err != nil {
			if s.isClosing() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			// Transient accept failures (e.g. fd exhaustion) are retried with backoff
			backoff = min(max(2*backoff, 5*time.Millisecond), time.Second)
			s.logger.Warn("accept failed",
				slog.String("error", err.Error()),
				slog.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		conn := network.New(raw, s.cfg.Conn, s.logger)
		if !s.track(conn) {
			_ = conn.Close()
			return nil
		}

		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.dispatcher.Serve(ctx, conn)
		}()
	}
}

// Shutdown stops accepting, closes live connections, and waits for their
// dispatchers to finish or for ctx to expire
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down game server")

	if err := s.closeListener(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn("closing listener", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("game server stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown error: %w", ctx.Err())
	}
}

func (s *Server) closeListener() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closing = true
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// track records a live connection and counts its dispatcher in s.wg
func (s *Server) track(conn *network.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn *network.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}
