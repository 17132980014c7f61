package protocol

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
)

// Server accepts client connections and runs one dispatch loop per
// connection. Concurrency is unbounded: every accepted socket gets its own
// goroutine.
type Server struct {
	dispatcher *Dispatcher
	logger     *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a lobby protocol server
func NewServer(dispatcher *Dispatcher, logger *slog.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "server")),
	}
}

// Listen binds the listening socket and returns the bound address
func (s *Server) Listen(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.logger.Info("lobby listening", slog.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

// Serve accepts connections until the listener is closed
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("protocol: Serve before Listen")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.dispatcher.HandleConn(ctx, conn)
	}
}

// Close shuts down the listening socket. In-flight connections keep their
// dispatch loops until the peers hang up.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}
