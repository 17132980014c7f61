package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"sync"
)

// Server serves the store contract over TCP. Connections carry a stream of
// JSON requests; each gets exactly one JSON response.
type Server struct {
	store  Store
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a store server over the given backend
func NewServer(store Store, logger *slog.Logger) *Server {
	return &Server{
		store:  store,
		logger: logger.With(slog.String("component", "docstore")),
	}
}

// Listen binds the listening socket. Returns the bound address, useful when
// addr requests an ephemeral port.
func (s *Server) Listen(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.logger.Info("store listening", slog.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

// Serve accepts connections until the listener is closed
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("docstore: Serve before Listen")
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleConn(ctx, conn)
	}
}

// Close shuts down the listening socket
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			return
		}

		resp := s.handle(ctx, req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	s.logger.Debug("store request",
		slog.String("action", req.Action),
		slog.String("collection", req.Collection),
		slog.String("key", req.Key),
	)

	var err error
	resp := Response{Status: "ok"}

	switch req.Action {
	case ActionGet:
		if req.Key != "" {
			var value json.RawMessage
			value, err = s.store.GetKey(ctx, req.Collection, req.Key)
			resp.Data = value
		} else {
			var doc map[string]json.RawMessage
			doc, err = s.store.Get(ctx, req.Collection)
			if err == nil {
				resp.Data, err = json.Marshal(doc)
			}
		}

	case ActionSet:
		err = s.store.Set(ctx, req.Collection, req.Key, req.Value)

	case ActionDelete:
		err = s.store.Delete(ctx, req.Collection, req.Key)

	case ActionUpdateAll:
		var doc map[string]json.RawMessage
		if err = json.Unmarshal(req.Data, &doc); err == nil {
			err = s.store.UpdateAll(ctx, req.Collection, doc)
		}

	default:
		err = errors.New("unknown action")
	}

	if err != nil {
		s.logger.Warn("store request failed",
			slog.String("action", req.Action),
			slog.String("collection", req.Collection),
			slog.String("error", err.Error()),
		)
		return Response{Status: "error", Message: err.Error()}
	}
	return resp
}
