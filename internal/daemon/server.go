package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/paths"
)

// DefaultSocketPath returns the default Unix socket path.
func DefaultSocketPath() string {
	return paths.SocketPath()
}

// Handler processes one IPC request. The supervisor implements it; tests use
// HandlerFunc stubs. The context carries the originating connection and the
// server so attach/detach handlers can reach the streaming registry via
// ConnFromContext and ServerFromContext.
type Handler interface {
	Handle(ctx context.Context, req *Request) *Response
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, req *Request) *Response

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, req *Request) *Response {
	return f(ctx, req)
}

type ctxKey int

const (
	ctxConn ctxKey = iota
	ctxServer
)

// ConnFromContext returns the client connection a request arrived on, or nil.
func ConnFromContext(ctx context.Context) net.Conn {
	conn, _ := ctx.Value(ctxConn).(net.Conn)
	return conn
}

// ServerFromContext returns the server a request arrived through, or nil.
func ServerFromContext(ctx context.Context) *Server {
	srv, _ := ctx.Value(ctxServer).(*Server)
	return srv
}

// subscriber is one connection registered for streaming events. Writes to the
// shared connection are serialized through its own lock so broadcast frames
// never interleave with response frames mid-message.
type subscriber struct {
	writeMu sync.Mutex
	// +checklocks:writeMu
	enc *json.Encoder
}

// Server accepts IPC clients on a Unix socket, dispatches their requests to a
// Handler, and pushes StreamEvents to subscribed connections.
type Server struct {
	socketPath string
	handler    Handler

	mu sync.Mutex
	// +checklocks:mu
	listener net.Listener
	// +checklocks:mu
	clients map[net.Conn]struct{}
	// +checklocks:mu
	subs map[net.Conn]*subscriber
	// +checklocks:mu
	running bool
	closing chan struct{}
}

// NewServer creates a server bound to the given socket path, or the default
// path when empty.
func NewServer(socketPath string, handler Handler) *Server {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		clients:    make(map[net.Conn]struct{}),
		subs:       make(map[net.Conn]*subscriber),
		closing:    make(chan struct{}),
	}
}

// SocketPath returns the socket path this server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Addr returns the listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start binds the socket and begins accepting clients. The socket file is
// owner-only; a leftover socket from a previous run is removed first.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already started")
	}
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0700); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		ln.Close()
		return fmt.Errorf("set socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.running = true
	s.mu.Unlock()

	slog.Info("daemon server started", "socket", s.socketPath)
	go s.accept(ln)
	return nil
}

func (s *Server) accept(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return
			default:
			}
			slog.Error("accept connection failed", "error", err)
			continue
		}

		s.mu.Lock()
		s.clients[conn] = struct{}{}
		n := len(s.clients)
		s.mu.Unlock()
		slog.Debug("client connected", "connections", n)

		go s.serveConn(conn)
	}
}

// serveConn runs the request/response loop for one client until it
// disconnects or sends garbage.
func (s *Server) serveConn(conn net.Conn) {
	defer s.dropConn(conn)

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	ctx := context.WithValue(context.Background(), ctxConn, conn)
	ctx = context.WithValue(ctx, ctxServer, s)

	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if err != io.EOF {
				slog.Warn("decode request failed", "error", err)
				enc.Encode(&Response{Success: false, Error: fmt.Sprintf("decode request: %v", err)})
			}
			return
		}
		slog.Debug("request received", "type", req.Type, "id", req.ID)

		resp := s.handler.Handle(ctx, &req)
		if resp == nil {
			resp = &Response{Success: false, Error: "handler returned nil response"}
		}
		// Fill in correlation fields the handler left blank.
		if resp.Type == "" {
			resp.Type = req.Type
		}
		if resp.ID == "" {
			resp.ID = req.ID
		}
		if !resp.Success {
			slog.Warn("request failed", "type", req.Type, "error", resp.Error)
		}

		if err := enc.Encode(resp); err != nil {
			slog.Debug("write response failed", "error", err)
			return
		}
	}
}

func (s *Server) dropConn(conn net.Conn) {
	conn.Close()
	s.mu.Lock()
	delete(s.clients, conn)
	delete(s.subs, conn)
	n := len(s.clients)
	s.mu.Unlock()
	slog.Debug("client disconnected", "connections", n)
}

// Stop closes the listener and every client connection and removes the
// socket file. Calling Stop on a stopped server is a no-op.
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	ln := s.listener
	n := len(s.clients)
	s.mu.Unlock()

	slog.Info("daemon server stopping", "active_connections", n)

	close(s.closing)
	if ln != nil {
		ln.Close()
	}

	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[net.Conn]struct{})
	s.subs = make(map[net.Conn]*subscriber)
	s.mu.Unlock()

	os.Remove(s.socketPath)
	slog.Info("daemon server stopped")
	return nil
}

// Attach subscribes a connection to streaming events.
func (s *Server) Attach(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[conn] = &subscriber{enc: json.NewEncoder(conn)}
}

// Detach drops a connection's event subscription.
func (s *Server) Detach(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, conn)
}

// AttachedCount returns the number of subscribed connections.
func (s *Server) AttachedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Broadcast writes an event to every subscribed connection. A slow or dead
// subscriber only delays its own write.
func (s *Server) Broadcast(event *StreamEvent) {
	s.mu.Lock()
	targets := make([]*subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		targets = append(targets, sub)
	}
	s.mu.Unlock()

	for _, sub := range targets {
		sub.writeMu.Lock()
		sub.enc.Encode(event)
		sub.writeMu.Unlock()
	}
}
