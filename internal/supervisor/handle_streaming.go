package supervisor

import (
	"context"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/artifact"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/daemon"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/terminal"
)

// handleAttach and handleDetach manage the requesting connection's event
// subscription on the server it arrived through.

func (s *Supervisor) handleAttach(ctx context.Context, req *daemon.Request) *daemon.Response {
	conn := daemon.ConnFromContext(ctx)
	srv := daemon.ServerFromContext(ctx)
	if conn == nil || srv == nil {
		return errorResponse(req, "internal error: missing connection context")
	}
	srv.Attach(conn)
	return successResponse(req, nil)
}

func (s *Supervisor) handleDetach(ctx context.Context, req *daemon.Request) *daemon.Response {
	conn := daemon.ConnFromContext(ctx)
	srv := daemon.ServerFromContext(ctx)
	if conn == nil || srv == nil {
		return errorResponse(req, "internal error: missing connection context")
	}
	srv.Detach(conn)
	return successResponse(req, nil)
}

// SetServer wires the server events are broadcast through. Until it is
// called, terminal events are dropped.
func (s *Supervisor) SetServer(srv *daemon.Server) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.server = srv
}

// Server returns the wired daemon server, or nil.
func (s *Supervisor) Server() *daemon.Server {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.server
}

func (s *Supervisor) broadcast(event *daemon.StreamEvent) {
	if srv := s.Server(); srv != nil {
		srv.Broadcast(event)
	}
}

func (s *Supervisor) broadcastLog(line string) {
	s.broadcast(&daemon.StreamEvent{Type: daemon.EventLog, Line: line})
}

func (s *Supervisor) broadcastProgress(p artifact.Progress) {
	s.broadcast(&daemon.StreamEvent{
		Type:       daemon.EventDownloadProgress,
		Percent:    p.Percent,
		Downloaded: p.Downloaded,
		Total:      p.Total,
	})
}

func (s *Supervisor) broadcastDownloadComplete(success bool) {
	s.broadcast(&daemon.StreamEvent{Type: daemon.EventDownloadComplete, Success: success})
}

func (s *Supervisor) broadcastAutoStart(success bool) {
	s.broadcast(&daemon.StreamEvent{Type: daemon.EventAutoStart, Success: success})
}

func (s *Supervisor) broadcastStateChange(c terminal.StateChange) {
	s.broadcast(&daemon.StreamEvent{
		Type:     daemon.EventState,
		OldState: string(c.Old),
		NewState: string(c.New),
	})
}
