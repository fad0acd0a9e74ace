// Package supervisor provides the daemon request handler bridging IPC
// requests to the terminal manager.
package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/daemon"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/terminal"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/version"
)

// Version is the supervisor/daemon version.
var Version = version.Version

// Supervisor handles IPC requests and forwards terminal events to attached
// clients. It implements the daemon.Handler interface.
type Supervisor struct {
	manager   *terminal.Manager
	startedAt time.Time

	shutdownCh chan struct{} // Created at init, closed to signal shutdown
	shutdownMu sync.Mutex    // Protects closing shutdownCh exactly once

	mu sync.RWMutex
	// +checklocks:mu
	server *daemon.Server // Server reference for broadcasting events
}

// New creates a new Supervisor wrapping the given terminal manager.
// Terminal events are wired to the broadcast surface immediately; they are
// dropped until SetServer is called.
func New(manager *terminal.Manager) *Supervisor {
	s := &Supervisor{
		manager:    manager,
		startedAt:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	n := manager.Notifier()
	n.OnLogLine(s.broadcastLog)
	n.OnDownloadProgress(s.broadcastProgress)
	n.OnDownloadComplete(s.broadcastDownloadComplete)
	n.OnAutoStartComplete(s.broadcastAutoStart)
	n.OnStateChange(s.broadcastStateChange)

	return s
}

// Manager returns the wrapped terminal manager.
func (s *Supervisor) Manager() *terminal.Manager {
	return s.manager
}

// Handle processes IPC requests and returns responses.
// Implements daemon.Handler.
func (s *Supervisor) Handle(ctx context.Context, req *daemon.Request) *daemon.Response {
	slog.Debug("supervisor handling request", "type", req.Type)
	switch req.Type {
	// Server management
	case daemon.MsgPing:
		return s.handlePing(ctx, req)
	case daemon.MsgShutdown:
		return s.handleShutdown(ctx, req)

	// Terminal control
	case daemon.MsgStart:
		return s.handleStart(ctx, req)
	case daemon.MsgStop:
		return s.handleStop(ctx, req)
	case daemon.MsgStatus:
		return s.handleStatus(ctx, req)
	case daemon.MsgDownload:
		return s.handleDownload(ctx, req)

	// Region configuration
	case daemon.MsgRegionsGet:
		return s.handleRegionsGet(ctx, req)
	case daemon.MsgRegionsSet:
		return s.handleRegionsSet(ctx, req)

	// Event streaming
	case daemon.MsgAttach:
		return s.handleAttach(ctx, req)
	case daemon.MsgDetach:
		return s.handleDetach(ctx, req)

	default:
		return errorResponse(req, "unknown message type: "+string(req.Type))
	}
}

// ShutdownCh returns a channel closed when a shutdown request arrives.
func (s *Supervisor) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Shutdown tears down the terminal process. Safe to call multiple times.
func (s *Supervisor) Shutdown() {
	s.manager.Cleanup()
}
