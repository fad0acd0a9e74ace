package supervisor

import (
	"context"
	"time"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/daemon"
)

func (s *Supervisor) handlePing(ctx context.Context, req *daemon.Request) *daemon.Response {
	return successResponse(req, daemon.PingResponse{
		Version:   Version,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		StartedAt: s.startedAt,
	})
}

// handleShutdown signals the hosting process to exit. Repeated shutdown
// requests are harmless; the channel closes once.
func (s *Supervisor) handleShutdown(ctx context.Context, req *daemon.Request) *daemon.Response {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()

	select {
	case <-s.shutdownCh:
	default:
		close(s.shutdownCh)
	}
	return successResponse(req, nil)
}
