package supervisor

import (
	"context"
	"errors"
	"os"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/config"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/daemon"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/terminal"
)

// handleStart launches the terminal. Empty credentials fall back to the
// saved ones; a missing jar turns the request into a download with a
// pending auto-start.
func (s *Supervisor) handleStart(ctx context.Context, req *daemon.Request) *daemon.Response {
	var startReq daemon.StartRequest
	if err := unmarshalPayload(req.Payload, &startReq); err != nil {
		return errorResponse(req, "invalid payload: "+err.Error())
	}

	creds := config.Credentials{Username: startReq.Username, Password: startReq.Password}
	if creds.Username == "" && creds.Password == "" {
		creds = s.manager.Credentials()
	}

	err := s.manager.Start(creds)
	switch {
	case err == nil:
		return successResponse(req, daemon.StartResponse{Launched: true})
	case errors.Is(err, terminal.ErrDownloadStarted):
		return successResponse(req, daemon.StartResponse{DownloadStarted: true})
	default:
		return errorResponse(req, err.Error())
	}
}

// handleStop terminates the running terminal.
func (s *Supervisor) handleStop(ctx context.Context, req *daemon.Request) *daemon.Response {
	if err := s.manager.Stop(); err != nil {
		return errorResponse(req, err.Error())
	}
	return successResponse(req, nil)
}

// handleStatus reports daemon and terminal state.
func (s *Supervisor) handleStatus(ctx context.Context, req *daemon.Request) *daemon.Response {
	m := s.manager
	running := m.IsRunning()

	status := daemon.StatusResponse{
		Daemon: daemon.DaemonStatus{
			Running:   true,
			PID:       os.Getpid(),
			StartedAt: s.startedAt,
			Version:   Version,
		},
		Terminal: daemon.TerminalStatus{
			State:       string(m.State()),
			Running:     running,
			JarPresent:  m.ArtifactPresent(),
			JarPath:     m.JarPath(),
			Downloading: m.Downloading(),
			Username:    m.Credentials().Username,
		},
	}
	if running {
		status.Terminal.PID = m.PID()
		status.Terminal.StartedAt = m.StartedAt()
	}

	return successResponse(req, status)
}

// handleDownload begins fetching the terminal jar.
func (s *Supervisor) handleDownload(ctx context.Context, req *daemon.Request) *daemon.Response {
	started := s.manager.StartDownload()
	return successResponse(req, daemon.DownloadResponse{Started: started})
}
