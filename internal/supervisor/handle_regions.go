package supervisor

import (
	"context"
	"errors"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/config"
	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/daemon"
)

// handleRegionsGet reads the terminal's region selection.
func (s *Supervisor) handleRegionsGet(ctx context.Context, req *daemon.Request) *daemon.Response {
	mdds, fpss := s.manager.Regions().Current()
	return successResponse(req, daemon.RegionsResponse{MDDS: mdds, FPSS: fpss})
}

// handleRegionsSet updates the region selection. An empty field keeps the
// current value, so either region can be set on its own. A missing
// properties file is not fatal: the values are held in memory and the
// response carries them, so the caller can tell the terminal has not
// written its config yet.
func (s *Supervisor) handleRegionsSet(ctx context.Context, req *daemon.Request) *daemon.Response {
	var setReq daemon.RegionsSetRequest
	if err := unmarshalPayload(req.Payload, &setReq); err != nil {
		return errorResponse(req, "invalid payload: "+err.Error())
	}

	mdds, fpss := s.manager.Regions().Current()
	if setReq.MDDS != "" {
		mdds = setReq.MDDS
	}
	if setReq.FPSS != "" {
		fpss = setReq.FPSS
	}

	err := s.manager.Regions().Update(mdds, fpss)
	if err != nil && !errors.Is(err, config.ErrPropertiesMissing) {
		return errorResponse(req, err.Error())
	}

	mdds, fpss = s.manager.Regions().Current()
	return successResponse(req, daemon.RegionsResponse{MDDS: mdds, FPSS: fpss})
}
