package supervisor

import (
	"encoding/json"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/daemon"
)

func successResponse(req *daemon.Request, payload any) *daemon.Response {
	return &daemon.Response{Type: req.Type, ID: req.ID, Success: true, Payload: payload}
}

func errorResponse(req *daemon.Request, msg string) *daemon.Response {
	return &daemon.Response{Type: req.Type, ID: req.ID, Success: false, Error: msg}
}

// unmarshalPayload re-marshals a decoded request payload into its concrete
// type. A nil payload leaves dst untouched.
func unmarshalPayload(payload any, dst any) error {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
