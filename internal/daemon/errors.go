package daemon

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by client operations attempted before Connect
// or after the connection was torn down.
var ErrNotConnected = errors.New("daemon: not connected")

// ServerError is a failure the daemon reported in a response, tagged with
// the client operation that triggered it. Check with errors.As.
type ServerError struct {
	Operation string
	Message   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// NewServerError wraps a server-reported failure message.
func NewServerError(operation, message string) *ServerError {
	return &ServerError{Operation: operation, Message: message}
}
