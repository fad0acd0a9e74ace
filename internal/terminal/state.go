// Package terminal provides lifecycle management for the single supervised
// ThetaTerminal process: downloading the jar when absent, launching it with
// saved credentials, streaming its output, and tearing it down with a
// platform-appropriate termination strategy.
package terminal

// State represents the manager's lifecycle state.
type State string

const (
	StateIdle        State = "idle"
	StateDownloading State = "downloading"
	StateLaunching   State = "launching"
	StateRunning     State = "running"
	StateStopping    State = "stopping"
)

// StateChange describes one state transition.
type StateChange struct {
	Old State
	New State
}
