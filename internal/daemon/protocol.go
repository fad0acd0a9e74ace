// Package daemon provides the thetamgr daemon server and IPC protocol.
package daemon

import "time"

// MessageType identifies the type of IPC message.
type MessageType string

const (
	// Server management
	MsgPing     MessageType = "ping"
	MsgShutdown MessageType = "shutdown"

	// Terminal control
	MsgStart    MessageType = "start"    // Launch the terminal
	MsgStop     MessageType = "stop"     // Terminate the terminal
	MsgStatus   MessageType = "status"   // Get daemon/terminal status
	MsgDownload MessageType = "download" // Fetch the terminal jar

	// Region configuration
	MsgRegionsGet MessageType = "regions.get"
	MsgRegionsSet MessageType = "regions.set"

	// Event streaming
	MsgAttach MessageType = "attach" // Subscribe to terminal event streams
	MsgDetach MessageType = "detach" // Unsubscribe from streams
)

// Request is the envelope for all IPC requests.
type Request struct {
	Type    MessageType `json:"type"`
	ID      string      `json:"id,omitempty"`      // Optional request ID for correlation
	Payload any         `json:"payload,omitempty"` // Type-specific payload
}

// Response is the envelope for all IPC responses.
type Response struct {
	Type    MessageType `json:"type"`
	ID      string      `json:"id,omitempty"` // Correlates with request ID
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Payload any         `json:"payload,omitempty"` // Type-specific payload
}

// PingResponse is the payload for ping responses.
type PingResponse struct {
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	StartedAt time.Time `json:"started_at"`
}

// StartRequest is the payload for start requests. Empty credentials mean
// "use the saved ones".
type StartRequest struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// StartResponse is the payload for start responses.
type StartResponse struct {
	// Launched means the terminal process is up.
	Launched bool `json:"launched"`

	// DownloadStarted means the jar was absent; a download began and the
	// terminal will auto-start when it completes.
	DownloadStarted bool `json:"download_started,omitempty"`
}

// StatusResponse is the payload for status responses.
type StatusResponse struct {
	Daemon   DaemonStatus   `json:"daemon"`
	Terminal TerminalStatus `json:"terminal"`
}

// DaemonStatus contains daemon health info.
type DaemonStatus struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
	Version   string    `json:"version"`
}

// TerminalStatus contains terminal process state.
type TerminalStatus struct {
	State       string    `json:"state"` // idle, downloading, launching, running, stopping
	Running     bool      `json:"running"`
	PID         int       `json:"pid,omitempty"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	JarPresent  bool      `json:"jar_present"`
	JarPath     string    `json:"jar_path"`
	Downloading bool      `json:"downloading"`
	Username    string    `json:"username,omitempty"`
}

// DownloadResponse is the payload for download responses.
type DownloadResponse struct {
	// Started means a new download session began; false means one was
	// already in progress.
	Started bool `json:"started"`
}

// RegionsResponse is the payload for regions.get and regions.set responses.
type RegionsResponse struct {
	MDDS string `json:"mdds"`
	FPSS string `json:"fpss"`
}

// RegionsSetRequest is the payload for regions.set requests. Empty fields
// keep the current value.
type RegionsSetRequest struct {
	MDDS string `json:"mdds,omitempty"`
	FPSS string `json:"fpss,omitempty"`
}

// Stream event types sent to attached clients.
const (
	EventLog              = "log"
	EventDownloadProgress = "download.progress"
	EventDownloadComplete = "download.complete"
	EventAutoStart        = "autostart"
	EventState            = "state"
)

// StreamEvent is sent to attached clients as terminal activity occurs.
// Fields beyond Type are populated per event type.
type StreamEvent struct {
	Type string `json:"type"`

	// Log events
	Line string `json:"line,omitempty"`

	// Download progress events
	Percent    int   `json:"percent,omitempty"`
	Downloaded int64 `json:"downloaded,omitempty"`
	Total      int64 `json:"total,omitempty"`

	// Download completion and auto-start events
	Success bool `json:"success,omitempty"`

	// State transition events
	OldState string `json:"old_state,omitempty"`
	NewState string `json:"new_state,omitempty"`
}
