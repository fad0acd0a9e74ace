package daemon

import (
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// Timeouts for daemon I/O.
const (
	// ConnectTimeout bounds dialing the daemon socket.
	ConnectTimeout = 5 * time.Second
	// RequestTimeout bounds one request/response cycle.
	RequestTimeout = 30 * time.Second
	// EventTimeout is the per-read deadline RecvEvent polls with, so Send
	// calls can interleave with single-connection event streaming.
	EventTimeout = 100 * time.Millisecond
)

// Client talks to the thetamgr daemon over its Unix socket. The zero value is
// not usable; construct with NewClient.
type Client struct {
	socketPath string

	mu sync.Mutex
	// +checklocks:mu
	conn net.Conn
	// +checklocks:mu
	enc *json.Encoder
	// +checklocks:mu
	dec *json.Decoder
	// +checklocks:mu
	attached bool

	// wireMu serializes encode/decode on the main connection. Acquire after
	// mu when both are needed.
	wireMu sync.Mutex

	reqSeq atomic.Uint64

	// Dedicated event-stream connection, independent of the main one.
	streamMu sync.Mutex
	// +checklocks:streamMu
	streamConn net.Conn
	// +checklocks:streamMu
	streamDone chan struct{}
}

// NewClient creates a client for the given socket path, or the default path
// when empty. The client is not connected until Connect.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	return &Client{socketPath: socketPath}
}

// SocketPath returns the socket path this client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Connect dials the daemon. Connecting an already-connected client is a
// no-op.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", c.socketPath, ConnectTimeout)
	if err != nil {
		return fmt.Errorf("dial daemon: %w", err)
	}
	c.conn = conn
	c.enc = json.NewEncoder(conn)
	c.dec = json.NewDecoder(conn)
	return nil
}

// IsConnected reports whether the main connection is up.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Close tears down the event stream and the main connection.
func (c *Client) Close() error {
	c.StopEventStream()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.resetLocked()
	return err
}

// +checklocks:c.mu
func (c *Client) resetLocked() {
	c.conn = nil
	c.enc = nil
	c.dec = nil
	c.attached = false
}

// teardown closes the main connection after an I/O failure so IsConnected
// reports false afterwards.
func (c *Client) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.resetLocked()
	}
}

func (c *Client) nextID() string {
	return fmt.Sprintf("req-%d", c.reqSeq.Add(1))
}

// Send performs one request/response cycle on the main connection. Send and
// RecvEvent are mutually exclusive. An I/O failure closes the connection.
func (c *Client) Send(req *Request) (*Response, error) {
	c.mu.Lock()
	conn, enc, dec := c.conn, c.enc, c.dec
	c.mu.Unlock()
	if conn == nil {
		return nil, ErrNotConnected
	}

	if req.ID == "" {
		req.ID = c.nextID()
	}

	c.wireMu.Lock()
	defer c.wireMu.Unlock()

	if err := conn.SetDeadline(time.Now().Add(RequestTimeout)); err != nil {
		c.teardown()
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	defer func() { _ = conn.SetDeadline(time.Time{}) }()

	if err := enc.Encode(req); err != nil {
		c.teardown()
		return nil, fmt.Errorf("encode request: %w", err)
	}
	var resp Response
	if err := dec.Decode(&resp); err != nil {
		c.teardown()
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

// decodePayload re-marshals a response payload into a concrete type. A nil
// payload yields the zero value.
func decodePayload[T any](payload any) (*T, error) {
	var out T
	if payload == nil {
		return &out, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &out, nil
}

// call sends a request and decodes a successful response's payload into T.
// Server-reported failures surface as *ServerError under the given operation
// name.
func call[T any](c *Client, op string, req *Request) (*T, error) {
	resp, err := c.Send(req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, NewServerError(op, resp.Error)
	}
	return decodePayload[T](resp.Payload)
}

// Ping checks daemon connectivity and returns its identity.
func (c *Client) Ping() (*PingResponse, error) {
	return call[PingResponse](c, "ping", &Request{Type: MsgPing})
}

// Shutdown asks the daemon to exit.
func (c *Client) Shutdown() error {
	_, err := call[struct{}](c, "shutdown", &Request{Type: MsgShutdown})
	return err
}

// Status reports daemon and terminal state.
func (c *Client) Status() (*StatusResponse, error) {
	return call[StatusResponse](c, "status", &Request{Type: MsgStatus})
}

// Start launches the terminal with the given credentials. Empty credentials
// mean "use the saved ones".
func (c *Client) Start(username, password string) (*StartResponse, error) {
	return call[StartResponse](c, "start", &Request{
		Type:    MsgStart,
		Payload: StartRequest{Username: username, Password: password},
	})
}

// Stop terminates the running terminal.
func (c *Client) Stop() error {
	_, err := call[struct{}](c, "stop", &Request{Type: MsgStop})
	return err
}

// Download begins fetching the terminal jar.
func (c *Client) Download() (*DownloadResponse, error) {
	return call[DownloadResponse](c, "download", &Request{Type: MsgDownload})
}

// RegionsGet reads the terminal's current region selection.
func (c *Client) RegionsGet() (*RegionsResponse, error) {
	return call[RegionsResponse](c, "regions get", &Request{Type: MsgRegionsGet})
}

// RegionsSet updates the terminal's region selection. Empty fields keep the
// current value.
func (c *Client) RegionsSet(mdds, fpss string) (*RegionsResponse, error) {
	return call[RegionsResponse](c, "regions set", &Request{
		Type:    MsgRegionsSet,
		Payload: RegionsSetRequest{MDDS: mdds, FPSS: fpss},
	})
}

// Attach subscribes the main connection to streaming events. Prefer
// StreamEvents, which uses a dedicated connection.
func (c *Client) Attach() error {
	if _, err := call[struct{}](c, "attach", &Request{Type: MsgAttach}); err != nil {
		return err
	}
	c.mu.Lock()
	c.attached = true
	c.mu.Unlock()
	return nil
}

// Detach drops the main connection's event subscription.
func (c *Client) Detach() error {
	if _, err := call[struct{}](c, "detach", &Request{Type: MsgDetach}); err != nil {
		return err
	}
	c.mu.Lock()
	c.attached = false
	c.mu.Unlock()
	return nil
}

// IsAttached reports whether the main connection is subscribed to events.
func (c *Client) IsAttached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}

// RecvEvent reads the next event from the main connection, polling with
// EventTimeout so callers can interleave Send. Only meaningful after Attach.
func (c *Client) RecvEvent() (*StreamEvent, error) {
	c.mu.Lock()
	conn, dec := c.conn, c.dec
	c.mu.Unlock()
	if conn == nil {
		return nil, ErrNotConnected
	}

	c.wireMu.Lock()
	defer c.wireMu.Unlock()

	_ = conn.SetReadDeadline(time.Now().Add(EventTimeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	var event StreamEvent
	if err := dec.Decode(&event); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &event, nil
}

// EventResult is one delivery from StreamEvents: an event, or the error that
// ended the stream.
type EventResult struct {
	Event *StreamEvent
	Err   error
}

// StreamEvents opens a dedicated connection, attaches it, and delivers
// events on the returned channel until the connection fails or
// StopEventStream is called. A previous stream on this client is torn down
// first.
func (c *Client) StreamEvents() (<-chan EventResult, error) {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()

	if c.streamConn != nil {
		c.streamConn.Close()
		if c.streamDone != nil {
			close(c.streamDone)
		}
	}

	conn, err := net.DialTimeout("unix", c.socketPath, ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial daemon for events: %w", err)
	}
	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)

	if err := enc.Encode(&Request{ID: "event-stream", Type: MsgAttach}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("encode attach request: %w", err)
	}
	var resp Response
	if err := dec.Decode(&resp); err != nil {
		conn.Close()
		return nil, fmt.Errorf("decode attach response: %w", err)
	}
	if !resp.Success {
		conn.Close()
		return nil, NewServerError("attach", resp.Error)
	}

	done := make(chan struct{})
	c.streamConn = conn
	c.streamDone = done

	events := make(chan EventResult, 16)
	go func() {
		defer close(events)
		defer conn.Close()

		for {
			var event StreamEvent
			if err := dec.Decode(&event); err != nil {
				select {
				case <-done:
					// Stream stopped deliberately; swallow the read error.
				case events <- EventResult{Err: fmt.Errorf("decode event: %w", err)}:
				}
				return
			}
			select {
			case <-done:
				return
			case events <- EventResult{Event: &event}:
			}
		}
	}()

	return events, nil
}

// StopEventStream closes the dedicated event connection, ending the channel
// returned by StreamEvents.
func (c *Client) StopEventStream() {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()

	if c.streamDone != nil {
		close(c.streamDone)
		c.streamDone = nil
	}
	if c.streamConn != nil {
		c.streamConn.Close()
		c.streamConn = nil
	}
}
