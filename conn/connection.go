// Package conn wraps a single upgraded WebSocket as a framed,
// exclusively-owned channel of Directives and Notifications.
package conn

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kjhallberg/bullscows/protocol"
)

// Conn is a framed, bidirectional channel to one client. It is not safe
// for concurrent use: at any instant it is owned by exactly one actor,
// and only that actor may call Listen or Notify on it. Implementations:
// *WSConn (a real upgraded socket) and conntest.Fake (an in-memory stand-in
// used by actor tests).
type Conn interface {
	// Listen blocks for the next Directive. An orderly close is reported
	// as protocol.CloseConnection with a nil error, never as an error.
	Listen() (protocol.Directive, error)
	// Notify serializes and writes one Notification frame.
	Notify(protocol.Notification) error
	// Close releases the underlying resource. Safe to call once.
	Close() error
	// TraceID is a process-local, non-wire identifier for log correlation.
	TraceID() string
}

// ListenResult is the outcome of one Listen call made by a one-shot
// reader goroutine armed with Listen.
type ListenResult struct {
	Directive protocol.Directive
	Err       error
}

// PendingRead is an in-flight one-shot read on a Connection. A Connection
// must never have two Listen calls running at once, so when ownership of
// a Connection passes from one actor to another, a PendingRead armed by
// the previous owner must be handed along and consumed by the new owner
// instead of the new owner starting a second reader.
type PendingRead = <-chan ListenResult

// Listen arms a one-shot reader goroutine for c: a single blocking Listen
// call whose result is delivered on the returned channel. The caller is
// responsible for not calling Listen (directly or via another PendingRead)
// on c again until this result is consumed.
func Listen(c Conn) PendingRead {
	out := make(chan ListenResult, 1)
	go func() {
		d, err := c.Listen()
		out <- ListenResult{Directive: d, Err: err}
	}()
	return out
}

// ListenErrorKind classifies why Listen failed to produce a Directive.
type ListenErrorKind int

const (
	// SocketExhausted means the underlying stream ended; terminal.
	SocketExhausted ListenErrorKind = iota
	// InvalidMessage means a transport error occurred that was not an
	// orderly close. gorilla/websocket treats every read error (other than
	// a close frame) as leaving the connection unusable, so *WSConn never
	// produces this kind; it exists so the in-memory fake used by tests can
	// exercise the non-fatal policy spec.md requires for this case.
	InvalidMessage
	// UnknownMessage means a non-text, non-close frame was received; the
	// connection is otherwise healthy.
	UnknownMessage
	// InvalidDirective means the text frame's JSON did not match a known
	// Directive schema.
	InvalidDirective
)

// ListenError reports why Listen did not return a Directive. Only
// SocketExhausted is terminal; callers keep listening otherwise.
type ListenError struct {
	Kind ListenErrorKind
	Err  error
}

func (e *ListenError) Error() string {
	return fmt.Sprintf("listen: %v", e.Err)
}

func (e *ListenError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ListenErrorKind from err, which must be either nil
// or a *ListenError produced by this package.
func KindOf(err error) ListenErrorKind {
	le, ok := err.(*ListenError)
	if !ok {
		return SocketExhausted
	}
	return le.Kind
}

// WSConn is the real, gorilla/websocket-backed implementation of Conn.
type WSConn struct {
	conn    *websocket.Conn
	traceID string
}

// New wraps an already-upgraded WebSocket connection.
func New(c *websocket.Conn) *WSConn {
	return &WSConn{
		conn:    c,
		traceID: uuid.NewString(),
	}
}

// TraceID implements Conn.
func (c *WSConn) TraceID() string {
	return c.traceID
}

// Listen implements Conn.
func (c *WSConn) Listen() (protocol.Directive, error) {
	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		// gorilla/websocket reports a stream that ended without a close
		// frame as a CloseError with CloseAbnormalClosure; that is not an
		// orderly close.
		if ce, ok := err.(*websocket.CloseError); ok && ce.Code != websocket.CloseAbnormalClosure {
			return protocol.CloseConnection{}, nil
		}
		return nil, &ListenError{Kind: SocketExhausted, Err: err}
	}
	switch messageType {
	case websocket.TextMessage:
		d, decodeErr := protocol.DecodeDirective(data)
		if decodeErr != nil {
			return nil, &ListenError{Kind: InvalidDirective, Err: decodeErr}
		}
		return d, nil
	default:
		return nil, &ListenError{Kind: UnknownMessage, Err: fmt.Errorf("unexpected frame type %v", messageType)}
	}
}

// Notify implements Conn. Write errors are surfaced but every caller in
// this codebase ignores them by policy: the next Listen on the same
// connection will observe the socket's death.
func (c *WSConn) Notify(n protocol.Notification) error {
	data, err := protocol.EncodeNotification(n)
	if err != nil {
		// The Notification ADT's shape guarantees successful encoding;
		// reaching here is a programmer error.
		panic(fmt.Sprintf("encoding notification %#v: %v", n, err))
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close implements Conn.
func (c *WSConn) Close() error {
	return c.conn.Close()
}
