// Package conntest provides an in-memory stand-in for conn.Conn so actor
// tests can drive Idler, Lobby and Game without a real socket.
package conntest

import (
	"errors"
	"time"

	"github.com/kjhallberg/bullscows/conn"
	"github.com/kjhallberg/bullscows/protocol"
)

// Fake is a conn.Conn backed by channels instead of a socket. Queue
// directives with QueueDirective/QueueListenError for Listen to return,
// and drain written Notifications with Notified.
type Fake struct {
	id     string
	in     chan result
	out    chan protocol.Notification
	closed chan struct{}
}

type result struct {
	d   protocol.Directive
	err error
}

// New creates a Fake identified by id in logs/assertions.
func New(id string) *Fake {
	return &Fake{
		id:     id,
		in:     make(chan result, 16),
		out:    make(chan protocol.Notification, 16),
		closed: make(chan struct{}),
	}
}

// TraceID implements conn.Conn.
func (f *Fake) TraceID() string {
	return f.id
}

// Listen implements conn.Conn, returning queued results in order.
func (f *Fake) Listen() (protocol.Directive, error) {
	select {
	case r := <-f.in:
		return r.d, r.err
	case <-f.closed:
		return nil, &conn.ListenError{Kind: conn.SocketExhausted, Err: errors.New("fake connection closed")}
	}
}

// Notify implements conn.Conn, recording n for later assertions.
func (f *Fake) Notify(n protocol.Notification) error {
	select {
	case f.out <- n:
		return nil
	case <-f.closed:
		return errors.New("fake connection closed")
	}
}

// Close implements conn.Conn.
func (f *Fake) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

// Closed reports whether Close has been called.
func (f *Fake) Closed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

// QueueDirective arranges for the next Listen call to return d.
func (f *Fake) QueueDirective(d protocol.Directive) {
	f.in <- result{d: d}
}

// QueueListenError arranges for the next Listen call to return a
// *conn.ListenError of the given kind.
func (f *Fake) QueueListenError(kind conn.ListenErrorKind) {
	f.in <- result{err: &conn.ListenError{Kind: kind, Err: errors.New("fake listen error")}}
}

// Notified blocks up to timeout for the next Notify call, reporting false
// if none arrives in time.
func (f *Fake) Notified(timeout time.Duration) (protocol.Notification, bool) {
	select {
	case n := <-f.out:
		return n, true
	case <-time.After(timeout):
		return nil, false
	}
}
