// Package lobbydir is the process-wide directory mapping a LobbyID to the
// mailbox of the lobby actor that owns it, used to resolve JoinLobby.
package lobbydir

import (
	"sync"

	"github.com/kjhallberg/bullscows/conn"
	"github.com/kjhallberg/bullscows/protocol"
)

// Directory is a process-wide LobbyID to mailbox map. Reads vastly
// outnumber writes; the lock is never held across a blocking channel
// operation, only ever a non-blocking send or receive.
type Directory struct {
	mu      sync.RWMutex
	lobbies map[protocol.LobbyID]chan conn.Conn
}

// New returns an empty Directory, ready to use. It is never torn down
// while the process lives; tests should construct their own instance
// rather than share one across cases.
func New() *Directory {
	return &Directory{
		lobbies: make(map[protocol.LobbyID]chan conn.Conn),
	}
}

// Insert registers the mailbox for id, replacing any previous entry.
func (d *Directory) Insert(id protocol.LobbyID, m chan conn.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lobbies[id] = m
}

// Registered reports whether a lobby is currently registered for id.
func (d *Directory) Registered(id protocol.LobbyID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.lobbies[id]
	return ok
}

// Send attempts a non-blocking delivery of c to the lobby registered for
// id. It reports whether c was accepted: false means either no lobby is
// registered for id, or its mailbox is full. The directory lock is held
// for the lookup and the send together, which is what lets RemoveAndDrain
// close the race where a lobby is exiting at the same moment: a Send call
// either completes entirely before the matching RemoveAndDrain starts (in
// which case RemoveAndDrain's own drain picks up the straggler) or starts
// entirely after it (in which case the lookup already fails).
func (d *Directory) Send(id protocol.LobbyID, c conn.Conn) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.lobbies[id]
	if !ok {
		return false
	}
	select {
	case m <- c:
		return true
	default:
		return false
	}
}

// RemoveAndDrain unregisters id and reports any connection left buffered
// in its mailbox. A lobby calls this exactly once, after it has stopped
// reading from the mailbox for good: a joiner can observe id still
// registered and buffer into the capacity-1 mailbox in the instant before
// the lobby gives up ownership of it, and that connection would otherwise
// be silently stranded with nothing left to ever receive it.
func (d *Directory) RemoveAndDrain(id protocol.LobbyID) (conn.Conn, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.lobbies[id]
	delete(d.lobbies, id)
	if !ok {
		return nil, false
	}
	select {
	case c := <-m:
		return c, true
	default:
		return nil, false
	}
}

// Len reports the number of lobbies currently registered. Used by the
// idler's SpawnLobby hook in cmd/bullscows to enforce an optional lobby
// cap.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.lobbies)
}
