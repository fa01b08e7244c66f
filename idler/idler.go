// Package idler routes a connection that is not yet in a lobby.
package idler

import (
	"github.com/kjhallberg/bullscows/conn"
	"github.com/kjhallberg/bullscows/lobbydir"
	"github.com/kjhallberg/bullscows/protocol"
	"github.com/kjhallberg/bullscows/server/log"
)

// Config holds the collaborators an idler needs. SpawnLobby is injected
// rather than imported directly so this package has no dependency on the
// lobby package, which itself depends on idler to return departing
// connections to the pool.
type Config struct {
	// Log is used to report non-fatal routing failures.
	Log log.Logger
	// Directory resolves JoinLobby targets.
	Directory *lobbydir.Directory
	// SpawnLobby creates a new lobby owning c as its host.
	SpawnLobby func(c conn.Conn)
}

// Spawn starts an idler goroutine that owns c until it is routed
// elsewhere or its connection dies. pending, if non-nil, is a read
// already in flight against c from a previous owner; the idler consumes
// it instead of calling Listen again, since c must never have two Listen
// calls running at once. Pass nil for a connection with no outstanding
// read, such as a freshly accepted one.
func Spawn(cfg Config, c conn.Conn, pending conn.PendingRead) {
	go run(cfg, c, pending)
}

// run is the idler's single-threaded loop: read one directive, decide.
func run(cfg Config, c conn.Conn, pending conn.PendingRead) {
	for {
		var d protocol.Directive
		var err error
		if pending != nil {
			r := <-pending
			d, err = r.Directive, r.Err
			pending = nil
		} else {
			d, err = c.Listen()
		}
		if err != nil {
			if conn.KindOf(err) == conn.SocketExhausted {
				c.Close()
				return
			}
			// Non-fatal: InvalidMessage, UnknownMessage, InvalidDirective.
			continue
		}
		switch d := d.(type) {
		case protocol.CreateLobby:
			cfg.SpawnLobby(c)
			return
		case protocol.JoinLobby:
			joinLobby(cfg, c, d.LobbyID)
			return
		case protocol.CloseConnection:
			c.Close()
			return
		default:
			// Any other directive is ignored; keep listening.
			continue
		}
	}
}

// joinLobby resolves lobbyID and hands c to that lobby's mailbox. On a
// directory miss or a rejected send, c is returned to a fresh idler.
func joinLobby(cfg Config, c conn.Conn, lobbyID protocol.LobbyID) {
	if cfg.Directory.Send(lobbyID, c) {
		return
	}
	cfg.Log.Printf("idler: lobby %v rejected connection %v, respawning idler", lobbyID, c.TraceID())
	Spawn(cfg, c, nil)
}
