// Package lobby implements the pre-game actor where a host and an
// optional guest commit secrets before being promoted to a game.
package lobby

import (
	"github.com/kjhallberg/bullscows/conn"
	"github.com/kjhallberg/bullscows/lobbydir"
	"github.com/kjhallberg/bullscows/protocol"
	"github.com/kjhallberg/bullscows/secret"
	"github.com/kjhallberg/bullscows/server/log"
)

// Config holds the collaborators a lobby needs. SpawnIdler and SpawnGame
// are injected rather than imported directly: idler depends on lobby to
// spawn new lobbies, and this package depends on neither the idler nor
// the match package's concrete types.
type Config struct {
	// Log is used to report routing decisions.
	Log log.Logger
	// Directory is the process-wide LobbyId to mailbox map this lobby
	// registers itself in and removes itself from.
	Directory *lobbydir.Directory
	// IDs mints the LobbyId for a new lobby.
	IDs *protocol.IDGenerator
	// SpawnIdler returns a departing connection to the idle pool. pending
	// is a read already in flight against c, or nil if c's last read was
	// already consumed by this lobby before handing it off.
	SpawnIdler func(c conn.Conn, pending conn.PendingRead)
	// SpawnGame promotes both connections, with their committed secrets,
	// to a new game. Host is listed first. hostRead/guestRead are reads
	// already in flight against the respective connection, or nil if none
	// is outstanding; SpawnGame must consume or hand off a non-nil one
	// rather than starting a fresh Listen, since a connection must never
	// have two Listen calls running at once.
	SpawnGame func(hostConn conn.Conn, hostSecret secret.Secret, hostRead conn.PendingRead, guestConn conn.Conn, guestSecret secret.Secret, guestRead conn.PendingRead)
}

// slot holds one side's connection and committed secret while it is
// attached to the lobby. A nil connection means the slot is empty.
type slot struct {
	conn   conn.Conn
	secret *secret.Secret
}

func (s slot) attached() bool {
	return s.conn != nil
}

// Spawn creates a lobby owning host as its initial occupant, registers
// it in the directory, and starts its goroutine. The host receives
// LobbyCreate before this function returns.
func Spawn(cfg Config, host conn.Conn) {
	id := cfg.IDs.Next()
	mailbox := make(chan conn.Conn, 1)
	cfg.Directory.Insert(id, mailbox)
	host.Notify(protocol.LobbyCreate{LobbyID: id})
	l := &lobby{
		cfg:     cfg,
		id:      id,
		mailbox: mailbox,
		host:    slot{conn: host},
	}
	go l.run()
}

type lobby struct {
	cfg     Config
	id      protocol.LobbyID
	mailbox chan conn.Conn
	host    slot
	guest   slot

	// hostListen and guestListen are the outstanding one-shot readers for
	// each slot's connection, re-armed only after their prior result is
	// consumed. A connection must never have two Listen calls in flight
	// at once, so these are armed lazily rather than fresh every
	// iteration, and every handoff of a connection elsewhere (to a game
	// or back to an idler) carries whichever of these is still pending
	// for it instead of discarding it.
	hostListen  conn.PendingRead
	guestListen conn.PendingRead
}

// run is the lobby's single-threaded select loop. It exits either when
// the host slot empties for good or when StartGame promotes both
// connections to a game.
func (l *lobby) run() {
	for l.host.attached() {
		if l.hostListen == nil {
			l.hostListen = conn.Listen(l.host.conn)
		}
		switch {
		case l.guest.attached() && l.guestListen == nil:
			l.guestListen = conn.Listen(l.guest.conn)
		case !l.guest.attached():
			l.guestListen = nil
		}
		select {
		case c := <-l.mailbox:
			l.handleJoin(c)
		case r := <-l.hostListen:
			l.hostListen = nil
			l.handleHost(r)
		case r := <-l.guestListen:
			l.guestListen = nil
			l.handleGuest(r)
		}
	}
	// A joiner can observe this lobby still registered and buffer into
	// the mailbox in the instant before this loop stops reading it;
	// RemoveAndDrain closes that race by unregistering and draining any
	// such straggler as one directory-locked step.
	if c, ok := l.cfg.Directory.RemoveAndDrain(l.id); ok {
		l.cfg.SpawnIdler(c, nil)
	}
}

// handleJoin attaches a newcomer as guest, or rejects it back to a
// fresh idler if a guest is already attached.
func (l *lobby) handleJoin(newcomer conn.Conn) {
	if l.guest.attached() {
		l.cfg.Log.Printf("lobby %v: guest already present, rejecting joiner %v", l.id, newcomer.TraceID())
		l.cfg.SpawnIdler(newcomer, nil)
		return
	}
	l.guest = slot{conn: newcomer}
	l.host.conn.Notify(protocol.GuestJoin{})
	newcomer.Notify(protocol.LobbyJoin{LobbyID: l.id})
}

// handleHost dispatches a directive or listen error read from the host
// connection. The host connection is conceptually taken out of its slot
// for the duration of this call; every branch either puts it back (by
// leaving l.host as is), moves it elsewhere, or drops it.
func (l *lobby) handleHost(r conn.ListenResult) {
	if r.Err != nil {
		if conn.KindOf(r.Err) == conn.SocketExhausted {
			l.hostDeparts(nil)
		}
		return
	}
	switch d := r.Directive.(type) {
	case protocol.SetSecret:
		s := d.Secret
		l.host.conn.Notify(protocol.SecretSet{Secret: s})
		l.host.secret = &s
	case protocol.StartGame:
		l.tryStartGame()
	case protocol.Leave:
		l.hostDeparts(l.host.conn)
	case protocol.CloseConnection:
		l.hostDeparts(nil)
	default:
		// Any other directive is a no-op; host stays attached.
	}
}

// tryStartGame promotes both connections to a game if both slots hold a
// secret. Otherwise it is a silent no-op. The host's read was just
// consumed by the StartGame directive that triggered this call, so
// l.hostListen is nil here; the guest's reader, if any, is still
// in flight and is handed to the game rather than discarded.
func (l *lobby) tryStartGame() {
	if !l.guest.attached() || l.host.secret == nil || l.guest.secret == nil {
		return
	}
	l.cfg.SpawnGame(l.host.conn, *l.host.secret, l.hostListen, l.guest.conn, *l.guest.secret, l.guestListen)
	l.host = slot{}
	l.guest = slot{}
	l.hostListen = nil
	l.guestListen = nil
}

// hostDeparts handles every way the host can leave: promoting the guest
// to host if one is attached, or emptying the lobby otherwise. If
// toIdler is non-nil, the departing host connection is returned to a
// fresh idler (graceful Leave); otherwise it is dropped (close/exhaust).
func (l *lobby) hostDeparts(toIdler conn.Conn) {
	if l.guest.attached() {
		l.guest.conn.Notify(protocol.OpponentLeave{})
		l.host = l.guest
		l.hostListen = l.guestListen
		l.guest = slot{}
		l.guestListen = nil
	} else {
		l.host = slot{}
	}
	if toIdler != nil {
		// toIdler's own read was just consumed by the Leave directive
		// that triggered this departure, so there is nothing pending
		// for it.
		l.cfg.SpawnIdler(toIdler, nil)
	}
}

// handleGuest dispatches a directive or listen error read from the
// guest connection.
func (l *lobby) handleGuest(r conn.ListenResult) {
	if r.Err != nil {
		if conn.KindOf(r.Err) == conn.SocketExhausted {
			l.guestDeparts(nil)
		}
		return
	}
	switch d := r.Directive.(type) {
	case protocol.SetSecret:
		s := d.Secret
		l.guest.conn.Notify(protocol.SecretSet{Secret: s})
		l.guest.secret = &s
	case protocol.Leave:
		l.guestDeparts(l.guest.conn)
	case protocol.CloseConnection:
		l.guestDeparts(nil)
	default:
		// Any other directive is a no-op; guest stays attached.
	}
}

// guestDeparts clears the guest slot and notifies the host. If toIdler
// is non-nil the departing connection returns to a fresh idler;
// otherwise it is dropped.
func (l *lobby) guestDeparts(toIdler conn.Conn) {
	l.host.conn.Notify(protocol.OpponentLeave{})
	l.guest = slot{}
	if toIdler != nil {
		// toIdler's own read was just consumed by the Leave directive
		// that triggered this departure, so there is nothing pending
		// for it.
		l.cfg.SpawnIdler(toIdler, nil)
	}
}
