// Package match implements the in-progress game actor: two connections,
// each with a committed secret, taking alternating guesses until one
// side wins or either departs.
package match

import (
	"time"

	"github.com/kjhallberg/bullscows/conn"
	"github.com/kjhallberg/bullscows/protocol"
	"github.com/kjhallberg/bullscows/secret"
	"github.com/kjhallberg/bullscows/server/log"
)

// TurnInterval is the duration after which the turn passes automatically
// if the player on turn has not guessed. It also resets whenever a valid
// guess is processed, so a quiet correct guess does not get immediately
// interrupted by the next tick.
const TurnInterval = 20 * time.Second

// Config holds the collaborators a game needs. SpawnIdler is injected
// rather than imported directly, mirroring idler.Config and lobby.Config.
type Config struct {
	// Log is the game's logger. The game itself writes nothing to it.
	Log log.Logger
	// SpawnIdler returns a departing connection to the idle pool. pending
	// is a read already in flight against c, or nil if none is
	// outstanding.
	SpawnIdler func(c conn.Conn, pending conn.PendingRead)
}

// side holds one player's connection and committed secret for the
// duration of the match. Unlike lobby.slot, a side's connection is
// attached from construction until the match ends.
type side struct {
	conn   conn.Conn
	secret secret.Secret
}

// Spawn starts a game owning hostConn/guestConn with their already
// committed secrets. The host guesses first. Both players receive
// GameStart before the turn timer starts. hostRead/guestRead are reads
// already in flight against the respective connection from whichever
// actor owned it before (typically the lobby, across the promotion
// handoff); a nil value means Spawn must arm its own first read instead,
// since a connection must never have two Listen calls running at once.
func Spawn(cfg Config, hostConn conn.Conn, hostSecret secret.Secret, hostRead conn.PendingRead, guestConn conn.Conn, guestSecret secret.Secret, guestRead conn.PendingRead) {
	hostConn.Notify(protocol.GameStart{})
	guestConn.Notify(protocol.GameStart{})
	if hostRead == nil {
		hostRead = conn.Listen(hostConn)
	}
	if guestRead == nil {
		guestRead = conn.Listen(guestConn)
	}
	g := &game{
		cfg:       cfg,
		host:      side{conn: hostConn, secret: hostSecret},
		guest:     side{conn: guestConn, secret: guestSecret},
		hostTurn:  true,
		hostRead:  hostRead,
		guestRead: guestRead,
	}
	go g.run()
}

type game struct {
	cfg       Config
	host      side
	guest     side
	hostTurn  bool
	hostRead  conn.PendingRead
	guestRead conn.PendingRead
}

// run is the game's single-threaded select loop: timer, host read, guest
// read. It returns on Win, either side's Leave, or either side's socket
// death.
func (g *game) run() {
	ticker := time.NewTicker(TurnInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.hostTurn = !g.hostTurn
			g.notifyTurn()
		case r := <-g.hostRead:
			g.hostRead = nil
			done, resetTurn := g.handleRead(true, r)
			if done {
				return
			}
			if resetTurn {
				ticker.Reset(TurnInterval)
			}
			g.hostRead = conn.Listen(g.host.conn)
		case r := <-g.guestRead:
			g.guestRead = nil
			done, resetTurn := g.handleRead(false, r)
			if done {
				return
			}
			if resetTurn {
				ticker.Reset(TurnInterval)
			}
			g.guestRead = conn.Listen(g.guest.conn)
		}
	}
}

// notifyTurn tells whichever side's turn is now beginning.
func (g *game) notifyTurn() {
	if g.hostTurn {
		g.host.conn.Notify(protocol.NextTurn{})
		return
	}
	g.guest.conn.Notify(protocol.NextTurn{})
}

// handleRead processes one directive or listen error read from the side
// identified by isHost. It returns done=true if the match has ended, and
// resetTurn=true if the turn timer should restart (a valid in-turn guess
// that did not end the match). On every branch that hands the opponent's
// connection off to an idler, the opponent's own read is still in
// flight (it did not trigger this call), so it is forwarded rather than
// discarded; self's read was just consumed by r and is never forwarded.
func (g *game) handleRead(isHost bool, r conn.ListenResult) (done, resetTurn bool) {
	self, opponent := g.host, g.guest
	opponentRead := g.guestRead
	if !isHost {
		self, opponent = g.guest, g.host
		opponentRead = g.hostRead
	}
	if r.Err != nil {
		if conn.KindOf(r.Err) == conn.SocketExhausted {
			opponent.conn.Notify(protocol.OpponentLeave{})
			g.cfg.SpawnIdler(opponent.conn, opponentRead)
			return true, false
		}
		return false, false
	}
	switch d := r.Directive.(type) {
	case protocol.Guess:
		if isHost != g.hostTurn {
			return false, false
		}
		return g.handleGuess(self, opponent, opponentRead, d.Secret)
	case protocol.Leave:
		opponent.conn.Notify(protocol.OpponentLeave{})
		g.cfg.SpawnIdler(self.conn, nil)
		g.cfg.SpawnIdler(opponent.conn, opponentRead)
		return true, false
	case protocol.CloseConnection:
		opponent.conn.Notify(protocol.OpponentLeave{})
		g.cfg.SpawnIdler(opponent.conn, opponentRead)
		return true, false
	default:
		return false, false
	}
}

// handleGuess scores guess against the opponent's secret. A full match
// ends the game; otherwise it reports the score, passes the turn, and
// asks the caller to reset the turn timer. opponentRead is the
// opponent's still-in-flight read, forwarded to its idler on a win
// since the opponent did not trigger this call.
func (g *game) handleGuess(self, opponent side, opponentRead conn.PendingRead, guess secret.Secret) (done, resetTurn bool) {
	correct, wrong := opponent.secret.Score(guess)
	if correct == 3 {
		self.conn.Notify(protocol.Win{})
		opponent.conn.Notify(protocol.Lose{})
		g.cfg.SpawnIdler(self.conn, nil)
		g.cfg.SpawnIdler(opponent.conn, opponentRead)
		return true, false
	}
	self.conn.Notify(protocol.GuessScore{Correct: correct, Wrong: wrong})
	g.hostTurn = !g.hostTurn
	return false, true
}
