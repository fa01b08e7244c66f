// Package accept upgrades incoming TCP connections to WebSockets and
// hands each one to a fresh idler.
package accept

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/kjhallberg/bullscows/conn"
	"github.com/kjhallberg/bullscows/server/log"
)

// Config holds the collaborators the accept handler needs.
type Config struct {
	// Log is used to report upgrade failures.
	Log log.Logger
	// SpawnIdler hands a freshly accepted connection to a new idler.
	SpawnIdler func(c conn.Conn, pending conn.PendingRead)
}

// Handler upgrades each request to a WebSocket and spawns an idler for
// it. Upgrade failures are logged and otherwise ignored; the listener
// keeps accepting.
func (cfg Config) Handler() http.Handler {
	upgrader := websocket.Upgrader{}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.Log.Printf("accept: upgrading connection: %v", err)
			return
		}
		c := conn.New(wsConn)
		cfg.SpawnIdler(c, nil)
	})
}
