package main

import (
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kjhallberg/bullscows/protocol"
	"github.com/kjhallberg/bullscows/secret"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func send(t *testing.T, c *websocket.Conn, d protocol.Directive) {
	t.Helper()
	data, err := protocol.EncodeDirective(d)
	if err != nil {
		t.Fatalf("encoding directive: %v", err)
	}
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("writing directive: %v", err)
	}
}

func receive(t *testing.T, c *websocket.Conn) protocol.Notification {
	t.Helper()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("reading notification: %v", err)
	}
	n, err := protocol.DecodeNotification(data)
	if err != nil {
		t.Fatalf("decoding notification: %v", err)
	}
	return n
}

// TestFullHandshakeCreateJoinGame exercises the whole composition root
// wired by newServeMux: create a lobby, join it, commit secrets, start
// the game and win it, all over real WebSocket connections.
func TestFullHandshakeCreateJoinGame(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	mux := newServeMux(logger, 0)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	alice := dial(t, url)
	send(t, alice, protocol.CreateLobby{})
	created, ok := receive(t, alice).(protocol.LobbyCreate)
	if !ok {
		t.Fatalf("wanted LobbyCreate, got %#v", created)
	}

	bob := dial(t, url)
	send(t, bob, protocol.JoinLobby{LobbyID: created.LobbyID})
	if _, ok := receive(t, alice).(protocol.GuestJoin); !ok {
		t.Fatal("wanted alice to receive GuestJoin")
	}
	if joined, ok := receive(t, bob).(protocol.LobbyJoin); !ok || joined.LobbyID != created.LobbyID {
		t.Fatalf("wanted bob to receive LobbyJoin for %v, got %#v", created.LobbyID, joined)
	}

	aliceSecret, err := secret.Parse(123)
	if err != nil {
		t.Fatal(err)
	}
	bobSecret, err := secret.Parse(456)
	if err != nil {
		t.Fatal(err)
	}
	send(t, alice, protocol.SetSecret{Secret: aliceSecret})
	receive(t, alice) // SecretSet
	send(t, bob, protocol.SetSecret{Secret: bobSecret})
	receive(t, bob) // SecretSet

	send(t, alice, protocol.StartGame{})
	if _, ok := receive(t, alice).(protocol.GameStart); !ok {
		t.Fatal("wanted alice to receive GameStart")
	}
	if _, ok := receive(t, bob).(protocol.GameStart); !ok {
		t.Fatal("wanted bob to receive GameStart")
	}

	send(t, alice, protocol.Guess{Secret: bobSecret})
	if _, ok := receive(t, alice).(protocol.Win); !ok {
		t.Fatal("wanted alice to receive Win")
	}
	if _, ok := receive(t, bob).(protocol.Lose); !ok {
		t.Fatal("wanted bob to receive Lose")
	}
}
