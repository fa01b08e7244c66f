package accept

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kjhallberg/bullscows/conn"
	"github.com/kjhallberg/bullscows/server/log/logtest"
)

func TestHandlerUpgradesAndSpawnsIdler(t *testing.T) {
	spawned := make(chan conn.Conn, 1)
	cfg := Config{
		Log: logtest.DiscardLogger,
		SpawnIdler: func(c conn.Conn, pending conn.PendingRead) {
			spawned <- c
		},
	}
	srv := httptest.NewServer(cfg.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case c := <-spawned:
		if c == nil {
			t.Error("wanted a non-nil connection handed to the idler")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for idler spawn")
	}
}

func TestHandlerIgnoresNonUpgradeRequests(t *testing.T) {
	spawned := make(chan conn.Conn, 1)
	cfg := Config{
		Log: logtest.DiscardLogger,
		SpawnIdler: func(c conn.Conn, pending conn.PendingRead) {
			spawned <- c
		},
	}
	srv := httptest.NewServer(cfg.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("plain GET: %v", err)
	}
	resp.Body.Close()

	select {
	case c := <-spawned:
		t.Fatalf("wanted no idler spawned for a failed upgrade, got %#v", c)
	case <-time.After(100 * time.Millisecond):
	}
}
