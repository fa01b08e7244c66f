package conn

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kjhallberg/bullscows/protocol"
)

// newConnPair starts a test server that upgrades one connection and returns
// the server-side *WSConn alongside a raw client *websocket.Conn dialed
// against it.
func newConnPair(t *testing.T) (*WSConn, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	serverConnCh := make(chan *WSConn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrading: %v", err)
			return
		}
		serverConnCh <- New(wsConn)
	}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	t.Cleanup(func() { clientConn.Close() })
	select {
	case c := <-serverConnCh:
		return c, clientConn
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for server upgrade")
		return nil, nil
	}
}

func TestListenDecodesDirective(t *testing.T) {
	server, client := newConnPair(t)
	if err := client.WriteMessage(websocket.TextMessage, []byte(`{"type":"CreateLobby"}`)); err != nil {
		t.Fatalf("writing: %v", err)
	}
	d, err := server.Listen()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if _, ok := d.(protocol.CreateLobby); !ok {
		t.Errorf("wanted CreateLobby, got %#v", d)
	}
}

func TestListenReportsInvalidDirective(t *testing.T) {
	server, client := newConnPair(t)
	if err := client.WriteMessage(websocket.TextMessage, []byte(`{"type":"SetSecret","secret":"nan"}`)); err != nil {
		t.Fatalf("writing: %v", err)
	}
	_, err := server.Listen()
	if KindOf(err) != InvalidDirective {
		t.Errorf("wanted InvalidDirective, got %v (%v)", KindOf(err), err)
	}
}

func TestListenReportsUnknownMessage(t *testing.T) {
	server, client := newConnPair(t)
	if err := client.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3}); err != nil {
		t.Fatalf("writing: %v", err)
	}
	_, err := server.Listen()
	if KindOf(err) != UnknownMessage {
		t.Errorf("wanted UnknownMessage, got %v (%v)", KindOf(err), err)
	}
}

func TestListenTranslatesCloseToDirective(t *testing.T) {
	server, client := newConnPair(t)
	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	if err := client.WriteMessage(websocket.CloseMessage, data); err != nil {
		t.Fatalf("writing close: %v", err)
	}
	d, err := server.Listen()
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if _, ok := d.(protocol.CloseConnection); !ok {
		t.Errorf("wanted CloseConnection, got %#v", d)
	}
}

func TestListenReportsSocketExhausted(t *testing.T) {
	server, client := newConnPair(t)
	client.Close()
	_, err := server.Listen()
	if KindOf(err) != SocketExhausted {
		t.Errorf("wanted SocketExhausted, got %v (%v)", KindOf(err), err)
	}
}

func TestNotifyWritesFrame(t *testing.T) {
	server, client := newConnPair(t)
	if err := server.Notify(protocol.GuestJoin{}); err != nil {
		t.Fatalf("notifying: %v", err)
	}
	mt, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("reading: %v", err)
	}
	if mt != websocket.TextMessage {
		t.Errorf("wanted text message, got %v", mt)
	}
	n, err := protocol.DecodeNotification(data)
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if _, ok := n.(protocol.GuestJoin); !ok {
		t.Errorf("wanted GuestJoin, got %#v", n)
	}
}

func TestTraceIDIsStable(t *testing.T) {
	server, _ := newConnPair(t)
	if server.TraceID() == "" {
		t.Error("wanted non-empty trace id")
	}
	if server.TraceID() != server.TraceID() {
		t.Error("trace id should be stable across calls")
	}
}
