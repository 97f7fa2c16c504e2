package live

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, session string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?session=" + session
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_PublishToSession(t *testing.T) {
	hub, srv := newTestHub(t)
	a := dial(t, srv, "s1")
	b := dial(t, srv, "s2")
	waitFor(t, func() bool { return hub.Count("s1") == 1 && hub.Count("s2") == 1 })

	hub.Publish("s2", Event{Type: EventQuestionDeleted, Data: map[string]string{"id": "q0"}})
	hub.Publish("s1", Event{Type: EventQuestionCreated, Data: map[string]string{"id": "q1"}})

	_ = a.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got struct {
		Type      string            `json:"type"`
		SessionId string            `json:"sessionId"`
		Data      map[string]string `json:"data"`
	}
	if err := a.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != EventQuestionCreated || got.SessionId != "s1" || got.Data["id"] != "q1" {
		t.Fatalf("unexpected event: %+v", got)
	}

	_ = b.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := b.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != EventQuestionDeleted || got.SessionId != "s2" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv, "s1")
	waitFor(t, func() bool { return hub.Count("s1") == 1 })

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
	waitFor(t, func() bool { return hub.Count("s1") == 0 })

	hub.Publish("s1", Event{Type: EventQuestionUpvoted})
}
