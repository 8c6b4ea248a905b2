package eventbus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialChannel(t *testing.T, srv *httptest.Server, channel string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?channel=" + channel
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHub_PublishScopedToChannel(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	defer srv.Close()

	subA := dialChannel(t, srv, "session:room-a")
	subB := dialChannel(t, srv, "session:room-b")

	waitForSubscribers(t, h, "session:room-a", 1)
	waitForSubscribers(t, h, "session:room-b", 1)

	if err := h.Publish(context.Background(), "session:room-a", map[string]string{"hello": "a"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_ = subA.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Event
	if err := subA.ReadJSON(&got); err != nil {
		t.Fatalf("read from subA: %v", err)
	}
	if got.Channel != "session:room-a" {
		t.Fatalf("unexpected channel: %s", got.Channel)
	}

	_ = subB.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if err := subB.ReadJSON(&Event{}); err == nil {
		t.Fatal("expected subB to receive nothing, got a message")
	}
}

func waitForSubscribers(t *testing.T, h *Hub, channel string, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.SubscriberCount(channel) == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d subscribers on %s", n, channel)
}
