package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/primordialab/primordium/internal/engine"
)

func TestWebSocketNotifier_Identity(t *testing.T) {
	notifier := NewWebSocketNotifier("ws-1")
	defer notifier.Close()

	if notifier.ID() != "ws-1" {
		t.Errorf("Expected ID 'ws-1', got '%s'", notifier.ID())
	}
	if notifier.Type() != "websocket" {
		t.Errorf("Expected type 'websocket', got '%s'", notifier.Type())
	}
	upgrader := notifier.GetUpgrader()
	if upgrader.ReadBufferSize != 1024 {
		t.Errorf("Expected read buffer 1024, got %d", upgrader.ReadBufferSize)
	}
}

func TestWebSocketNotifier_NotifyWithoutClients(t *testing.T) {
	notifier := NewWebSocketNotifier("ws-1")
	defer notifier.Close()

	event := engine.Event{WorldID: "w1", Kind: engine.EventMoleculeStabilized}
	if err := notifier.Notify(context.Background(), event); err != nil {
		t.Errorf("Notify without clients should queue silently: %v", err)
	}
}

func TestWebSocketNotifier_BroadcastsToClient(t *testing.T) {
	notifier := NewWebSocketNotifier("ws-1")
	defer notifier.Close()

	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := notifier.GetUpgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		notifier.RegisterClient(conn)
		close(registered)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("Client was never registered")
	}

	event := engine.Event{
		WorldID: "w1",
		Kind:    engine.EventPolymerFormed,
		Formula: "H3N",
		Tick:    7,
	}
	if err := notifier.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	var received engine.Event
	if err := json.Unmarshal(payload, &received); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if received.Kind != engine.EventPolymerFormed {
		t.Errorf("Expected kind '%s', got '%s'", engine.EventPolymerFormed, received.Kind)
	}
	if received.Formula != "H3N" || received.Tick != 7 {
		t.Errorf("Unexpected event payload: %+v", received)
	}
}

func TestWebSocketNotifier_Close(t *testing.T) {
	notifier := NewWebSocketNotifier("ws-1")
	if err := notifier.Close(); err != nil {
		t.Errorf("Close should not return error: %v", err)
	}
	if err := notifier.Close(); err != nil {
		t.Errorf("Second Close should be a no-op: %v", err)
	}

	err := notifier.Notify(context.Background(), engine.Event{Kind: engine.EventDecayRelease})
	if err == nil {
		t.Error("Expected error when notifying a closed notifier")
	}
}
