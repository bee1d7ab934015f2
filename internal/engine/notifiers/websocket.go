package notifiers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/primordialab/primordium/internal/engine"
)

const wsWriteTimeout = 10 * time.Second

// WebSocketNotifier broadcasts simulation events to connected WebSocket
// clients. Connection bookkeeping happens inside a single hub goroutine,
// so handlers only ever talk to it through channels.
type WebSocketNotifier struct {
	id         string
	upgrader   websocket.Upgrader
	broadcast  chan engine.Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewWebSocketNotifier creates a notifier and starts its hub goroutine.
func NewWebSocketNotifier(id string) *WebSocketNotifier {
	n := &WebSocketNotifier{
		id:         id,
		broadcast:  make(chan engine.Event, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	n.wg.Add(1)
	go n.run()

	return n
}

// ID returns the notifier ID
func (n *WebSocketNotifier) ID() string {
	return n.id
}

// Type returns the notifier type
func (n *WebSocketNotifier) Type() string {
	return "websocket"
}

// RegisterClient hands a freshly upgraded connection to the hub.
func (n *WebSocketNotifier) RegisterClient(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	select {
	case n.register <- conn:
	case <-n.done:
	}
}

// UnregisterClient removes a connection from the hub and closes it.
func (n *WebSocketNotifier) UnregisterClient(conn *websocket.Conn) {
	if conn == nil {
		return
	}
	select {
	case n.unregister <- conn:
	case <-n.done:
		conn.Close()
	}
}

// Notify queues the event for broadcast to all connected clients.
func (n *WebSocketNotifier) Notify(ctx context.Context, event engine.Event) error {
	select {
	case n.broadcast <- event:
		return nil
	case <-n.done:
		return fmt.Errorf("notifier %s is closed", n.id)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run owns the client set: registrations, removals and event fan-out all
// happen here, one at a time.
func (n *WebSocketNotifier) run() {
	defer n.wg.Done()

	clients := make(map[*websocket.Conn]struct{})
	defer func() {
		for conn := range clients {
			conn.Close()
		}
	}()

	for {
		select {
		case <-n.done:
			return

		case conn := <-n.register:
			clients[conn] = struct{}{}

		case conn := <-n.unregister:
			if _, ok := clients[conn]; ok {
				delete(clients, conn)
				conn.Close()
			}

		case event := <-n.broadcast:
			payload, err := event.JSON()
			if err != nil {
				continue
			}
			for conn := range clients {
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					delete(clients, conn)
					conn.Close()
				}
			}
		}
	}
}

// Close stops the hub goroutine and closes every client connection.
func (n *WebSocketNotifier) Close() error {
	select {
	case <-n.done:
		return nil
	default:
	}
	close(n.done)
	n.wg.Wait()
	return nil
}

// GetUpgrader returns the WebSocket upgrader for HTTP handlers
func (n *WebSocketNotifier) GetUpgrader() websocket.Upgrader {
	return n.upgrader
}
