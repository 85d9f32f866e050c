package backend

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/turtacn/inventa/pkg/logger"
)

// ChangeEvent is pushed to websocket subscribers whenever inventory data
// changes, so the desktop UI can refresh without polling.
type ChangeEvent struct {
	Kind string `json:"kind"` // "created" or "adjusted"
	Item *Item  `json:"item,omitempty"`
	ID   int64  `json:"id,omitempty"`
}

// Hub fans ChangeEvents out to connected websocket clients. Slow clients
// are disconnected rather than allowed to block the broadcast.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan ChangeEvent
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The UI host and backend share localhost; no cross-origin UI exists.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan ChangeEvent),
	}
}

// Broadcast queues ev for every connected client.
func (h *Hub) Broadcast(ev ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- ev:
		default:
			logger.Log.Warn("Hub: dropping slow websocket client", "addr", conn.RemoteAddr().String())
			close(ch)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// ServeWS upgrades the request and streams change events until the client
// disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("Hub: websocket upgrade failed", "err", err)
		return
	}

	ch := make(chan ChangeEvent, 16)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	go func() {
		defer h.drop(conn)
		for ev := range ch {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}()

	// Reader loop only to detect disconnects; clients send nothing.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	conn.Close()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		close(ch)
		delete(h.clients, conn)
		conn.Close()
	}
}

// Personal.AI order the ending
