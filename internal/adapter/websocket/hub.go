// Package websocket pushes refresh notifications to connected
// browsers so leaderboard pages can reload when new data lands.
package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/adenchik/Lead-Board-Dota2/internal/domain"
)

const (
	maxClients    = 1000
	writeTimeout  = 5 * time.Second
	sendQueueSize = 4
)

// RefreshEvent is the message sent to every connected client after a
// successful refresh.
type RefreshEvent struct {
	Type          string `json:"type"`
	TimePosted    int64  `json:"time_posted"`
	NextScheduled int64  `json:"next_scheduled_post_time"`
}

// --- Per-connection writer ---

type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
	once   sync.Once
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			_ = cw.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	cw.once.Do(func() {
		close(cw.done)
		_ = cw.conn.Close()
	})
}

// --- Hub ---

// Hub fans refresh events out to all connected clients. There is a
// single broadcast channel: every viewer gets every event.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]*clientWriter
	closed  bool
}

// NewHub creates the notification hub.
func NewHub() *Hub {
	return &Hub{
		// The leaderboard is public data; any origin may subscribe.
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*clientWriter),
	}
}

// Handler upgrades the connection and keeps it registered until the
// client goes away.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Debug("WebSocket upgrade failed", "error", err)
			return
		}

		if !h.register(conn) {
			_ = conn.Close()
			return
		}

		// Clients never send anything meaningful; read until error to
		// notice the disconnect.
		go func() {
			defer h.unregister(conn)
			conn.SetReadLimit(512)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})
}

// NotifyRefresh broadcasts a refresh event to every client. Clients
// too slow to drain their queue are dropped.
func (h *Hub) NotifyRefresh(snap domain.Snapshot) {
	msg, err := json.Marshal(RefreshEvent{
		Type:          "refresh",
		TimePosted:    snap.TimePosted,
		NextScheduled: snap.NextScheduled,
	})
	if err != nil {
		slog.Error("Failed to encode refresh event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, cw := range h.clients {
		select {
		case cw.sendCh <- msg:
		default:
			slog.Debug("Dropping slow websocket client")
			cw.stop()
			delete(h.clients, conn)
		}
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Stop disconnects all clients and rejects new ones.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for conn, cw := range h.clients {
		cw.stop()
		delete(h.clients, conn)
	}
}

func (h *Hub) register(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || len(h.clients) >= maxClients {
		return false
	}
	h.clients[conn] = newClientWriter(conn)
	return true
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cw, ok := h.clients[conn]; ok {
		cw.stop()
		delete(h.clients, conn)
	}
}
