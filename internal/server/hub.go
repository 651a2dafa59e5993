package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// ReloadMessage is sent to browsers after the active schema changes.
const ReloadMessage = "reload"

type hubClient struct {
	conn   *websocket.Conn
	notify chan string
}

// Hub fans reload notifications out to connected live-reload clients.
type Hub struct {
	logger     *slog.Logger
	register   chan *hubClient
	unregister chan *hubClient
	broadcast  chan string
	done       chan struct{}
	clients    atomic.Int64
	upgrader   websocket.Upgrader
}

// NewHub constructs a hub. Run must be called for messages to flow.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		register:   make(chan *hubClient, 16),
		unregister: make(chan *hubClient, 16),
		broadcast:  make(chan string, 8),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Run dispatches messages until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	clients := make(map[*hubClient]struct{})
	for {
		select {
		case <-ctx.Done():
			for c := range clients {
				close(c.notify)
				_ = c.conn.Close()
			}
			h.clients.Store(0)
			h.drain()
			return nil

		case c := <-h.register:
			clients[c] = struct{}{}
			h.clients.Store(int64(len(clients)))

		case c := <-h.unregister:
			if _, ok := clients[c]; ok {
				delete(clients, c)
				close(c.notify)
				_ = c.conn.Close()
				h.clients.Store(int64(len(clients)))
			}

		case msg := <-h.broadcast:
			for c := range clients {
				select {
				case c.notify <- msg:
				default:
				}
			}
		}
	}
}

func (h *Hub) drain() {
	for {
		select {
		case c := <-h.register:
			_ = c.conn.Close()
		case c := <-h.unregister:
			_ = c.conn.Close()
		case <-h.broadcast:
		default:
			return
		}
	}
}

// Broadcast queues msg for every connected client. It drops the message
// when the queue is full or the hub has stopped.
func (h *Hub) Broadcast(msg string) {
	select {
	case <-h.done:
	case h.broadcast <- msg:
	default:
		h.logger.Warn("live reload queue full, dropping message")
	}
}

// Clients reports the number of registered connections.
func (h *Hub) Clients() int {
	return int(h.clients.Load())
}

// ServeHTTP upgrades the request and streams notifications until the client
// goes away or the hub stops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &hubClient{conn: conn, notify: make(chan string, 1)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	leave := func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				leave()
				return
			}
		}
	}()

	for msg := range c.notify {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			leave()
			return
		}
	}
}
