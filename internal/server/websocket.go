package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"clipvault/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The server binds to loopback only.
		return true
	},
}

// Hub fans state-change notifications out to connected UI clients.
// Delivery is best-effort per client, but every client always
// eventually sees the latest generation: a slow client is dropped, and
// a reconnect starts from a fresh read of the views.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	stopOnce   sync.Once
	log        logger.Logger
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newHub(log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.log.Debug("ws client connected", logger.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.log.Debug("ws client disconnected", logger.Int("clients", len(h.clients)))

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// HandleStateChange implements engine.StateChangeHandler. The payload
// carries only the generation; clients re-read the views over HTTP.
func (h *Hub) HandleStateChange(generation uint64) {
	message, err := json.Marshal(struct {
		Type       string `json:"type"`
		Generation uint64 `json:"generation"`
	}{Type: "state_changed", Generation: generation})
	if err != nil {
		h.log.Error("failed to marshal state notification", logger.Err(err))
		return
	}

	// Latest-wins: if the hub is backed up, replace the queued
	// notification rather than blocking the mutation path. Clients
	// only ever need the newest generation.
	select {
	case h.broadcast <- message:
	default:
		select {
		case <-h.broadcast:
		default:
		}
		select {
		case h.broadcast <- message:
		default:
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
	}()
	for message := range c.send {
		w, err := c.conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// serveWs upgrades the request and attaches the client to the hub.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "Expected WebSocket Upgrade", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", logger.Err(err))
		return
	}

	c := &client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	c.hub.register <- c

	go c.writePump()
}
