package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"feastfox/internal/models"
)

const (
	pingInterval = 25 * time.Second
	writeWait    = 10 * time.Second
)

type wsClient struct {
	conn *websocket.Conn
	// gorilla allows a single concurrent writer per connection.
	writeMu sync.Mutex
	done    chan struct{}
}

func (c *wsClient) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// Hub fans meal change events out to every connected websocket client.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	closed  bool
}

// NewHub accepts browser connections from the given origins, with the same
// rules as the CORS middleware. Requests without an Origin header are not
// from a browser and are accepted.
func NewHub(origins []string) *Hub {
	allow := originAllowed(origins)
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allow(origin)
			},
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// ServeWS upgrades the request and keeps the connection registered until the
// peer goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	cl := &wsClient{conn: conn, done: make(chan struct{})}
	if !h.register(cl) {
		conn.Close()
		return
	}

	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-cl.done:
				return
			case <-t.C:
				if err := cl.write(websocket.PingMessage, nil); err != nil {
					h.unregister(cl)
					return
				}
			}
		}
	}()

	// The read loop ends when the client closes or errors.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(cl)
			return
		}
	}
}

func (h *Hub) register(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if ok {
		close(c.done)
		c.conn.Close()
	}
}

// Publish sends ev to every client. Clients that cannot be written to are
// dropped.
func (h *Hub) Publish(ev models.ChangeEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal change event")
		return
	}

	h.mu.RLock()
	var failed []*wsClient
	for c := range h.clients {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			failed = append(failed, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range failed {
		h.unregister(c)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.unregister(c)
	}
}
