package notify

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/rthefinder/USDG/internal/domain"
)

const (
	writeTimeout = 10 * time.Second

	// Slow consumers are dropped rather than blocking the fanout.
	clientBufferSize = 64
)

// Hub fans launch events out to websocket subscribers. Each client gets
// a buffered send queue; a client that cannot keep up is disconnected.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	log      *logrus.Entry
	closed   bool
}

type client struct {
	conn *websocket.Conn
	send chan *domain.Event
}

// NewHub creates an empty hub.
func NewHub(log *logrus.Entry) *Hub {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP upgrades the request and subscribes the connection until it
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{
		conn: conn,
		send: make(chan *domain.Event, clientBufferSize),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(c)
}

// Publish queues the event for every connected client.
func (h *Hub) Publish(_ context.Context, e *domain.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			// Buffer full: the write loop will be torn down when the
			// channel closes in remove.
			go h.remove(c)
		}
	}
	return nil
}

// Close disconnects all clients. The hub accepts no new connections
// afterwards.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, c)
	}
	return nil
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
}

func (h *Hub) writeLoop(c *client) {
	for e := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(e); err != nil {
			h.remove(c)
			return
		}
	}
}

// readLoop drains client frames so control messages are processed and
// disconnects are noticed.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

var _ Sink = (*Hub)(nil)
