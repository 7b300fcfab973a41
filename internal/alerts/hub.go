package alerts

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"readyset/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message is the frame pushed to subscribers
type Message struct {
	Event string      `json:"event"`
	Data  []AlertView `json:"data"`
}

// AlertView is the JSON form of an alert
type AlertView struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Link        string     `json:"link,omitempty"`
	Published   *time.Time `json:"published,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
}

func toViews(items []models.Alert) []AlertView {
	out := make([]AlertView, 0, len(items))
	for _, a := range items {
		out = append(out, AlertView(a))
	}
	return out
}

type subscriber struct {
	conn *websocket.Conn
	send chan Message
}

// Hub fans the active alert list out to websocket subscribers
type Hub struct {
	upgrader   websocket.Upgrader
	register   chan *subscriber
	unregister chan *subscriber
	broadcast  chan Message
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*subscriber]bool
	current func() []models.Alert
}

// NewHub creates a hub. current supplies the snapshot sent to new subscribers.
func NewHub(current func() []models.Alert) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		broadcast:  make(chan Message, 8),
		done:       make(chan struct{}),
		clients:    make(map[*subscriber]bool),
		current:    current,
	}
}

// SetSource replaces the snapshot function
func (h *Hub) SetSource(current func() []models.Alert) {
	h.mu.Lock()
	h.current = current
	h.mu.Unlock()
}

// Run serves registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow subscriber
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues items for every subscriber; it never blocks the caller
func (h *Hub) Broadcast(items []models.Alert) {
	select {
	case h.broadcast <- Message{Event: "alerts", Data: toViews(items)}:
	default:
		log.Printf("Warning: alert broadcast dropped, hub busy")
	}
}

// Subscribers returns the number of connected clients
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams alert updates to it
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading alert subscriber: %v", err)
		return
	}

	c := &subscriber{conn: conn, send: make(chan Message, 4)}

	h.mu.RLock()
	current := h.current
	h.mu.RUnlock()
	if current != nil {
		c.send <- Message{Event: "alerts", Data: toViews(current())}
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

// readPump only watches for close and pong frames
func (c *subscriber) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("Error writing alert update: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
