// Package websocket streams controller events and periodic status to
// browser clients.
package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/lcalzada-xor/wreveal/internal/core/domain"
	"github.com/lcalzada-xor/wreveal/internal/core/ports"
)

const (
	// DefaultStatusInterval is how often the status message is pushed.
	DefaultStatusInterval = 2 * time.Second
	eventBuffer           = 256
	writeTimeout          = 5 * time.Second
)

// Message is the envelope of every frame written to clients.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type statusPayload struct {
	State  domain.ScanState `json:"state"`
	Counts domain.Counts    `json:"counts"`
}

// Hub fans controller events out to WebSocket clients. It implements
// ports.EventPublisher; Publish never blocks and drops when the buffer is
// full.
type Hub struct {
	Service  ports.ScanService
	Interval time.Duration

	upgrader ws.Upgrader
	events   chan domain.Event
	dropped  atomic.Uint64

	mu      sync.Mutex
	clients map[*ws.Conn]struct{}
}

// NewHub accepts connections from the given origins plus same-origin
// requests without an Origin header.
func NewHub(service ports.ScanService, allowedOrigins []string) *Hub {
	h := &Hub{
		Service:  service,
		Interval: DefaultStatusInterval,
		events:   make(chan domain.Event, eventBuffer),
		clients:  make(map[*ws.Conn]struct{}),
	}
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed[origin] {
				return true
			}
			log.Printf("WebSocket: Rejected origin: %s", origin)
			return false
		},
	}
	return h
}

var _ ports.EventPublisher = (*Hub)(nil)

// Publish queues e for broadcast.
func (h *Hub) Publish(e domain.Event) {
	select {
	case h.events <- e:
	default:
		h.dropped.Add(1)
	}
}

// Dropped returns the number of events lost to a full buffer.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run broadcasts queued events and the periodic status until ctx is done,
// then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case e := <-h.events:
			h.broadcast(Message{Type: string(e.Type), Payload: e})
		case <-ticker.C:
			if h.Clients() == 0 {
				continue
			}
			h.broadcast(Message{Type: "status", Payload: statusPayload{
				State:  h.Service.Status(),
				Counts: h.Service.Counts(),
			}})
		}
	}
}

// HandleWebSocket upgrades the request and registers the connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	log.Printf("WebSocket connected: %s", r.RemoteAddr)

	// reads only detect the close; clients send nothing
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) remove(conn *ws.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
		log.Printf("WebSocket disconnected: %s", conn.RemoteAddr())
	}
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(ws.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.WriteControl(ws.CloseMessage,
			ws.FormatCloseMessage(ws.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		delete(h.clients, conn)
	}
}
