package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Galen-Chu/spiritual-g-code/internal/domain"
	"github.com/Galen-Chu/spiritual-g-code/internal/gcode"
	"github.com/Galen-Chu/spiritual-g-code/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	clientSendSize = 16
)

// DashboardMessage is pushed to dashboard clients.
type DashboardMessage struct {
	Type string        `json:"type"`
	Data dailyResponse `json:"data"`
}

// dashboardClient is one connected dashboard. A nil userID receives every
// user's updates.
type dashboardClient struct {
	conn   *websocket.Conn
	userID uuid.UUID
	send   chan []byte
	once   sync.Once
}

func (c *dashboardClient) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans Daily G-Code updates out to dashboard websocket clients.
type Hub struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*dashboardClient]struct{}
	logger   *log.Logger
}

var _ gcode.Notifier = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*dashboardClient]struct{}),
		logger:  logger,
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NotifyDailyGCode broadcasts g to every interested client. Clients whose
// send buffer is full are disconnected.
func (h *Hub) NotifyDailyGCode(g *domain.DailyGCode) {
	payload, err := json.Marshal(DashboardMessage{Type: "daily_gcode", Data: toDailyResponse(g)})
	if err != nil {
		h.logger.Printf("Warning: failed to encode dashboard message: %v", err)
		return
	}

	var slow []*dashboardClient
	h.mu.RLock()
	for c := range h.clients {
		if c.userID != uuid.Nil && c.userID != g.UserID {
			continue
		}
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Printf("Dropping slow dashboard client %s", c.conn.RemoteAddr())
		h.unregister(c)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
	observability.SetWebsocketClients(0)
}

// serve upgrades the request and runs the client until it disconnects.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("Warning: websocket upgrade failed: %v", err)
		return
	}

	c := &dashboardClient{conn: conn, userID: userID, send: make(chan []byte, clientSendSize)}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *dashboardClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	observability.SetWebsocketClients(n)
}

func (h *Hub) unregister(c *dashboardClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	n := len(h.clients)
	h.mu.Unlock()
	observability.SetWebsocketClients(n)
}

// readPump discards client messages and detects disconnects.
func (h *Hub) readPump(c *dashboardClient) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *dashboardClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
