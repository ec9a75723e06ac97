package realtime

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"courtdash/internal/observability/metrics"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64

	// A local update and the backend's echo of it usually land within this
	// window.
	dedupeWindow = 5 * time.Second
)

// connection is one dashboard tab.
type connection struct {
	ownerID    string
	authorized string
	conn       *websocket.Conn
	send       chan []byte
	venues     map[string]bool
}

// Hub fans booking events out to the dashboards watching a venue.
type Hub struct {
	mu          sync.RWMutex
	connections map[*connection]struct{}
	metrics     *metrics.Metrics

	recentMu sync.Mutex
	recent   map[string]time.Time
	now      func() time.Time
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		connections: make(map[*connection]struct{}),
		metrics:     m,
		recent:      make(map[string]time.Time),
		now:         time.Now,
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = struct{}{}
	h.metrics.ClientConnected()
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
		h.metrics.ClientDisconnected()
	}
}

// BroadcastToVenue queues the event for every connection subscribed to the
// venue and returns how many accepted it. Slow clients are skipped. A repeat
// of the same booking change within dedupeWindow is dropped.
func (h *Hub) BroadcastToVenue(venueID string, event Event) int {
	if h.duplicate(venueID, event) {
		logrus.WithFields(logrus.Fields{"venue_id": venueID, "booking_id": event.BookingID}).Debug("realtime: duplicate event dropped")
		return 0
	}

	data, err := json.Marshal(event)
	if err != nil {
		return 0
	}

	delivered := 0
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		if !c.venues[venueID] {
			continue
		}
		select {
		case c.send <- data:
			delivered++
		default:
		}
	}
	if delivered > 0 {
		h.metrics.ObserveRelayed(event.Type)
	}
	return delivered
}

// duplicate records the change and reports whether it was already seen.
// Events without a booking ID are always delivered.
func (h *Hub) duplicate(venueID string, event Event) bool {
	if event.BookingID == "" {
		return false
	}
	key := strings.Join([]string{venueID, event.Type, event.BookingID, event.Status, event.PaymentStatus}, "|")

	h.recentMu.Lock()
	defer h.recentMu.Unlock()
	now := h.now()
	for k, seen := range h.recent {
		if now.Sub(seen) >= dedupeWindow {
			delete(h.recent, k)
		}
	}
	if _, ok := h.recent[key]; ok {
		return true
	}
	h.recent[key] = now
	return false
}

// Subscribers returns the number of connections watching a venue.
func (h *Hub) Subscribers(venueID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.connections {
		if c.venues[venueID] {
			n++
		}
	}
	return n
}

// ServeWS registers the connection and blocks until it closes.
func (h *Hub) ServeWS(conn *websocket.Conn, ownerID, venueID string) {
	c := &connection{
		ownerID:    ownerID,
		authorized: venueID,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		venues:     map[string]bool{venueID: true},
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *connection) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithFields(logrus.Fields{"owner_id": c.ownerID, "error": err}).Debug("dashboard websocket closed")
			}
			return
		}

		var cmd struct {
			Type    string `json:"type"`
			VenueID string `json:"venue_id"`
		}
		if err := json.Unmarshal(msg, &cmd); err != nil || cmd.VenueID == "" {
			continue
		}

		switch cmd.Type {
		case "subscribe":
			// Only the venue authorized at connect time.
			if cmd.VenueID != c.authorized {
				continue
			}
			h.mu.Lock()
			c.venues[cmd.VenueID] = true
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			delete(c.venues, cmd.VenueID)
			h.mu.Unlock()
		}
	}
}

func (h *Hub) writePump(c *connection) {
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
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
