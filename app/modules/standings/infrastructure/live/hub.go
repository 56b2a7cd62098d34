// Package standingslive pushes standings updates to websocket subscribers,
// one room per event.
package standingslive

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	"github.com/Black-And-White-Club/tabroom/internal/attr"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16

	// MessageStandingsUpdated is the type of every pushed recompute.
	MessageStandingsUpdated = "STANDINGS_UPDATED"
)

// Message is the envelope written to subscribers.
type Message struct {
	Type    string `json:"type"`
	EventID string `json:"event_id"`
	Payload any    `json:"payload"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub tracks websocket clients per event.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

// NewHub creates a hub. allowedOrigins empty accepts any origin.
func NewHub(logger *slog.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		logger: logger,
		rooms:  make(map[string]map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, o := range allowedOrigins {
				if o == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[c.room]; !ok {
		h.rooms[c.room] = make(map[*client]struct{})
	}
	h.rooms[c.room][c] = struct{}{}
	h.logger.Debug("Live client joined", attr.String("event_id", c.room), attr.Int("clients", len(h.rooms[c.room])))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[c.room]; ok {
		if _, ok := room[c]; ok {
			delete(room, c)
			c.close()
		}
		if len(room) == 0 {
			delete(h.rooms, c.room)
		}
	}
}

// Subscribers returns the number of clients watching an event.
func (h *Hub) Subscribers(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}

// Broadcast writes msg to every client of an event. Slow clients whose buffer
// is full miss the message.
func (h *Hub) Broadcast(eventID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to encode live message", attr.String("event_id", eventID), attr.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[eventID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Live client buffer full, dropping update", attr.String("event_id", eventID))
		}
	}
}

// StandingsUpdated implements the standings Notifier.
func (h *Hub) StandingsUpdated(_ context.Context, payload standingsevents.StandingsRecomputedPayloadV1) {
	h.Broadcast(payload.EventID, Message{
		Type:    MessageStandingsUpdated,
		EventID: payload.EventID,
		Payload: payload,
	})
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, room := range h.rooms {
		for c := range room {
			c.close()
		}
		delete(h.rooms, id)
	}
}

// ServeWS upgrades a request on a route with an {eventID} parameter and
// subscribes it to that event.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		http.Error(w, "missing event id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", attr.String("event_id", eventID), attr.Error(err))
		return
	}

	c := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), room: eventID}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

// readPump discards client input and unregisters on disconnect.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("Live client closed unexpectedly", attr.String("event_id", c.room), attr.Error(err))
			}
			return
		}
	}
}

func (c *client) writePump() {
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
