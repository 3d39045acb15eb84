package services

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/bellapacxx/bingo-operator/utils/logger"
)

// Game lifecycle event types pushed to connected dashboards.
const (
	EventGameStarted  = "gameStarted"
	EventGameEnded    = "gameEnded"
	EventGameCanceled = "gameCanceled"
)

// GameEvent is one lifecycle notification.
type GameEvent struct {
	Type    string    `json:"type"`
	GameID  uint      `json:"gameId"`
	AdminID uint      `json:"adminId"`
	At      time.Time `json:"at"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventHub fans game lifecycle events out to websocket subscribers.
type EventHub struct {
	mu      sync.RWMutex
	clients map[*eventClient]bool
}

type eventClient struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *eventClient) close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

func NewEventHub() *EventHub {
	return &EventHub{clients: make(map[*eventClient]bool)}
}

// HandleWebSocket upgrades the connection and registers it for events.
func (h *EventHub) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("[WS] upgrade error: %v", err)
		return
	}

	client := &eventClient{
		conn: conn,
		send: make(chan []byte, 32),
	}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	logger.Infof("[WS] event subscriber connected (total=%d)", h.count())

	go client.writePump()
	go h.readPump(client)
}

func (h *EventHub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *EventHub) remove(client *eventClient) {
	h.mu.Lock()
	if h.clients[client] {
		delete(h.clients, client)
		client.close()
	}
	h.mu.Unlock()
}

// Broadcast sends an event to every subscriber, dropping it for clients
// whose send buffer is full.
func (h *EventHub) Broadcast(ev GameEvent) {
	b, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("[WS] marshal event: %v", err)
		return
	}

	h.mu.RLock()
	clients := make([]*eventClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		// a subscriber may unregister (closing its send channel) between the
		// snapshot above and this send; recover per client so one dead
		// connection cannot fail the whole broadcast
		func(c *eventClient) {
			defer func() {
				if r := recover(); r != nil {
					logger.Warnf("[WS] recovered broadcast to closed subscriber: %v", r)
				}
			}()
			select {
			case c.send <- b:
			default:
				logger.Warnf("[WS] dropping %s event for slow subscriber", ev.Type)
			}
		}(c)
	}
}

// readPump discards inbound frames; the feed is one-way. A read error
// unregisters the client.
func (h *EventHub) readPump(c *eventClient) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("[WS] subscriber disconnected")
			} else {
				logger.Debugf("[WS] read error: %v", err)
			}
			return
		}
	}
}

func (c *eventClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debugf("[WS] write error: %v", err)
			return
		}
	}
}
