package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	// Bearer auth runs before the upgrade, so the origin is not trusted for identity
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

type envelope struct {
	orgID   string
	message Message
}

type Client struct {
	conn   *websocket.Conn
	send   chan Message
	hub    *Hub
	orgID  string
	logger *logrus.Entry
}

// Hub keeps one client set per organization. Messages never cross organizations.
type Hub struct {
	clients    map[string]map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logrus.Entry
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.WithField("component", "websocket"),
	}
}

// Run serves register, unregister and broadcast until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mutex.Lock()
			for _, set := range h.clients {
				for client := range set {
					close(client.send)
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			set, ok := h.clients[client.orgID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.orgID] = set
			}
			set[client] = true
			count := len(set)
			h.mutex.Unlock()
			h.logger.WithFields(logrus.Fields{"organization_id": client.orgID, "client_count": count}).Info("client connected")

		case client := <-h.unregister:
			h.removeClient(client)

		case env := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients[env.orgID] {
				select {
				case client.send <- env.message:
				default:
					// slow consumer
					delete(h.clients[env.orgID], client)
					close(client.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	set := h.clients[client.orgID]
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.orgID)
	}
	h.logger.WithField("organization_id", client.orgID).Info("client disconnected")
}

// Broadcast queues a message for every client of orgID. Drops when the queue is full.
func (h *Hub) Broadcast(orgID, messageType string, data interface{}) {
	message := Message{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	select {
	case h.broadcast <- envelope{orgID: orgID, message: message}:
	default:
		h.logger.Warn("broadcast channel full, dropping message")
	}
}

// ServeClient upgrades the request and attaches the connection to orgID
func (h *Hub) ServeClient(w http.ResponseWriter, r *http.Request, orgID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Error("failed to upgrade to websocket")
		return err
	}

	client := &Client{
		conn:   conn,
		send:   make(chan Message, sendBuffer),
		hub:    h,
		orgID:  orgID,
		logger: h.logger.WithField("organization_id", orgID),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return context.Canceled
	}

	go client.writePump()
	go client.readPump()
	return nil
}

// ClientCount returns the number of connected clients for orgID
func (h *Hub) ClientCount(orgID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[orgID])
}

// readPump only drains control frames; the feed is one-way
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("websocket read error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.WithError(err).Debug("websocket write failed")
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
