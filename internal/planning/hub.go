// internal/planning/hub.go

package planning

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// WSUpdate is the envelope pushed to subscribed clients whenever a group's
// plan or an event changes.
type WSUpdate struct {
	Type      string          `json:"type"`
	GroupID   int64           `json:"group_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// wsCommand is what clients send: subscribe/unsubscribe to a group feed.
type wsCommand struct {
	Action  string `json:"action"`
	GroupID int64  `json:"group_id"`
}

// Hub fans out planning updates to websocket clients by group subscription.
type Hub struct {
	clients    map[*Client]bool
	clientsMux sync.RWMutex

	broadcast  chan WSUpdate
	register   chan *Client
	unregister chan *Client

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan WSUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *Hub) Run() {
	h.wg.Add(1)
	defer func() {
		h.cleanup()
		h.wg.Done()
	}()

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case update := <-h.broadcast:
			h.fanOut(update)

		case <-h.ctx.Done():
			return
		}
	}
}

// BroadcastToGroup queues an update for every client subscribed to the
// group. Safe to call from any goroutine; drops the update if the hub's
// queue is full rather than blocking request handlers.
func (h *Hub) BroadcastToGroup(groupID int64, kind string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("planning: error marshalling ws payload: %v", err)
		return
	}

	update := WSUpdate{
		Type:      kind,
		GroupID:   groupID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	select {
	case h.broadcast <- update:
	default:
		log.Printf("planning: ws broadcast queue full, dropping %s for group %d", kind, groupID)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	h.clients[client] = true
	log.Printf("planning: user %d connected, %d clients total", client.userID, len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if _, exists := h.clients[client]; exists {
		client.close()
		delete(h.clients, client)
		log.Printf("planning: user %d disconnected, %d clients total", client.userID, len(h.clients))
	}
}

func (h *Hub) fanOut(update WSUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("planning: error marshalling ws update: %v", err)
		return
	}

	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	for client := range h.clients {
		if !client.subscribed(update.GroupID) {
			continue
		}
		select {
		case client.send <- data:
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) cleanup() {
	h.clientsMux.Lock()
	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*Client]bool)
	h.clientsMux.Unlock()
}

func (h *Hub) Shutdown() {
	h.cancel()
	h.wg.Wait()
}

func (h *Hub) GetActiveConnections() int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()
	return len(h.clients)
}

// Client is one websocket connection with its group subscriptions.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID int64

	mu     sync.Mutex
	groups map[int64]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
		groups: make(map[int64]bool),
	}
}

func (c *Client) Start() {
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

func (c *Client) subscribed(groupID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.groups[groupID]
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("planning: websocket error: %v", err)
			}
			break
		}
		c.processCommand(message)
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
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

func (c *Client) processCommand(data []byte) {
	var cmd wsCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		log.Printf("planning: invalid ws command: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch cmd.Action {
	case "subscribe":
		c.groups[cmd.GroupID] = true
	case "unsubscribe":
		delete(c.groups, cmd.GroupID)
	default:
		log.Printf("planning: unknown ws action: %s", cmd.Action)
	}
}

func (c *Client) close() {
	close(c.send)
}
