package game

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const clientQueueSize = 16

// Client is one websocket connection. Outbound frames go through a buffered
// queue drained by a single writer goroutine, so concurrent senders never
// interleave writes or block on a slow peer.
type Client struct {
	conn      *websocket.Conn
	accountID string

	out  chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn, accountID string) *Client {
	return &Client{
		conn:      conn,
		accountID: accountID,
		out:       make(chan []byte, clientQueueSize),
		done:      make(chan struct{}),
	}
}

func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[WS] Write error for account %s: %v", c.accountID, err)
				return
			}
		}
	}
}

// enqueue drops the frame when the client's queue is full or the client is
// closing, never blocking the caller.
func (c *Client) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.out <- data:
	default:
		log.Printf("[WS] Send queue full for account %s, dropping message", c.accountID)
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Hub fans messages out to connected players. Round reveals broadcast to
// everyone; climb ticks and parity countdowns are per-player, so the hub also
// routes by account id.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*Client]struct{}
	broadcast chan interface{}
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan interface{}, 100),
	}
}

// Run drains the broadcast queue until the channel closes. Registration is
// synchronous; only fan-out is decoupled from the senders.
func (h *Hub) Run() {
	for message := range h.broadcast {
		data, err := json.Marshal(message)
		if err != nil {
			log.Printf("[WS] Marshal error: %v", err)
			continue
		}
		h.mu.RLock()
		for client := range h.clients {
			client.enqueue(data)
		}
		h.mu.RUnlock()
	}
}

func (h *Hub) Broadcast(message interface{}) {
	select {
	case h.broadcast <- message:
	default:
		log.Println("[WS] Broadcast channel full, dropping message")
	}
}

// SendToAccount delivers a message to every connection of one player.
func (h *Hub) SendToAccount(accountID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.accountID == accountID {
			client.enqueue(data)
		}
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RegisterClient wraps the connection, starts its writer and returns the
// handle the caller passes back to UnregisterClient.
func (h *Hub) RegisterClient(conn *websocket.Conn, accountID string) *Client {
	client := newClient(conn, accountID)

	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	go client.writeLoop()
	log.Printf("[WS] Client connected: %s (Total: %d)", accountID, total)
	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		client.close()
		log.Printf("[WS] Client disconnected: %s (Total: %d)", client.accountID, total)
	}
}
