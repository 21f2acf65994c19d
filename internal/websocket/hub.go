package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/mediaforge/api/internal/model"
)

// Client represents a WebSocket client watching one pipeline.
type Client struct {
	PipelineID string
	Conn       *websocket.Conn
	Send       chan []byte
}

// Hub maintains active WebSocket connections grouped by pipeline id and
// fans state-transition broadcasts out to them.
type Hub struct {
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

// BroadcastMessage represents a message to broadcast.
type BroadcastMessage struct {
	PipelineID string
	Message    []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.PipelineID] == nil {
				h.clients[client.PipelineID] = make(map[*Client]bool)
			}
			h.clients[client.PipelineID][client] = true
			h.mu.Unlock()
			log.Printf("Client registered for pipeline %s", client.PipelineID)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.PipelineID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.clients, client.PipelineID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("Client unregistered from pipeline %s", client.PipelineID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			if clients, ok := h.clients[msg.PipelineID]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.Message:
					default:
						close(client.Send)
						delete(clients, client)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a new client.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastState sends a state transition to all pipeline subscribers.
func (h *Hub) BroadcastState(pipelineID string, state model.PipelineState, errDetail *string) {
	msg := model.WSStateMessage{
		Type:       model.WSMessageTypeState,
		PipelineID: pipelineID,
		State:      state,
		Error:      errDetail,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal state message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		PipelineID: pipelineID,
		Message:    data,
	}
}

// BroadcastError sends a subscription error to all pipeline subscribers.
func (h *Hub) BroadcastError(pipelineID string, code, message string) {
	msg := model.WSErrorMessage{
		Type:       model.WSMessageTypeError,
		PipelineID: pipelineID,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal error message: %v", err)
		return
	}

	h.broadcast <- &BroadcastMessage{
		PipelineID: pipelineID,
		Message:    data,
	}
}

// HandleConnection handles a WebSocket connection for one pipeline id.
func (h *Hub) HandleConnection(c *websocket.Conn, pipelineID string) {
	client := &Client{
		PipelineID: pipelineID,
		Conn:       c,
		Send:       make(chan []byte, 256),
	}

	h.Register(client)
	defer h.Unregister(client)

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				ping, _ := json.Marshal(model.WSStateMessage{Type: model.WSMessageTypePing, PipelineID: pipelineID})
				if err := c.WriteMessage(websocket.TextMessage, ping); err != nil {
					return
				}
			}
		}
	}()

	// Drain client messages until the connection drops; unregistering
	// closes Send, which stops the writer.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
