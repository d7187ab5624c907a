package server

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/berfenger/smappee2mqtt/internal/core/domain"

	"go.uber.org/zap"
)

const MessageTypeQuantity = "quantity"

// Message is the websocket envelope of a quantity update.
type Message struct {
	Type      string                `json:"type"`
	Timestamp time.Time             `json:"timestamp"`
	Data      domain.QuantityUpdate `json:"data"`
}

// Hub keeps the connected websocket clients and fans out quantity updates.
// The client set is owned by the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan domain.QuantityUpdate
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	connected  atomic.Int32
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan domain.QuantityUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	h.logger.Debug("websocket hub started")
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			h.logger.Debug("websocket hub stopped")
			return
		case client := <-h.register:
			h.clients[client] = true
			h.connected.Store(int32(len(h.clients)))
			h.logger.Debug("websocket client registered",
				zap.String("remote_addr", client.conn.RemoteAddr().String()),
				zap.Int("total_clients", len(h.clients)))
		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
			}
		case update := <-h.broadcast:
			data, err := json.Marshal(Message{
				Type:      MessageTypeQuantity,
				Timestamp: time.Now(),
				Data:      update,
			})
			if err != nil {
				h.logger.Error("websocket marshal failed", zap.Error(err))
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					h.logger.Warn("websocket client too slow, dropping",
						zap.String("remote_addr", client.conn.RemoteAddr().String()))
					h.drop(client)
				}
			}
		}
	}
}

// Broadcast queues an update for every connected client. It never blocks.
func (h *Hub) Broadcast(update domain.QuantityUpdate) {
	select {
	case h.broadcast <- update:
	default:
		h.logger.Warn("websocket broadcast queue full, update dropped",
			zap.String("service", update.Service),
			zap.String("path", update.Path))
	}
}

// Clients returns the number of registered clients.
func (h *Hub) Clients() int {
	return int(h.connected.Load())
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.connected.Store(int32(len(h.clients)))
}
