package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Hub tracks which websocket connections are watching which chat.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]bool)}
}

// Add registers a connection in a chat room.
func (h *Hub) Add(chatID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[chatID][conn] = true
}

// Remove drops a connection from a chat room.
func (h *Hub) Remove(chatID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[chatID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// Broadcast writes the payload to every connection in the chat's room.
// Connections that fail to write are closed and evicted.
func (h *Hub) Broadcast(chatID string, payload []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[chatID]))
	for conn := range h.rooms[chatID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			conn.Close()
			h.Remove(chatID, conn)
		}
	}
}

// Listener bridges the Redis pub/sub channel into the hub.
type Listener struct {
	client *redis.Client
	hub    *Hub
	logger *zap.Logger
}

func NewListener(client *redis.Client, hub *Hub, logger *zap.Logger) *Listener {
	return &Listener{client: client, hub: hub, logger: logger}
}

// Run subscribes to the message event channel and fans events out until the
// context is cancelled. Malformed payloads are logged and skipped.
func (l *Listener) Run(ctx context.Context) error {
	sub := l.client.Subscribe(ctx, Channel)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Channel():
			if !ok {
				return nil
			}
			var event MessageEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				l.logger.Warn("dropping malformed message event", zap.Error(err))
				continue
			}
			l.hub.Broadcast(event.ChatID, []byte(msg.Payload))
		}
	}
}
