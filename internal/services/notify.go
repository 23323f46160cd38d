package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/cipherpoint/cipherpoint-backend/internal/database"
	"github.com/cipherpoint/cipherpoint-backend/internal/models"
)

// NotifyChannel is the Redis Pub/Sub channel events travel over, so every
// server instance can reach recipients connected elsewhere.
const NotifyChannel = "cipherpoint:events"

// NotifyEvent is pushed to a recipient's WebSocket when a message lands in
// one of their conversations. It carries metadata only: never ciphertext,
// passwords, or plaintext.
type NotifyEvent struct {
	Type        string             `json:"type"`
	MessageID   string             `json:"message_id"`
	SenderID    string             `json:"sender_id"`
	RecipientID string             `json:"recipient_id"`
	Kind        models.MessageKind `json:"kind"`
	Timestamp   time.Time          `json:"timestamp"`
}

// NotifyConn is the minimal interface our WebSocket implementation must satisfy.
type NotifyConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// NotifyHub is a registry of connected users. One connection per user; a new
// connection replaces the old one.
type NotifyHub struct {
	mu          sync.RWMutex
	connections map[string]NotifyConn
}

func NewNotifyHub() *NotifyHub {
	return &NotifyHub{connections: make(map[string]NotifyConn)}
}

// Register registers or replaces a user's connection.
func (h *NotifyHub) Register(userID string, conn NotifyConn) {
	h.mu.Lock()
	if old, ok := h.connections[userID]; ok {
		old.Close()
	}
	h.connections[userID] = conn
	h.mu.Unlock()
}

// Unregister removes a user's connection if it is still the registered one.
func (h *NotifyHub) Unregister(userID string, conn NotifyConn) {
	h.mu.Lock()
	if h.connections[userID] == conn {
		delete(h.connections, userID)
	}
	h.mu.Unlock()
}

// MessageCreated implements MessagePublisher. The event goes through Redis
// Pub/Sub when available so other instances can deliver it; without Redis it
// falls back to local delivery.
func (h *NotifyHub) MessageCreated(ctx context.Context, msg *models.ConversationMessage) {
	event := NotifyEvent{
		Type:        "message_received",
		MessageID:   msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Kind:        msg.Kind,
		Timestamp:   msg.CreatedAt,
	}

	if database.RedisClient == nil {
		h.deliver(event)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := database.RedisClient.Publish(ctx, NotifyChannel, payload).Err(); err != nil {
		log.Printf("notify: publish failed, delivering locally: %v", err)
		h.deliver(event)
	}
}

// Start subscribes to the Redis channel and fans incoming events out to local
// connections. Runs until the context is cancelled.
func (h *NotifyHub) Start(ctx context.Context) {
	if database.RedisClient == nil {
		return
	}
	sub := database.RedisClient.Subscribe(ctx, NotifyChannel)

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var event NotifyEvent
				if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
					continue
				}
				h.deliver(event)
			}
		}
	}()
}

func (h *NotifyHub) deliver(event NotifyEvent) {
	h.mu.RLock()
	conn, ok := h.connections[event.RecipientID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := conn.WriteJSON(event); err != nil {
		h.Unregister(event.RecipientID, conn)
	}
}
