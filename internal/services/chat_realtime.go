package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/models"
)

// Chat event types
const (
	EventTypeMessage     = "message"
	EventTypeTypingStart = "typing_start"
	EventTypeTypingStop  = "typing_stop"
	EventTypeRead        = "read"
	EventTypeError       = "error"
)

const chatChannelPrefix = "chat:room:"

// ChatEvent is the payload broadcast over Redis and WebSocket.
type ChatEvent struct {
	Type      string              `json:"type"`
	Room      string              `json:"room,omitempty"`
	SenderID  string              `json:"sender_id,omitempty"`
	Username  string              `json:"username,omitempty"`
	Message   *models.ChatMessage `json:"message,omitempty"`
	Error     string              `json:"error,omitempty"`
	Timestamp time.Time           `json:"timestamp,omitempty"`
}

// chatHub tracks local subscriber channels per room. The Redis subscriber
// feeds it, so every process instance sees every event.
type chatHub struct {
	mu    sync.RWMutex
	rooms map[string]map[chan ChatEvent]struct{}
}

var (
	hub          = &chatHub{rooms: make(map[string]map[chan ChatEvent]struct{})}
	redisStarted sync.Once
)

// SubscribeRoom registers a local subscriber for a room. The returned channel
// receives events in publish order; call the returned func to unsubscribe.
func SubscribeRoom(room string) (<-chan ChatEvent, func()) {
	ch := make(chan ChatEvent, 32)

	hub.mu.Lock()
	subs, ok := hub.rooms[room]
	if !ok {
		subs = make(map[chan ChatEvent]struct{})
		hub.rooms[room] = subs
	}
	subs[ch] = struct{}{}
	hub.mu.Unlock()

	unsubscribe := func() {
		hub.mu.Lock()
		if subs, ok := hub.rooms[room]; ok {
			if _, present := subs[ch]; present {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(hub.rooms, room)
			}
		}
		hub.mu.Unlock()
	}

	return ch, unsubscribe
}

// fanOutChatEvent delivers an event to all local subscribers of its room.
// Slow consumers are skipped rather than blocking the fan-out; a dropped
// event only loses live delivery, history stays in MongoDB.
func fanOutChatEvent(event ChatEvent) {
	if event.Room == "" {
		return
	}

	hub.mu.RLock()
	defer hub.mu.RUnlock()

	for ch := range hub.rooms[event.Room] {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishChatEvent publishes an event to the room's Redis channel. Messages
// must be persisted before they reach this point.
func PublishChatEvent(ctx context.Context, event ChatEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return database.RedisClient.Publish(ctx, chatChannelPrefix+event.Room, data).Err()
}

// StartRedisChatSubscriber ensures a single shared Redis listener per instance.
func StartRedisChatSubscriber(ctx context.Context) {
	redisStarted.Do(func() {
		go runRedisSubscriber(ctx)
	})
}

func runRedisSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; chat subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.PSubscribe(ctx, chatChannelPrefix+"*")
			defer pubsub.Close()

			log.Println("✅ Chat Redis subscriber started (pattern: chat:room:*)")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event ChatEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal chat event: %v", err)
					continue
				}

				fanOutChatEvent(event)
			}
		}()
	}
}
