package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mindhaven/mindhaven-backend/internal/middleware"
	"github.com/mindhaven/mindhaven-backend/internal/models"
	"github.com/mindhaven/mindhaven-backend/internal/services"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced at the HTTP layer.
		return true
	},
}

// ChatClientMessage represents frames coming from the frontend over WebSocket.
type ChatClientMessage struct {
	Type string `json:"type"` // "message", "typing_start", "typing_stop", "read", "ping"
	Text string `json:"text,omitempty"`
}

// canChatWith reports whether a direct conversation between the two users is
// allowed. Conversations pair a client with a therapist; admins may message
// anyone.
func canChatWith(user, peer *models.User) bool {
	if !peer.IsActive {
		return false
	}
	if user.Role == models.RoleAdmin || peer.Role == models.RoleAdmin {
		return true
	}
	userIsTherapist := user.Role == models.RoleTherapist
	peerIsTherapist := peer.Role == models.RoleTherapist
	return userIsTherapist != peerIsTherapist
}

// ChatWebSocket handles real-time direct chat. The connection is bound to one
// conversation via the `peer` query parameter (the other user's username).
// Auth uses the session token, passed as a query parameter by browsers.
func ChatWebSocket(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	peerName := strings.TrimSpace(r.URL.Query().Get("peer"))
	if peerName == "" {
		writeError(w, http.StatusBadRequest, "peer is required")
		return
	}

	peer, err := services.GetUserByUsername(r.Context(), peerName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if peer == nil || !canChatWith(user, peer) {
		writeError(w, http.StatusForbidden, "You cannot chat with this user")
		return
	}

	room := models.RoomKey(user.Username, peer.Username)

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local events for this room, fed by the shared Redis subscriber.
	eventsCh, unsubscribe := services.SubscribeRoom(room)
	defer unsubscribe()

	go func() {
		for evt := range eventsCh {
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}()

	conn.SetReadLimit(64 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

		var msg ChatClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "message":
			handleIncomingChatMessage(ctx, conn, user, peer, room, msg)
		case "typing_start":
			_ = services.PublishChatEvent(ctx, services.ChatEvent{
				Type:     services.EventTypeTypingStart,
				Room:     room,
				SenderID: user.ID.String(),
				Username: user.Username,
			})
		case "typing_stop":
			_ = services.PublishChatEvent(ctx, services.ChatEvent{
				Type:     services.EventTypeTypingStop,
				Room:     room,
				SenderID: user.ID.String(),
				Username: user.Username,
			})
		case "read":
			if _, err := services.MarkConversationRead(ctx, room, user.ID.String()); err == nil {
				services.InvalidateRecentCache(ctx, room)
				_ = services.PublishChatEvent(ctx, services.ChatEvent{
					Type:     services.EventTypeRead,
					Room:     room,
					SenderID: user.ID.String(),
					Username: user.Username,
				})
			}
		case "ping":
			// Read deadline already refreshed above.
		default:
			// Ignore unknown types
		}
	}
}

// handleIncomingChatMessage persists to MongoDB first, then publishes via
// Redis so every instance relays it to connected peers.
func handleIncomingChatMessage(
	ctx context.Context,
	conn *websocket.Conn,
	user, peer *models.User,
	room string,
	msg ChatClientMessage,
) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	chatMsg := &models.ChatMessage{
		Room:             room,
		SenderID:         user.ID.String(),
		SenderUsername:   user.Username,
		ReceiverID:       peer.ID.String(),
		ReceiverUsername: peer.Username,
		Content:          text,
	}

	saved, err := services.SaveChatMessage(ctx, chatMsg)
	if err != nil {
		_ = conn.WriteJSON(services.ChatEvent{
			Type:      services.EventTypeError,
			Room:      room,
			Error:     "failed to persist message",
			Timestamp: time.Now().UTC(),
		})
		return
	}

	_ = services.PublishChatEvent(ctx, services.ChatEvent{
		Type:    services.EventTypeMessage,
		Room:    room,
		Message: saved,
	})
}
