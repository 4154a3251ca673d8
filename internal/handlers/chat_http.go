package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mindhaven/mindhaven-backend/internal/middleware"
	"github.com/mindhaven/mindhaven-backend/internal/models"
	"github.com/mindhaven/mindhaven-backend/internal/services"
)

// ListChatContacts returns who the user can message, with unread counts.
// Clients see approved therapists; therapists see everyone who has written
// to them plus their appointment clients.
func ListChatContacts(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var contacts []*models.User
	switch user.Role {
	case models.RoleAdmin:
		for _, role := range []string{models.RoleClient, models.RoleTherapist} {
			users, err := services.ListUsersByRole(ctx, role, false)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to load contacts")
				return
			}
			for i := range users {
				contacts = append(contacts, &users[i])
			}
		}
	case models.RoleClient:
		therapists, err := services.ListUsersByRole(ctx, models.RoleTherapist, true)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load contacts")
			return
		}
		for i := range therapists {
			contacts = append(contacts, &therapists[i])
		}
	default:
		senderIDs, err := services.ListMessageSenders(ctx, user.ID.String())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load contacts")
			return
		}
		seen := map[uuid.UUID]bool{}
		for _, sid := range senderIDs {
			id, err := uuid.Parse(sid)
			if err != nil || seen[id] {
				continue
			}
			seen[id] = true
			if contact, err := services.GetUserByID(ctx, id); err == nil && contact != nil && contact.IsActive {
				contacts = append(contacts, contact)
			}
		}
	}

	out := make([]map[string]interface{}, 0, len(contacts))
	for _, c := range contacts {
		if c.ID == user.ID {
			continue
		}
		unread, err := services.CountUnread(ctx, user.ID.String(), c.ID.String())
		if err != nil {
			unread = 0
		}
		entry := map[string]interface{}{
			"id":       c.ID.String(),
			"username": c.Username,
			"role":     c.Role,
			"unread":   unread,
		}
		if c.ProfilePictureURL.Valid {
			entry["profile_picture_url"] = c.ProfilePictureURL.String
		}
		out = append(out, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"contacts": out,
	})
}

// LoadChatHistory loads paginated messages for one conversation.
// Query params:
//
//	peer   (required, the other user's username)
//	before (optional RFC3339 timestamp for pagination)
//	limit  (optional, default 50, max 100)
func LoadChatHistory(w http.ResponseWriter, r *http.Request) {
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

	limit := int64(50)
	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if parsed, err := strconv.ParseInt(lStr, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var before *time.Time
	if bStr := r.URL.Query().Get("before"); bStr != "" {
		if t, err := time.Parse(time.RFC3339, bStr); err == nil {
			before = &t
		}
	}

	room := models.RoomKey(user.Username, peer.Username)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msgs, hasMore, err := services.LoadChatMessagesWithCache(ctx, room, before, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"messages": msgs,
		"has_more": hasMore,
	})
}

// MarkChatRead marks every message the peer sent in this conversation as read.
func MarkChatRead(w http.ResponseWriter, r *http.Request) {
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
	if peer == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	room := models.RoomKey(user.Username, peer.Username)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	updated, err := services.MarkConversationRead(ctx, room, user.ID.String())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to mark messages read")
		return
	}
	if updated > 0 {
		services.InvalidateRecentCache(ctx, room)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"updated": updated,
	})
}
