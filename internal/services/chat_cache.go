package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/models"
)

const (
	chatRecentKeyPrefix = "chat:recent:"
	chatRecentMaxLen    = 50
	chatRecentTTL       = 1 * time.Hour
)

func chatRecentKey(room string) string {
	return chatRecentKeyPrefix + room
}

// PushMessageToRecentCache adds a message to the Redis recent cache (newest at
// head). Called after saving to Mongo. LPUSH + LTRIM keeps the last 50.
func PushMessageToRecentCache(msg models.ChatMessage) {
	if database.RedisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := chatRecentKey(msg.Room)
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	pipe := database.RedisClient.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, chatRecentMaxLen-1)
	pipe.Expire(ctx, key, chatRecentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("chat_cache: push failed for room %s: %v", msg.Room, err)
	}
}

// GetRecentMessagesFromCache returns the most recent messages for a room
// (oldest-first). Only valid for the initial page. Returns (nil, false) on miss.
func GetRecentMessagesFromCache(ctx context.Context, room string) ([]models.ChatMessage, bool) {
	if database.RedisClient == nil {
		return nil, false
	}

	raw, err := database.RedisClient.LRange(ctx, chatRecentKey(room), 0, -1).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}

	var msgs []models.ChatMessage
	for i := len(raw) - 1; i >= 0; i-- {
		var m models.ChatMessage
		if json.Unmarshal([]byte(raw[i]), &m) != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, true
}

// LoadChatMessagesWithCache returns history for a room. For the initial load
// (before == nil) it tries Redis first; on miss it reads Mongo and warms the
// cache.
func LoadChatMessagesWithCache(ctx context.Context, room string, before *time.Time, limit int64) ([]models.ChatMessage, bool, error) {
	if before == nil && limit <= chatRecentMaxLen {
		if cached, ok := GetRecentMessagesFromCache(ctx, room); ok {
			out := cached
			if int64(len(cached)) > limit {
				out = cached[len(cached)-int(limit):]
			}
			hasMore := int64(len(cached)) >= limit
			return out, hasMore, nil
		}
	}

	msgs, hasMore, err := LoadChatMessages(ctx, room, before, limit)
	if err != nil {
		return nil, false, err
	}
	if before == nil && len(msgs) > 0 {
		WarmRecentCache(ctx, room, msgs)
	}
	return msgs, hasMore, nil
}

// WarmRecentCache stores messages in Redis (oldest at tail).
func WarmRecentCache(ctx context.Context, room string, msgs []models.ChatMessage) {
	if database.RedisClient == nil || len(msgs) == 0 {
		return
	}

	key := chatRecentKey(room)
	pipe := database.RedisClient.Pipeline()
	pipe.Del(ctx, key)
	for i := len(msgs) - 1; i >= 0; i-- {
		data, err := json.Marshal(msgs[i])
		if err != nil {
			continue
		}
		pipe.RPush(ctx, key, data)
	}
	pipe.LTrim(ctx, key, 0, chatRecentMaxLen-1)
	pipe.Expire(ctx, key, chatRecentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("chat_cache: warm failed for room %s: %v", room, err)
	}
}

// InvalidateRecentCache drops the cached page for a room. Called after a
// read-state change so cached messages do not show stale is_read flags.
func InvalidateRecentCache(ctx context.Context, room string) {
	if database.RedisClient == nil {
		return
	}
	database.RedisClient.Del(ctx, chatRecentKey(room))
}
