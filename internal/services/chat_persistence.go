package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mindhaven/mindhaven-backend/internal/database"
	"github.com/mindhaven/mindhaven-backend/internal/models"
)

const messagesCollection = "messages"

// EnsureChatIndexes configures indexes for the messages collection.
// Called on startup from main after Mongo has connected.
func EnsureChatIndexes(ctx context.Context) error {
	col := database.MongoDB.Collection(messagesCollection)

	indexes := []mongo.IndexModel{
		{
			// (room, timestamp) supports history pagination.
			Keys: bson.D{
				{Key: "room", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_room_timestamp"),
		},
		{
			// (receiver_id, is_read) supports unread counts per contact.
			Keys: bson.D{
				{Key: "receiver_id", Value: 1},
				{Key: "is_read", Value: 1},
			},
			Options: options.Index().SetName("idx_receiver_unread"),
		},
	}

	for _, m := range indexes {
		if _, err := col.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// SaveChatMessage persists a message synchronously. Persistence happens
// before any broadcast so delivery order matches storage order.
func SaveChatMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	col := database.MongoDB.Collection(messagesCollection)
	res, err := col.InsertOne(ctx, msg)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid
	}

	PushMessageToRecentCache(*msg)
	return msg, nil
}

// LoadChatMessages returns paginated history for a room.
// Pagination is based on timestamp + limit (newest-first scrolling); the
// returned slice is oldest-first for display.
func LoadChatMessages(ctx context.Context, room string, before *time.Time, limit int64) ([]models.ChatMessage, bool, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	col := database.MongoDB.Collection(messagesCollection)

	filter := bson.M{"room": room}
	if before != nil {
		filter["timestamp"] = bson.M{"$lt": before.UTC()}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit + 1)

	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	var msgs []models.ChatMessage
	for cur.Next(ctx) {
		var m models.ChatMessage
		if err := cur.Decode(&m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	if err := cur.Err(); err != nil {
		return nil, false, err
	}

	hasMore := int64(len(msgs)) > limit
	if hasMore {
		msgs = msgs[:len(msgs)-1]
	}

	// Reverse to oldest-first for the UI.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return msgs, hasMore, nil
}

// MarkConversationRead flips is_read on every unread message sent to
// receiverID in the room. Called when the receiver opens the conversation.
func MarkConversationRead(ctx context.Context, room, receiverID string) (int64, error) {
	col := database.MongoDB.Collection(messagesCollection)
	res, err := col.UpdateMany(ctx,
		bson.M{"room": room, "receiver_id": receiverID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountUnread returns how many unread messages senderID has sent to receiverID.
func CountUnread(ctx context.Context, receiverID, senderID string) (int64, error) {
	col := database.MongoDB.Collection(messagesCollection)
	return col.CountDocuments(ctx, bson.M{
		"receiver_id": receiverID,
		"sender_id":   senderID,
		"is_read":     false,
	})
}

// ListMessageSenders returns the distinct sender IDs who have messaged userID.
// Therapists use this as their contact list.
func ListMessageSenders(ctx context.Context, userID string) ([]string, error) {
	col := database.MongoDB.Collection(messagesCollection)
	raw, err := col.Distinct(ctx, "sender_id", bson.M{"receiver_id": userID})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}
