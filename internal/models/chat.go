package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage is a direct message between two users, stored in MongoDB.
// Immutable once created except for the IsRead flag.
type ChatMessage struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Room             string             `bson:"room" json:"room"`
	SenderID         string             `bson:"sender_id" json:"sender_id"`
	SenderUsername   string             `bson:"sender_username" json:"sender_username"`
	ReceiverID       string             `bson:"receiver_id" json:"receiver_id"`
	ReceiverUsername string             `bson:"receiver_username" json:"receiver_username"`
	Content          string             `bson:"content" json:"content"`
	Timestamp        time.Time          `bson:"timestamp" json:"timestamp"`
	IsRead           bool               `bson:"is_read" json:"is_read"`
}

// RoomKey derives the broadcast room for a pair of users: the sorted username
// pair, so both sides always compute the same key.
func RoomKey(a, b string) string {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}
