package models

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatMessage struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Room       string             `bson:"room" json:"room"`
	Text       string             `bson:"text" json:"text" validate:"required"`
	SenderID   string             `bson:"sender_id" json:"sender_id"`
	SenderRole string             `bson:"sender_role" json:"sender_role"`
	ReceiverID string             `bson:"receiver_id" json:"receiver_id"`
	Read       bool               `bson:"read" json:"read"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// ChatRoom builds the conversation key for two participants. The key is
// order-independent so both sides always land in the same room.
func ChatRoom(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "_" + b
}

func (m ChatMessage) StreamID() string  { return m.ID.Hex() }
func (m ChatMessage) StreamRev() string { return strconv.FormatBool(m.Read) }
