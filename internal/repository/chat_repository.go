package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"solar-app/internal/models"
)

// messageWindow caps how much history a conversation loads.
const messageWindow = 100

type ChatRepository struct {
	col *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{col: db.Collection("chat_messages")}
}

func (r *ChatRepository) Add(ctx context.Context, msg *models.ChatMessage) error {
	msg.ID = primitive.NewObjectID()
	msg.Read = false
	msg.CreatedAt = time.Now()
	_, err := r.col.InsertOne(ctx, msg)
	return err
}

// ByRoom returns the most recent messages of the conversation in ascending
// order. The query walks newest-first so the cap keeps the latest window,
// then the slice is reversed for display order.
func (r *ChatRepository) ByRoom(ctx context.Context, room string) ([]models.ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(messageWindow)
	cursor, err := r.col.Find(ctx, bson.M{"room": room}, opts)
	if err != nil {
		return nil, err
	}
	var messages []models.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkRead flips every unread message in the room that the viewer did not
// author. Used when the chat panel is open on the viewer's side.
func (r *ChatRepository) MarkRead(ctx context.Context, room, viewerID string) (int64, error) {
	res, err := r.col.UpdateMany(ctx, bson.M{
		"room":      room,
		"read":      false,
		"sender_id": bson.M{"$ne": viewerID},
	}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountUnread counts without mutating, for the closed-panel badge.
func (r *ChatRepository) CountUnread(ctx context.Context, room, viewerID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"room":      room,
		"read":      false,
		"sender_id": bson.M{"$ne": viewerID},
	})
}
