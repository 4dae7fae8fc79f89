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

type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection("notifications")}
}

func (r *NotificationRepository) Create(ctx context.Context, notif *models.Notification) error {
	notif.ID = primitive.NewObjectID()
	notif.Read = false
	notif.CreatedAt = time.Now()
	_, err := r.col.InsertOne(ctx, notif)
	return err
}

func (r *NotificationRepository) ByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(50)
	cursor, err := r.col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	var notifications []models.Notification
	err = cursor.All(ctx, &notifications)
	return notifications, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"read": true}})
	return err
}
