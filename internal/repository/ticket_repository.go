package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"solar-app/internal/models"
)

type TicketRepository struct {
	col *mongo.Collection
}

func NewTicketRepository(db *mongo.Database) *TicketRepository {
	return &TicketRepository{col: db.Collection("tickets")}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	ticket.ID = primitive.NewObjectID()
	ticket.Status = models.StatusPending
	ticket.CreatedAt = time.Now()
	_, err := r.col.InsertOne(ctx, ticket)
	return err
}

func (r *TicketRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepository) ByInstaller(ctx context.Context, installerID string) ([]models.Ticket, error) {
	return r.find(ctx, bson.M{"installer_id": installerID})
}

func (r *TicketRepository) ByClient(ctx context.Context, clientID string) ([]models.Ticket, error) {
	return r.find(ctx, bson.M{"client_id": clientID})
}

func (r *TicketRepository) CountPending(ctx context.Context, installerID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{
		"installer_id": installerID,
		"status":       models.StatusPending,
	})
}

// MarkInProgress flips a pending ticket owned by the installer to
// in-progress and returns the updated document. The status constraint is part
// of the filter, so the transition is checked and applied in one command.
func (r *TicketRepository) MarkInProgress(ctx context.Context, id primitive.ObjectID, installerID string) (*models.Ticket, error) {
	filter := bson.M{
		"_id":          id,
		"installer_id": installerID,
		"status":       models.StatusPending,
	}
	update := bson.M{"$set": bson.M{
		"status":     models.StatusInProgress,
		"updated_at": time.Now(),
	}}
	return r.findAndUpdate(ctx, filter, update)
}

// Resolve sets the response and flips any non-resolved ticket owned by the
// installer to resolved in a single update.
func (r *TicketRepository) Resolve(ctx context.Context, id primitive.ObjectID, installerID, response string) (*models.Ticket, error) {
	filter := bson.M{
		"_id":          id,
		"installer_id": installerID,
		"status":       bson.M{"$ne": models.StatusResolved},
	}
	update := bson.M{"$set": bson.M{
		"status":       models.StatusResolved,
		"response":     response,
		"responded_at": time.Now(),
	}}
	return r.findAndUpdate(ctx, filter, update)
}

func (r *TicketRepository) find(ctx context.Context, filter bson.M) ([]models.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var tickets []models.Ticket
	err = cursor.All(ctx, &tickets)
	return tickets, err
}

func (r *TicketRepository) findAndUpdate(ctx context.Context, filter, update bson.M) (*models.Ticket, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var ticket models.Ticket
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&ticket)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
