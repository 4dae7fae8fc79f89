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

type GuideRepository struct {
	col *mongo.Collection
}

func NewGuideRepository(db *mongo.Database) *GuideRepository {
	return &GuideRepository{col: db.Collection("guides")}
}

func (r *GuideRepository) Create(ctx context.Context, guide *models.Guide) error {
	guide.ID = primitive.NewObjectID()
	guide.CreatedAt = time.Now()
	_, err := r.col.InsertOne(ctx, guide)
	return err
}

// ByInstaller is the only read path: guides are always scoped to a single
// installer, for the installer's own dashboard and for that installer's
// clients alike.
func (r *GuideRepository) ByInstaller(ctx context.Context, installerID string) ([]models.Guide, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"installer_id": installerID}, opts)
	if err != nil {
		return nil, err
	}
	var guides []models.Guide
	err = cursor.All(ctx, &guides)
	return guides, err
}

func (r *GuideRepository) CountByInstaller(ctx context.Context, installerID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"installer_id": installerID})
}
