package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"solar-app/internal/models"
)

type InviteRepository struct {
	col *mongo.Collection
}

func NewInviteRepository(db *mongo.Database) *InviteRepository {
	return &InviteRepository{col: db.Collection("invite_codes")}
}

func (r *InviteRepository) Create(ctx context.Context, invite *models.InviteCode) error {
	invite.CreatedAt = time.Now()
	_, err := r.col.InsertOne(ctx, invite)
	return err
}

func (r *InviteRepository) FindByCode(ctx context.Context, code string) (*models.InviteCode, error) {
	var invite models.InviteCode
	err := r.col.FindOne(ctx, bson.M{"_id": code}).Decode(&invite)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *InviteRepository) FindByInstaller(ctx context.Context, installerID string) (*models.InviteCode, error) {
	var invite models.InviteCode
	err := r.col.FindOne(ctx, bson.M{"installer_id": installerID}).Decode(&invite)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// IsDuplicateCode reports whether err is the duplicate-key error raised when
// two installers race onto the same generated code.
func IsDuplicateCode(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
