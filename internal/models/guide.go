package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CategoryMaintenance     = "maintenance"
	CategoryTroubleshooting = "troubleshooting"
	CategorySafety          = "safety"
	CategoryOptimization    = "optimization"
)

type Guide struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required"`
	Category    string             `bson:"category" json:"category" validate:"required,oneof=maintenance troubleshooting safety optimization"`
	Content     string             `bson:"content" json:"content" validate:"required"`
	InstallerID string             `bson:"installer_id" json:"installer_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

func (g Guide) StreamID() string  { return g.ID.Hex() }
func (g Guide) StreamRev() string { return g.CreatedAt.UTC().Format(time.RFC3339Nano) }
