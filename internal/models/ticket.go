package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TicketStatus string

const (
	StatusPending    TicketStatus = "pending"
	StatusInProgress TicketStatus = "in-progress"
	StatusResolved   TicketStatus = "resolved"
)

type Ticket struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required"`
	Description string             `bson:"description" json:"description" validate:"required"`
	ClientID    string             `bson:"client_id" json:"client_id"`
	ClientName  string             `bson:"client_name" json:"client_name"`
	InstallerID string             `bson:"installer_id" json:"installer_id"`
	Status      TicketStatus       `bson:"status" json:"status"`
	Response    string             `bson:"response,omitempty" json:"response,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	RespondedAt time.Time          `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
}

func (t Ticket) StreamID() string { return t.ID.Hex() }

// StreamRev changes whenever the mutable part of a ticket changes, so the
// stream diff reports a "modified" change for status/response transitions.
func (t Ticket) StreamRev() string {
	return strings.Join([]string{
		string(t.Status),
		t.Response,
		t.UpdatedAt.UTC().Format(time.RFC3339Nano),
		t.RespondedAt.UTC().Format(time.RFC3339Nano),
	}, "|")
}
