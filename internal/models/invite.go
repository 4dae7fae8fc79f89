package models

import "time"

// InviteCode maps a short shareable code to the installer who owns it.
// The code itself is the document ID. One code per installer, no expiry.
type InviteCode struct {
	Code        string    `bson:"_id" json:"code"`
	InstallerID string    `bson:"installer_id" json:"installer_id"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
