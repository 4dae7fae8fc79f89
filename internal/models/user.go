package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleInstaller = "installer"
	RoleClient    = "client"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email" validate:"required,email"`
	Password string             `bson:"password" json:"-" validate:"required,min=6"`
	Role     string             `bson:"role" json:"role" validate:"required,oneof=installer client"`

	// Installer profile
	CompanyName string `bson:"company_name,omitempty" json:"company_name,omitempty"`
	Location    string `bson:"location,omitempty" json:"location,omitempty"`

	// Client profile
	FullName      string `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Address       string `bson:"address,omitempty" json:"address,omitempty"`
	InstallerID   string `bson:"installer_id,omitempty" json:"installer_id,omitempty"`
	InstallerName string `bson:"installer_name,omitempty" json:"installer_name,omitempty"`

	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty" validate:"omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

// StreamID and StreamRev let the stream package diff user result sets.
// Users never mutate inside a client list, so the revision is creation time.
func (u User) StreamID() string  { return u.ID.Hex() }
func (u User) StreamRev() string { return u.CreatedAt.UTC().Format(time.RFC3339Nano) }
