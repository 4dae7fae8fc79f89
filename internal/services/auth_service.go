package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"solar-app/internal/models"
	"solar-app/internal/stream"
	"solar-app/internal/utils"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	InstallerByID(ctx context.Context, id string) (*models.User, error)
	ClientsOfInstaller(ctx context.Context, installerID string) ([]models.User, error)
	CountClientsOfInstaller(ctx context.Context, installerID string) (int64, error)
}

type AuthService struct {
	repo    UserRepository
	invites *InviteService
	jwt     *utils.JWTUtil
	redis   *utils.RedisClient
	feed    *stream.Feed
}

func NewAuthService(repo UserRepository, invites *InviteService, jwt *utils.JWTUtil, redis *utils.RedisClient, feed *stream.Feed) *AuthService {
	return &AuthService{repo: repo, invites: invites, jwt: jwt, redis: redis, feed: feed}
}

type InstallerSignup struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	CompanyName string `json:"company_name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Location    string `json:"location" validate:"required"`
}

type ClientSignup struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	FullName   string `json:"full_name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Address    string `json:"address" validate:"required"`
	InviteCode string `json:"invite_code" validate:"required"`
}

func (s *AuthService) RegisterInstaller(ctx context.Context, req InstallerSignup) (string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return "", err
	}

	user := &models.User{
		Email:       req.Email,
		Password:    req.Password,
		Role:        models.RoleInstaller,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		Location:    req.Location,
	}
	if err := s.create(ctx, user); err != nil {
		return "", err
	}
	return s.jwt.GenerateToken(user.ID.Hex(), user.Role)
}

// RegisterClient attaches the new client to the installer behind the invite
// code. The code must resolve before anything is written.
func (s *AuthService) RegisterClient(ctx context.Context, req ClientSignup) (string, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return "", err
	}

	installer, err := s.invites.Verify(ctx, req.InviteCode)
	if err != nil {
		return "", err
	}

	user := &models.User{
		Email:         req.Email,
		Password:      req.Password,
		Role:          models.RoleClient,
		FullName:      req.FullName,
		Phone:         req.Phone,
		Address:       req.Address,
		InstallerID:   installer.ID.Hex(),
		InstallerName: installer.CompanyName,
	}
	if err := s.create(ctx, user); err != nil {
		return "", err
	}

	// The installer's live client list changes on signup.
	s.feed.Publish(ctx, stream.UsersChannel, stream.Event{InstallerID: user.InstallerID})

	return s.jwt.GenerateToken(user.ID.Hex(), user.Role)
}

func (s *AuthService) create(ctx context.Context, user *models.User) error {
	if _, err := s.repo.FindByEmail(ctx, user.Email); err == nil {
		return models.ErrEmailTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	if err := user.HashPassword(); err != nil {
		return err
	}
	return s.repo.Create(ctx, user)
}

// Login deliberately collapses "no such account" and "wrong password" into
// one error so callers cannot probe for registered emails.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", models.ErrInvalidCredentials
	}
	if err := user.ComparePassword(password); err != nil {
		return "", models.ErrInvalidCredentials
	}
	return s.jwt.GenerateToken(user.ID.Hex(), user.Role)
}

// Logout blacklists the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.redis.Set(ctx, fmt.Sprintf("blacklist:%s", token), true, 72*time.Hour)
}

type Profile struct {
	User      *models.User `json:"user"`
	Installer *models.User `json:"installer,omitempty"`
}

// Profile returns the user plus, for clients, their installer's contact card.
// A dangling installer reference leaves Installer nil rather than failing.
func (s *AuthService) Profile(ctx context.Context, userID string) (*Profile, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.ErrNotFound
	}
	user, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: user}
	if user.Role == models.RoleClient && user.InstallerID != "" {
		if installer, err := s.repo.InstallerByID(ctx, user.InstallerID); err == nil {
			profile.Installer = installer
		}
	}
	return profile, nil
}

func (s *AuthService) Clients(ctx context.Context, installerID string) ([]models.User, error) {
	return s.repo.ClientsOfInstaller(ctx, installerID)
}
