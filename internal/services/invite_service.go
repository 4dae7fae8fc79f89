package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"solar-app/internal/models"
	"solar-app/internal/repository"
)

const inviteCodeLength = 8

type InviteRepository interface {
	Create(ctx context.Context, invite *models.InviteCode) error
	FindByCode(ctx context.Context, code string) (*models.InviteCode, error)
	FindByInstaller(ctx context.Context, installerID string) (*models.InviteCode, error)
}

type InstallerResolver interface {
	InstallerByID(ctx context.Context, id string) (*models.User, error)
}

type InviteService struct {
	repo  InviteRepository
	users InstallerResolver
}

func NewInviteService(repo InviteRepository, users InstallerResolver) *InviteService {
	return &InviteService{repo: repo, users: users}
}

// EnsureCode returns the installer's invite code, creating it on first call.
// Creation is idempotent: a second call always returns the existing code.
func (s *InviteService) EnsureCode(ctx context.Context, installerID string) (*models.InviteCode, error) {
	existing, err := s.repo.FindByInstaller(ctx, installerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	// Codes collide only by generation accident; retry a couple of times
	// before giving up.
	for attempt := 0; attempt < 3; attempt++ {
		invite := &models.InviteCode{
			Code:        generateInviteCode(),
			InstallerID: installerID,
		}
		err = s.repo.Create(ctx, invite)
		if err == nil {
			return invite, nil
		}
		if !repository.IsDuplicateCode(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("could not allocate invite code: %w", err)
}

// Verify resolves a code to the installer it belongs to. An unknown code or a
// dangling installer reference both surface as ErrInvalidInvite.
func (s *InviteService) Verify(ctx context.Context, code string) (*models.User, error) {
	invite, err := s.repo.FindByCode(ctx, code)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidInvite
	}
	if err != nil {
		return nil, err
	}

	installer, err := s.users.InstallerByID(ctx, invite.InstallerID)
	if err != nil {
		return nil, models.ErrInvalidInvite
	}
	return installer, nil
}

const inviteCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateInviteCode() string {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, inviteCodeLength)
	for i := range b {
		b[i] = inviteCharset[seededRand.Intn(len(inviteCharset))]
	}
	return string(b)
}
