package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"solar-app/internal/models"
)

type fakeInviteRepo struct {
	byCode map[string]*models.InviteCode
}

func newFakeInviteRepo() *fakeInviteRepo {
	return &fakeInviteRepo{byCode: make(map[string]*models.InviteCode)}
}

func (r *fakeInviteRepo) Create(_ context.Context, invite *models.InviteCode) error {
	invite.CreatedAt = time.Now()
	r.byCode[invite.Code] = invite
	return nil
}

func (r *fakeInviteRepo) FindByCode(_ context.Context, code string) (*models.InviteCode, error) {
	if invite, ok := r.byCode[code]; ok {
		return invite, nil
	}
	return nil, models.ErrNotFound
}

func (r *fakeInviteRepo) FindByInstaller(_ context.Context, installerID string) (*models.InviteCode, error) {
	for _, invite := range r.byCode {
		if invite.InstallerID == installerID {
			return invite, nil
		}
	}
	return nil, models.ErrNotFound
}

type fakeInstallerResolver struct {
	installers map[string]*models.User
}

func (r *fakeInstallerResolver) InstallerByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := r.installers[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func newInviteFixture() (*InviteService, *fakeInviteRepo, string) {
	installerID := primitive.NewObjectID()
	resolver := &fakeInstallerResolver{installers: map[string]*models.User{
		installerID.Hex(): {ID: installerID, Role: models.RoleInstaller, CompanyName: "SunWorks"},
	}}
	repo := newFakeInviteRepo()
	return NewInviteService(repo, resolver), repo, installerID.Hex()
}

func TestEnsureCodeIsIdempotent(t *testing.T) {
	svc, _, installerID := newInviteFixture()
	ctx := context.Background()

	first, err := svc.EnsureCode(ctx, installerID)
	if err != nil {
		t.Fatalf("EnsureCode: %v", err)
	}
	if len(first.Code) != inviteCodeLength {
		t.Errorf("code length = %d, want %d", len(first.Code), inviteCodeLength)
	}

	second, err := svc.EnsureCode(ctx, installerID)
	if err != nil {
		t.Fatalf("EnsureCode again: %v", err)
	}
	if second.Code != first.Code {
		t.Errorf("second code %q differs from first %q", second.Code, first.Code)
	}
}

func TestVerifyResolvesInstaller(t *testing.T) {
	svc, _, installerID := newInviteFixture()
	ctx := context.Background()

	invite, err := svc.EnsureCode(ctx, installerID)
	if err != nil {
		t.Fatalf("EnsureCode: %v", err)
	}

	installer, err := svc.Verify(ctx, invite.Code)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if installer.ID.Hex() != installerID {
		t.Errorf("resolved installer %s, want %s", installer.ID.Hex(), installerID)
	}
}

func TestVerifyUnknownCode(t *testing.T) {
	svc, _, _ := newInviteFixture()

	_, err := svc.Verify(context.Background(), "NOPE1234")
	if !errors.Is(err, models.ErrInvalidInvite) {
		t.Errorf("err = %v, want ErrInvalidInvite", err)
	}
}

func TestVerifyDanglingInstaller(t *testing.T) {
	svc, repo, _ := newInviteFixture()

	// A code pointing at a deleted or never-existing installer is invalid.
	repo.byCode["GHOST123"] = &models.InviteCode{Code: "GHOST123", InstallerID: "gone"}

	_, err := svc.Verify(context.Background(), "GHOST123")
	if !errors.Is(err, models.ErrInvalidInvite) {
		t.Errorf("err = %v, want ErrInvalidInvite", err)
	}
}
