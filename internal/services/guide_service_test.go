package services

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"solar-app/internal/models"
)

type fakeGuideRepo struct {
	guides []*models.Guide
}

func (r *fakeGuideRepo) Create(_ context.Context, guide *models.Guide) error {
	guide.ID = primitive.NewObjectID()
	guide.CreatedAt = time.Now()
	r.guides = append(r.guides, guide)
	return nil
}

func (r *fakeGuideRepo) ByInstaller(_ context.Context, installerID string) ([]models.Guide, error) {
	var out []models.Guide
	for _, g := range r.guides {
		if g.InstallerID == installerID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGuideRepo) CountByInstaller(_ context.Context, installerID string) (int64, error) {
	var n int64
	for _, g := range r.guides {
		if g.InstallerID == installerID {
			n++
		}
	}
	return n, nil
}

func TestGuidesScopedToInstaller(t *testing.T) {
	feed, _ := newTestFeed(t)
	repo := &fakeGuideRepo{}
	svc := NewGuideService(repo, feed)
	ctx := context.Background()

	for _, g := range []*models.Guide{
		{Title: "Cleaning panels", Category: models.CategoryMaintenance, Content: "...", InstallerID: "x"},
		{Title: "Inverter errors", Category: models.CategoryTroubleshooting, Content: "...", InstallerID: "x"},
		{Title: "Roof safety", Category: models.CategorySafety, Content: "...", InstallerID: "y"},
	} {
		if err := svc.Create(ctx, g); err != nil {
			t.Fatalf("create %q: %v", g.Title, err)
		}
	}

	guides, err := svc.ForInstaller(ctx, "x")
	if err != nil {
		t.Fatalf("ForInstaller: %v", err)
	}
	if len(guides) != 2 {
		t.Fatalf("got %d guides, want 2", len(guides))
	}
	for _, g := range guides {
		if g.InstallerID != "x" {
			t.Errorf("guide %q leaked from installer %s", g.Title, g.InstallerID)
		}
	}
}

func TestGuideCategoryValidated(t *testing.T) {
	feed, _ := newTestFeed(t)
	repo := &fakeGuideRepo{}
	svc := NewGuideService(repo, feed)

	err := svc.Create(context.Background(), &models.Guide{
		Title:       "Some guide",
		Category:    "folklore",
		Content:     "...",
		InstallerID: "x",
	})
	if err == nil {
		t.Fatal("unknown category accepted")
	}
	if len(repo.guides) != 0 {
		t.Error("invalid guide reached the store")
	}
}
