package services

import (
	"context"

	"solar-app/internal/models"
	"solar-app/internal/stream"
	"solar-app/internal/utils"
)

type GuideRepository interface {
	Create(ctx context.Context, guide *models.Guide) error
	ByInstaller(ctx context.Context, installerID string) ([]models.Guide, error)
	CountByInstaller(ctx context.Context, installerID string) (int64, error)
}

type GuideService struct {
	repo GuideRepository
	feed *stream.Feed
}

func NewGuideService(repo GuideRepository, feed *stream.Feed) *GuideService {
	return &GuideService{repo: repo, feed: feed}
}

func (s *GuideService) Create(ctx context.Context, guide *models.Guide) error {
	if err := utils.ValidateStruct(guide); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, guide); err != nil {
		return err
	}
	s.feed.Publish(ctx, stream.GuidesChannel, stream.Event{InstallerID: guide.InstallerID})
	return nil
}

// ForInstaller serves both sides: installers pass their own ID, clients pass
// their installer's. There is no unscoped guide listing.
func (s *GuideService) ForInstaller(ctx context.Context, installerID string) ([]models.Guide, error) {
	return s.repo.ByInstaller(ctx, installerID)
}

func (s *GuideService) Count(ctx context.Context, installerID string) (int64, error) {
	return s.repo.CountByInstaller(ctx, installerID)
}
