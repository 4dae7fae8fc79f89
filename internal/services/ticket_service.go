package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"solar-app/internal/models"
	"solar-app/internal/stream"
	"solar-app/internal/utils"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Ticket, error)
	ByInstaller(ctx context.Context, installerID string) ([]models.Ticket, error)
	ByClient(ctx context.Context, clientID string) ([]models.Ticket, error)
	CountPending(ctx context.Context, installerID string) (int64, error)
	MarkInProgress(ctx context.Context, id primitive.ObjectID, installerID string) (*models.Ticket, error)
	Resolve(ctx context.Context, id primitive.ObjectID, installerID, response string) (*models.Ticket, error)
}

// TicketService owns the pending → in-progress → resolved lifecycle. Every
// mutation is an explicit command that returns the accepted document, so the
// caller decides what to do about failure instead of relying on optimistic
// local state.
type TicketService struct {
	repo TicketRepository
	feed *stream.Feed
}

func NewTicketService(repo TicketRepository, feed *stream.Feed) *TicketService {
	return &TicketService{repo: repo, feed: feed}
}

func (s *TicketService) Create(ctx context.Context, ticket *models.Ticket) error {
	if err := utils.ValidateStruct(ticket); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		return err
	}
	s.publish(ctx, ticket)
	return nil
}

// MarkInProgress is legal only from pending. The repository applies the
// status guard atomically; a miss is then diagnosed against the current
// document so the caller gets a precise error.
func (s *TicketService) MarkInProgress(ctx context.Context, id primitive.ObjectID, installerID string) (*models.Ticket, error) {
	ticket, err := s.repo.MarkInProgress(ctx, id, installerID)
	if err == nil {
		s.publish(ctx, ticket)
		return ticket, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return nil, s.diagnose(ctx, id, installerID, true)
}

// RespondAndResolve couples the response with the resolved status: an empty
// response never reaches the store, and the response, status, and timestamp
// land in a single update.
func (s *TicketService) RespondAndResolve(ctx context.Context, id primitive.ObjectID, installerID, response string) (*models.Ticket, error) {
	if strings.TrimSpace(response) == "" {
		return nil, models.ErrEmptyResponse
	}

	ticket, err := s.repo.Resolve(ctx, id, installerID, response)
	if err == nil {
		s.publish(ctx, ticket)
		return ticket, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	return nil, s.diagnose(ctx, id, installerID, false)
}

func (s *TicketService) ForInstaller(ctx context.Context, installerID string) ([]models.Ticket, error) {
	return s.repo.ByInstaller(ctx, installerID)
}

func (s *TicketService) ForClient(ctx context.Context, clientID string) ([]models.Ticket, error) {
	return s.repo.ByClient(ctx, clientID)
}

func (s *TicketService) PendingCount(ctx context.Context, installerID string) (int64, error) {
	return s.repo.CountPending(ctx, installerID)
}

// diagnose explains why a guarded transition found no document to update.
func (s *TicketService) diagnose(ctx context.Context, id primitive.ObjectID, installerID string, wantPending bool) error {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if ticket.InstallerID != installerID {
		return models.ErrNotTicketOwner
	}
	if ticket.Status == models.StatusResolved {
		return models.ErrTicketResolved
	}
	if wantPending {
		return models.ErrTicketNotPending
	}
	return models.ErrNotFound
}

func (s *TicketService) publish(ctx context.Context, ticket *models.Ticket) {
	s.feed.Publish(ctx, stream.TicketsChannel, stream.Event{
		InstallerID: ticket.InstallerID,
		ClientID:    ticket.ClientID,
	})
}
