package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"solar-app/internal/models"
	"solar-app/internal/stream"
)

type NotificationRepository interface {
	Create(ctx context.Context, notif *models.Notification) error
	ByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
}

// Pusher delivers a payload to a user's live connection, reporting whether
// anyone was there to receive it.
type Pusher interface {
	NotifyUser(userID string, payload []byte) bool
}

type NotificationService struct {
	repo   NotificationRepository
	pusher Pusher
}

func NewNotificationService(repo NotificationRepository, pusher Pusher) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher}
}

// Record persists the notification and pushes it to the target user if they
// are connected. Push failures are not errors: the persisted copy is the
// source of truth and shows up on the next listing.
func (s *NotificationService) Record(ctx context.Context, notif *models.Notification) error {
	if err := s.repo.Create(ctx, notif); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"type":         "notification",
		"notification": notif,
	})
	if err == nil {
		s.pusher.NotifyUser(notif.UserID, payload)
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.repo.ByUser(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.MarkRead(ctx, id)
}

// ClassifyTicketChange maps a live ticket change to the notification the
// affected party should see, or nil when the change is not notifiable.
// Installer side: a freshly added ticket. Client side: a transition to
// in-progress, or to resolved once a response is attached.
func ClassifyTicketChange(forRole string, change stream.Change[models.Ticket]) *models.Notification {
	t := change.Doc
	switch forRole {
	case models.RoleInstaller:
		if change.Type == stream.Added {
			return &models.Notification{
				UserID:  t.InstallerID,
				Title:   "New support ticket",
				Message: fmt.Sprintf("%s: %s", t.ClientName, t.Title),
			}
		}
	case models.RoleClient:
		if change.Type != stream.Modified {
			return nil
		}
		switch {
		case t.Status == models.StatusResolved && t.Response != "":
			return &models.Notification{
				UserID:  t.ClientID,
				Title:   "Ticket resolved",
				Message: fmt.Sprintf("%s - check the response", t.Title),
			}
		case t.Status == models.StatusInProgress:
			return &models.Notification{
				UserID:  t.ClientID,
				Title:   "Ticket update",
				Message: fmt.Sprintf("%s is now in progress", t.Title),
			}
		}
	}
	return nil
}

// ClassifyClientChange reports a client newly attached to the installer.
func ClassifyClientChange(installerID string, change stream.Change[models.User]) *models.Notification {
	if change.Type != stream.Added {
		return nil
	}
	return &models.Notification{
		UserID:  installerID,
		Title:   "New client joined",
		Message: fmt.Sprintf("%s signed up with your invite code", change.Doc.FullName),
	}
}

// RecordAll classifies and records a batch of notifications, logging rather
// than propagating storage failures: a lost toast must not break the stream.
func (s *NotificationService) RecordAll(ctx context.Context, notifs []*models.Notification) {
	for _, n := range notifs {
		if n == nil {
			continue
		}
		if err := s.Record(ctx, n); err != nil {
			log.Printf("notification: %v", err)
		}
	}
}
