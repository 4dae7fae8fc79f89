package services

import (
	"context"
	"log"
	"strings"

	"solar-app/internal/models"
	"solar-app/internal/stream"
)

type ChatRepository interface {
	Add(ctx context.Context, msg *models.ChatMessage) error
	ByRoom(ctx context.Context, room string) ([]models.ChatMessage, error)
	MarkRead(ctx context.Context, room, viewerID string) (int64, error)
	CountUnread(ctx context.Context, room, viewerID string) (int64, error)
}

type ChatService struct {
	repo   ChatRepository
	typing *TypingService
	feed   *stream.Feed
}

func NewChatService(repo ChatRepository, typing *TypingService, feed *stream.Feed) *ChatService {
	return &ChatService{repo: repo, typing: typing, feed: feed}
}

// Send appends the message and clears the sender's typing flag. The typing
// cleanup is best effort: the flag would expire on its own anyway.
func (s *ChatService) Send(ctx context.Context, senderID, senderRole, receiverID, text string) (*models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.ErrEmptyMessage
	}

	msg := &models.ChatMessage{
		Room:       models.ChatRoom(senderID, receiverID),
		Text:       text,
		SenderID:   senderID,
		SenderRole: senderRole,
		ReceiverID: receiverID,
	}
	if err := s.repo.Add(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.typing.Stop(ctx, msg.Room, senderID); err != nil {
		log.Printf("chat: clearing typing flag failed: %v", err)
	}

	s.feed.Publish(ctx, stream.ChatChannel, stream.Event{Room: msg.Room})
	return msg, nil
}

func (s *ChatService) Messages(ctx context.Context, userID, peerID string) ([]models.ChatMessage, error) {
	return s.repo.ByRoom(ctx, models.ChatRoom(userID, peerID))
}

// MarkRead flips every message from the peer that the viewer has not read,
// and nudges the room feed if anything actually changed.
func (s *ChatService) MarkRead(ctx context.Context, userID, peerID string) error {
	room := models.ChatRoom(userID, peerID)
	n, err := s.repo.MarkRead(ctx, room, userID)
	if err != nil {
		return err
	}
	if n > 0 {
		s.feed.Publish(ctx, stream.ChatChannel, stream.Event{Room: room})
	}
	return nil
}

func (s *ChatService) UnreadCount(ctx context.Context, userID, peerID string) (int64, error) {
	return s.repo.CountUnread(ctx, models.ChatRoom(userID, peerID), userID)
}

func (s *ChatService) Typing(ctx context.Context, userID, peerID string) error {
	return s.typing.Touch(ctx, models.ChatRoom(userID, peerID), userID)
}

// PeerTyping reports whether the peer is typing in the shared room.
func (s *ChatService) PeerTyping(ctx context.Context, userID, peerID string) (bool, error) {
	return s.typing.IsTyping(ctx, models.ChatRoom(userID, peerID), peerID)
}
