package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"solar-app/internal/models"
	"solar-app/internal/stream"
)

type fakeChatRepo struct {
	messages []*models.ChatMessage
}

func (r *fakeChatRepo) Add(_ context.Context, msg *models.ChatMessage) error {
	msg.ID = primitive.NewObjectID()
	msg.Read = false
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeChatRepo) ByRoom(_ context.Context, room string) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	for _, m := range r.messages {
		if m.Room == room {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) MarkRead(_ context.Context, room, viewerID string) (int64, error) {
	var n int64
	for _, m := range r.messages {
		if m.Room == room && !m.Read && m.SenderID != viewerID {
			m.Read = true
			n++
		}
	}
	return n, nil
}

func (r *fakeChatRepo) CountUnread(_ context.Context, room, viewerID string) (int64, error) {
	var n int64
	for _, m := range r.messages {
		if m.Room == room && !m.Read && m.SenderID != viewerID {
			n++
		}
	}
	return n, nil
}

func newChatFixture(t *testing.T) (*ChatService, *fakeChatRepo, *TypingService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &fakeChatRepo{}
	typing := NewTypingService(rdb)
	svc := NewChatService(repo, typing, stream.NewFeed(rdb))
	return svc, repo, typing, mr
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	svc, _, _, _ := newChatFixture(t)
	ctx := context.Background()

	// 3 unread from the peer, 2 from the viewer.
	for i := 0; i < 3; i++ {
		if _, err := svc.Send(ctx, "peer", "client", "me", "hello"); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.Send(ctx, "me", "installer", "peer", "hi"); err != nil {
			t.Fatalf("send: %v", err)
		}
	}

	count, err := svc.UnreadCount(ctx, "me", "peer")
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 3 {
		t.Errorf("unread = %d, want 3", count)
	}

	// Opening the panel marks the peer's messages read.
	if err := svc.MarkRead(ctx, "me", "peer"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	count, err = svc.UnreadCount(ctx, "me", "peer")
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 0 {
		t.Errorf("unread after MarkRead = %d, want 0", count)
	}

	// The sender's own messages stay untouched on the peer's side.
	peerCount, err := svc.UnreadCount(ctx, "peer", "me")
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if peerCount != 2 {
		t.Errorf("peer unread = %d, want 2", peerCount)
	}
}

func TestSendClearsTypingFlag(t *testing.T) {
	svc, _, typing, _ := newChatFixture(t)
	ctx := context.Background()

	if err := svc.Typing(ctx, "me", "peer"); err != nil {
		t.Fatalf("typing: %v", err)
	}
	if _, err := svc.Send(ctx, "me", "installer", "peer", "done typing"); err != nil {
		t.Fatalf("send: %v", err)
	}

	active, err := typing.IsTyping(ctx, models.ChatRoom("me", "peer"), "me")
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if active {
		t.Error("typing flag survived message send")
	}
}

func TestEmptyMessageRejected(t *testing.T) {
	svc, repo, _, _ := newChatFixture(t)

	_, err := svc.Send(context.Background(), "me", "installer", "peer", "  ")
	if !errors.Is(err, models.ErrEmptyMessage) {
		t.Fatalf("err = %v, want ErrEmptyMessage", err)
	}
	if len(repo.messages) != 0 {
		t.Error("empty message reached the store")
	}
}

func TestBothSidesShareRoom(t *testing.T) {
	svc, _, _, _ := newChatFixture(t)
	ctx := context.Background()

	if _, err := svc.Send(ctx, "alice", "client", "bob", "hello bob"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := svc.Send(ctx, "bob", "installer", "alice", "hello alice"); err != nil {
		t.Fatalf("send: %v", err)
	}

	fromAlice, err := svc.Messages(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	fromBob, err := svc.Messages(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(fromAlice) != 2 || len(fromBob) != 2 {
		t.Errorf("message counts = %d/%d, want 2/2", len(fromAlice), len(fromBob))
	}
}
