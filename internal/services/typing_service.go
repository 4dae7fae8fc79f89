package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// typingTTL is the debounce window: each keystroke rewrites the key, so
	// the flag dies on its own this long after the last one.
	typingTTL = 2 * time.Second
	// typingRecency guards readers against stale values: a stored flag older
	// than this reads as not typing no matter what.
	typingRecency = 3 * time.Second
)

// TypingService tracks the per-room, per-user typing flag as a short-TTL
// Redis key holding the keystroke timestamp. Nothing is persisted; a crashed
// client leaves at most two seconds of phantom typing behind.
type TypingService struct {
	rdb *redis.Client
	now func() time.Time
}

func NewTypingService(rdb *redis.Client) *TypingService {
	return &TypingService{rdb: rdb, now: time.Now}
}

// Touch records a keystroke. Every call resets the TTL, which is the
// debounce: only silence lets the flag expire.
func (s *TypingService) Touch(ctx context.Context, room, userID string) error {
	stamp := strconv.FormatInt(s.now().UnixMilli(), 10)
	return s.rdb.Set(ctx, typingKey(room, userID), stamp, typingTTL).Err()
}

// Stop clears the flag eagerly, used right after a message is sent.
func (s *TypingService) Stop(ctx context.Context, room, userID string) error {
	return s.rdb.Del(ctx, typingKey(room, userID)).Err()
}

// IsTyping reports whether the peer typed recently. The stored timestamp is
// checked against the recency window even though the TTL normally expires
// first; a stale value can never read as typing.
func (s *TypingService) IsTyping(ctx context.Context, room, userID string) (bool, error) {
	val, err := s.rdb.Get(ctx, typingKey(room, userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, nil
	}
	return s.now().Sub(time.UnixMilli(ms)) <= typingRecency, nil
}

func typingKey(room, userID string) string {
	return fmt.Sprintf("typing:%s:%s", room, userID)
}
