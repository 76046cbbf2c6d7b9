package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ShannonCanTech/aroundhere/internal/kv"
)

// UserIndexStore keeps each user's chat memberships in the sorted set
// user:<id>:chats with member = chat ID and score = add-time millis.
type UserIndexStore struct {
	store kv.Store
	now   func() time.Time
}

func NewUserIndexStore(store kv.Store) *UserIndexStore {
	return &UserIndexStore{store: store, now: time.Now}
}

func userChatsKey(userID string) string {
	return "user:" + userID + ":chats"
}

func (s *UserIndexStore) Add(ctx context.Context, userID, chatID string) error {
	if err := s.store.ZAdd(ctx, userChatsKey(userID), float64(s.now().UnixMilli()), chatID); err != nil {
		return fmt.Errorf("index chat %s for user %s: %w", chatID, userID, err)
	}
	return nil
}

func (s *UserIndexStore) Remove(ctx context.Context, userID, chatID string) error {
	if _, err := s.store.ZRem(ctx, userChatsKey(userID), chatID); err != nil {
		return fmt.Errorf("unindex chat %s for user %s: %w", chatID, userID, err)
	}
	return nil
}

// List returns chat IDs most recently indexed first. This is add-time order,
// not last-activity order.
func (s *UserIndexStore) List(ctx context.Context, userID string) ([]string, error) {
	members, err := s.store.ZRangeByRank(ctx, userChatsKey(userID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list chats for user %s: %w", userID, err)
	}
	ids := make([]string, 0, len(members))
	for i := len(members) - 1; i >= 0; i-- {
		ids = append(ids, members[i].Value)
	}
	return ids, nil
}

func (s *UserIndexStore) Has(ctx context.Context, userID, chatID string) (bool, error) {
	_, ok, err := s.store.ZScore(ctx, userChatsKey(userID), chatID)
	if err != nil {
		return false, fmt.Errorf("check chat %s for user %s: %w", chatID, userID, err)
	}
	return ok, nil
}

func (s *UserIndexStore) Count(ctx context.Context, userID string) (int64, error) {
	count, err := s.store.ZCard(ctx, userChatsKey(userID))
	if err != nil {
		return 0, fmt.Errorf("count chats for user %s: %w", userID, err)
	}
	return count, nil
}
