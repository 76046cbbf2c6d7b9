package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ShannonCanTech/aroundhere/internal/kv"
	"github.com/ShannonCanTech/aroundhere/internal/models"
)

// MessageStore keeps each chat's messages in the sorted set
// chat:<id>:messages with score = send timestamp and member = the JSON-encoded
// message. The set de-duplicates identical payloads only, so two messages
// sharing a millisecond both survive (their IDs differ); equal scores order by
// member bytes.
type MessageStore struct {
	store kv.Store
	now   func() time.Time
}

func NewMessageStore(store kv.Store) *MessageStore {
	return &MessageStore{store: store, now: time.Now}
}

func messagesKey(chatID string) string {
	return "chat:" + chatID + ":messages"
}

func (s *MessageStore) Store(ctx context.Context, chatID string, msg *models.Message) error {
	encoded, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := s.store.ZAdd(ctx, messagesKey(chatID), float64(msg.Timestamp), string(encoded)); err != nil {
		return fmt.Errorf("store message %s: %w", msg.ID, err)
	}
	return nil
}

// GetMessages probes for limit+1 elements with score <= before (newest first)
// and reports hasMore from the overflow, avoiding a second count query.
func (s *MessageStore) GetMessages(ctx context.Context, chatID string, limit int, before int64) (*models.MessagePage, error) {
	maxScore := before
	if maxScore <= 0 {
		maxScore = s.now().UnixMilli()
	}

	results, err := s.store.ZRevRangeByScore(ctx, messagesKey(chatID), float64(maxScore), int64(limit)+1)
	if err != nil {
		return nil, fmt.Errorf("list messages for chat %s: %w", chatID, err)
	}

	page := &models.MessagePage{
		Messages: make([]models.Message, 0, limit),
		HasMore:  len(results) > limit,
	}
	for _, member := range results[:min(limit, len(results))] {
		var msg models.Message
		if err := json.Unmarshal([]byte(member.Value), &msg); err != nil {
			return nil, fmt.Errorf("decode message in chat %s: %w", chatID, err)
		}
		page.Messages = append(page.Messages, msg)
	}
	return page, nil
}

// GetMessage is a linear scan; there is no secondary index by message ID.
// O(chat size), acceptable for low-volume chats.
func (s *MessageStore) GetMessage(ctx context.Context, chatID, messageID string) (*models.Message, error) {
	msg, _, err := s.findMessage(ctx, chatID, messageID)
	return msg, err
}

// EditMessage removes the old payload and re-inserts the updated one at the
// original send timestamp, so ordering by send time is preserved.
func (s *MessageStore) EditMessage(ctx context.Context, chatID, messageID, newContent string) (*models.Message, error) {
	msg, raw, err := s.findMessage(ctx, chatID, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, nil
	}

	if _, err := s.store.ZRem(ctx, messagesKey(chatID), raw); err != nil {
		return nil, fmt.Errorf("remove message %s: %w", messageID, err)
	}

	editedAt := s.now().UnixMilli()
	msg.Content = newContent
	msg.Edited = true
	msg.EditedAt = &editedAt
	if err := s.Store(ctx, chatID, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageStore) DeleteMessage(ctx context.Context, chatID, messageID string) (bool, error) {
	msg, raw, err := s.findMessage(ctx, chatID, messageID)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, nil
	}
	if _, err := s.store.ZRem(ctx, messagesKey(chatID), raw); err != nil {
		return false, fmt.Errorf("remove message %s: %w", messageID, err)
	}
	return true, nil
}

func (s *MessageStore) GetLastMessage(ctx context.Context, chatID string) (*models.Message, error) {
	results, err := s.store.ZRangeByRank(ctx, messagesKey(chatID), -1, -1)
	if err != nil {
		return nil, fmt.Errorf("read last message for chat %s: %w", chatID, err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	var msg models.Message
	if err := json.Unmarshal([]byte(results[0].Value), &msg); err != nil {
		return nil, fmt.Errorf("decode last message in chat %s: %w", chatID, err)
	}
	return &msg, nil
}

func (s *MessageStore) DeleteAllMessages(ctx context.Context, chatID string) error {
	return s.store.Del(ctx, messagesKey(chatID))
}

func (s *MessageStore) DeleteOldMessages(ctx context.Context, chatID string, before int64) (int64, error) {
	deleted, err := s.store.ZRemRangeByScore(ctx, messagesKey(chatID), 0, float64(before))
	if err != nil {
		return 0, fmt.Errorf("delete old messages for chat %s: %w", chatID, err)
	}
	return deleted, nil
}

// findMessage scans the whole set and returns both the decoded message and
// its raw member, which ZRem needs verbatim.
func (s *MessageStore) findMessage(ctx context.Context, chatID, messageID string) (*models.Message, string, error) {
	results, err := s.store.ZRangeByRank(ctx, messagesKey(chatID), 0, -1)
	if err != nil {
		return nil, "", fmt.Errorf("scan messages for chat %s: %w", chatID, err)
	}
	for _, member := range results {
		var msg models.Message
		if err := json.Unmarshal([]byte(member.Value), &msg); err != nil {
			return nil, "", fmt.Errorf("decode message in chat %s: %w", chatID, err)
		}
		if msg.ID == messageID {
			return &msg, member.Value, nil
		}
	}
	return nil, "", nil
}
