// Package kvstore implements the repository contracts on the kv.Store port,
// using the key layout chat:<id> (hash), chat:<id>:messages (sorted set),
// user:<id>:chats (sorted set), and user:<id>:consent (hash).
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ShannonCanTech/aroundhere/internal/kv"
	"github.com/ShannonCanTech/aroundhere/internal/models"
)

// ChatStore keeps each chat as a flat field map under chat:<id>. The
// participant list is JSON-encoded because the hash holds only scalar values.
type ChatStore struct {
	store kv.Store
	now   func() time.Time
}

func NewChatStore(store kv.Store) *ChatStore {
	return &ChatStore{store: store, now: time.Now}
}

func chatKey(chatID string) string {
	return "chat:" + chatID
}

func (s *ChatStore) Create(ctx context.Context, chatID, creatorID string) (*models.Chat, error) {
	now := s.now().UnixMilli()
	chat := &models.Chat{
		ID:            chatID,
		CreatedAt:     now,
		CreatedBy:     creatorID,
		Participants:  []string{creatorID},
		LastMessageAt: now,
	}

	participants, err := json.Marshal(chat.Participants)
	if err != nil {
		return nil, fmt.Errorf("encode participants: %w", err)
	}
	err = s.store.HSet(ctx, chatKey(chatID), map[string]string{
		"id":            chatID,
		"createdAt":     strconv.FormatInt(now, 10),
		"createdBy":     creatorID,
		"participants":  string(participants),
		"lastMessageAt": strconv.FormatInt(now, 10),
		"title":         "",
	})
	if err != nil {
		return nil, fmt.Errorf("store chat %s: %w", chatID, err)
	}
	return chat, nil
}

func (s *ChatStore) Get(ctx context.Context, chatID string) (*models.Chat, error) {
	data, err := s.store.HGetAll(ctx, chatKey(chatID))
	if err != nil {
		return nil, fmt.Errorf("read chat %s: %w", chatID, err)
	}

	// A missing key reads as an empty map, so the identity field is the
	// existence check.
	if data["id"] == "" {
		return nil, nil
	}

	chat := &models.Chat{
		ID:        data["id"],
		CreatedBy: data["createdBy"],
		Title:     data["title"],
	}
	chat.CreatedAt, _ = strconv.ParseInt(data["createdAt"], 10, 64)
	chat.LastMessageAt, _ = strconv.ParseInt(data["lastMessageAt"], 10, 64)
	if err := json.Unmarshal([]byte(data["participants"]), &chat.Participants); err != nil {
		return nil, fmt.Errorf("decode participants for chat %s: %w", chatID, err)
	}
	return chat, nil
}

func (s *ChatStore) UpdateLastMessageAt(ctx context.Context, chatID string, timestamp int64) error {
	return s.store.HSet(ctx, chatKey(chatID), map[string]string{
		"lastMessageAt": strconv.FormatInt(timestamp, 10),
	})
}

func (s *ChatStore) Delete(ctx context.Context, chatID string) error {
	return s.store.Del(ctx, chatKey(chatID))
}

// AddParticipant is a read-modify-write with no locking: two concurrent calls
// on the same chat can lose an update. Accepted for this low-contention
// workload.
func (s *ChatStore) AddParticipant(ctx context.Context, chatID, userID string) (bool, error) {
	chat, err := s.Get(ctx, chatID)
	if err != nil {
		return false, err
	}
	if chat == nil {
		return false, nil
	}
	if chat.IsParticipant(userID) {
		return true, nil
	}
	return true, s.writeParticipants(ctx, chatID, append(chat.Participants, userID))
}

func (s *ChatStore) RemoveParticipant(ctx context.Context, chatID, userID string) (bool, error) {
	chat, err := s.Get(ctx, chatID)
	if err != nil {
		return false, err
	}
	if chat == nil {
		return false, nil
	}
	kept := make([]string, 0, len(chat.Participants))
	for _, p := range chat.Participants {
		if p != userID {
			kept = append(kept, p)
		}
	}
	return true, s.writeParticipants(ctx, chatID, kept)
}

func (s *ChatStore) IsParticipant(ctx context.Context, chatID, userID string) (bool, error) {
	chat, err := s.Get(ctx, chatID)
	if err != nil {
		return false, err
	}
	if chat == nil {
		return false, nil
	}
	return chat.IsParticipant(userID), nil
}

func (s *ChatStore) writeParticipants(ctx context.Context, chatID string, participants []string) error {
	encoded, err := json.Marshal(participants)
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}
	return s.store.HSet(ctx, chatKey(chatID), map[string]string{
		"participants": string(encoded),
	})
}
