// Package retention implements the data retention rules: messages older than
// 90 days and chats inactive for 180 days are deleted. There is no background
// scheduler; the sweeper runs synchronously at the top of the two read paths
// (chat list and message list), so cleanup cost rides on reads.
package retention

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/observ"
	"github.com/ShannonCanTech/aroundhere/internal/repository"
)

const (
	// MessageRetention is how long a message may live.
	MessageRetention = 90 * 24 * time.Hour
	// ChatInactivity is how long a chat may go without a message.
	ChatInactivity = 180 * 24 * time.Hour
)

// Policy holds the expiry decision functions. Now is injectable for tests.
type Policy struct {
	MessageRetention time.Duration
	ChatInactivity   time.Duration
	Now              func() time.Time
}

func NewPolicy() *Policy {
	return &Policy{
		MessageRetention: MessageRetention,
		ChatInactivity:   ChatInactivity,
		Now:              time.Now,
	}
}

// ShouldDeleteMessage reports whether a message sent at the given epoch-millis
// timestamp has outlived the retention period.
func (p *Policy) ShouldDeleteMessage(timestamp int64) bool {
	return p.Now().UnixMilli()-timestamp > p.MessageRetention.Milliseconds()
}

// ShouldDeleteChat reports whether a chat whose last message landed at the
// given epoch-millis timestamp has been inactive past the threshold.
func (p *Policy) ShouldDeleteChat(lastMessageAt int64) bool {
	return p.Now().UnixMilli()-lastMessageAt > p.ChatInactivity.Milliseconds()
}

// MessageCutoff is the timestamp at or below which messages are expired.
func (p *Policy) MessageCutoff() int64 {
	return p.Now().UnixMilli() - p.MessageRetention.Milliseconds()
}

// Sweeper performs the lazy deletions. The chat cascade is best-effort and
// non-transactional: a failure partway leaves the remaining steps undone until
// a later sweep picks them up.
type Sweeper struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	index    repository.UserChatIndex
	policy   *Policy
	logger   *zap.Logger
}

func NewSweeper(chats repository.ChatRepository, messages repository.MessageRepository, index repository.UserChatIndex, policy *Policy, logger *zap.Logger) *Sweeper {
	return &Sweeper{chats: chats, messages: messages, index: index, policy: policy, logger: logger}
}

// CleanOldMessages drops a chat's expired messages and returns the count.
// Invoked at the top of every message-list read.
func (s *Sweeper) CleanOldMessages(ctx context.Context, chatID string) (int64, error) {
	deleted, err := s.messages.DeleteOldMessages(ctx, chatID, s.policy.MessageCutoff())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		observ.AddSweptMessages(deleted)
		s.logger.Info("swept expired messages",
			zap.String("chat_id", chatID),
			zap.Int64("deleted", deleted),
		)
	}
	return deleted, nil
}

// CleanInactiveChats walks the user's chat index. Stale index entries pointing
// at deleted chats are dropped; chats inactive past the threshold are
// cascaded: all messages, the chat record, and the index entry of every
// participant, not just the invoking user. One participant's list-fetch can
// therefore delete the chat from everyone's index. Invoked at the top of
// every chat-list read.
func (s *Sweeper) CleanInactiveChats(ctx context.Context, userID string) (int, error) {
	chatIDs, err := s.index.List(ctx, userID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, chatID := range chatIDs {
		chat, err := s.chats.Get(ctx, chatID)
		if err != nil {
			return deleted, err
		}
		if chat == nil {
			if err := s.index.Remove(ctx, userID, chatID); err != nil {
				return deleted, err
			}
			continue
		}
		if !s.policy.ShouldDeleteChat(chat.LastMessageAt) {
			continue
		}

		if err := s.messages.DeleteAllMessages(ctx, chatID); err != nil {
			return deleted, err
		}
		if err := s.chats.Delete(ctx, chatID); err != nil {
			return deleted, err
		}
		for _, participant := range chat.Participants {
			if err := s.index.Remove(ctx, participant, chatID); err != nil {
				return deleted, err
			}
		}

		deleted++
		observ.IncSweptChats()
		s.logger.Info("swept inactive chat",
			zap.String("chat_id", chatID),
			zap.Int64("last_message_at", chat.LastMessageAt),
			zap.Int("participants", len(chat.Participants)),
		)
	}
	return deleted, nil
}
