// Package service orchestrates chat and message operations on top of the
// repositories. All authorization lives here: participant checks for reads and
// sends, author checks for edits and deletes, creator check for chat deletion.
package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/models"
	"github.com/ShannonCanTech/aroundhere/internal/repository"
	"github.com/ShannonCanTech/aroundhere/internal/retention"
)

// AvatarResolver supplies avatar URLs for chat-list enrichment. It is an
// external collaborator; ChatFallback is the deterministic per-chat-session
// fallback used when resolution fails.
type AvatarResolver interface {
	AvatarURL(ctx context.Context, username string) (string, error)
	ChatFallback(ctx context.Context, userID, chatID string) (string, error)
}

// ChatService handles chat creation, listing, access-validated retrieval,
// membership, and deletion cascades.
type ChatService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	index    repository.UserChatIndex
	sweeper  *retention.Sweeper
	avatars  AvatarResolver
	logger   *zap.Logger
	now      func() time.Time
}

func NewChatService(chats repository.ChatRepository, messages repository.MessageRepository, index repository.UserChatIndex, sweeper *retention.Sweeper, avatars AvatarResolver, logger *zap.Logger) *ChatService {
	return &ChatService{
		chats:    chats,
		messages: messages,
		index:    index,
		sweeper:  sweeper,
		avatars:  avatars,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateNewChat creates a chat with the caller as sole participant and indexes
// it for them. Any authenticated user may create a chat.
func (s *ChatService) CreateNewChat(ctx context.Context, userID string) (*models.Chat, error) {
	chatID := newChatID(s.now())

	chat, err := s.chats.Create(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.index.Add(ctx, userID, chatID); err != nil {
		return nil, err
	}

	s.logger.Info("chat created", zap.String("chat_id", chatID), zap.String("user_id", userID))
	return chat, nil
}

// GetUserChats sweeps inactive chats first, then builds the list: chat record
// (skipping ones that vanished), last-message preview with a resolved avatar,
// sorted by lastMessageAt descending.
func (s *ChatService) GetUserChats(ctx context.Context, userID string) ([]models.ChatListItem, error) {
	if _, err := s.sweeper.CleanInactiveChats(ctx, userID); err != nil {
		return nil, err
	}

	chatIDs, err := s.index.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.ChatListItem, 0, len(chatIDs))
	for _, chatID := range chatIDs {
		chat, err := s.chats.Get(ctx, chatID)
		if err != nil {
			return nil, err
		}
		if chat == nil {
			continue
		}

		last, err := s.messages.GetLastMessage(ctx, chatID)
		if err != nil {
			return nil, err
		}

		item := models.ChatListItem{Chat: *chat, UnreadCount: 0}
		if last != nil {
			avatarURL, err := s.avatars.AvatarURL(ctx, last.Username)
			if err != nil {
				// Resolution failed; fall back to the per-chat-session avatar
				// so the user keeps a stable picture within this chat.
				avatarURL, err = s.avatars.ChatFallback(ctx, last.UserID, chatID)
				if err != nil {
					s.logger.Warn("avatar fallback failed",
						zap.String("chat_id", chatID),
						zap.Error(err),
					)
					avatarURL = ""
				}
			}
			item.LastMessage = &models.LastMessagePreview{
				Text:      last.Content,
				Username:  last.Username,
				Timestamp: last.Timestamp,
				AvatarURL: avatarURL,
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].LastMessageAt > items[j].LastMessageAt
	})
	return items, nil
}

// GetChatWithValidation returns the chat only if userID is a current
// participant; nil otherwise. This is the sole authorization gate for reading
// chat metadata, and it deliberately does not distinguish "not found" from
// "not a participant".
func (s *ChatService) GetChatWithValidation(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	ok, err := s.chats.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return s.chats.Get(ctx, chatID)
}

// DeleteChatWithValidation deletes the chat, all its messages, and every
// participant's index entry. Only the creator may delete; false covers both
// "missing" and "not the creator". The cascade is not transactional.
func (s *ChatService) DeleteChatWithValidation(ctx context.Context, chatID, userID string) (bool, error) {
	chat, err := s.chats.Get(ctx, chatID)
	if err != nil {
		return false, err
	}
	if chat == nil || chat.CreatedBy != userID {
		return false, nil
	}

	if err := s.messages.DeleteAllMessages(ctx, chatID); err != nil {
		return false, err
	}
	if err := s.chats.Delete(ctx, chatID); err != nil {
		return false, err
	}
	for _, participant := range chat.Participants {
		if err := s.index.Remove(ctx, participant, chatID); err != nil {
			return false, err
		}
	}

	s.logger.Info("chat deleted", zap.String("chat_id", chatID), zap.String("user_id", userID))
	return true, nil
}

// JoinChat adds the user to the chat's participant list and to their chat
// index. Returns false if the chat does not exist. Joining an already-joined
// chat refreshes the index entry and succeeds.
func (s *ChatService) JoinChat(ctx context.Context, chatID, userID string) (bool, error) {
	ok, err := s.chats.AddParticipant(ctx, chatID, userID)
	if err != nil || !ok {
		return false, err
	}
	if err := s.index.Add(ctx, userID, chatID); err != nil {
		return false, err
	}
	return true, nil
}

// LeaveChat removes the user from the participant list and drops the chat
// from their index. Returns false if the chat does not exist.
func (s *ChatService) LeaveChat(ctx context.Context, chatID, userID string) (bool, error) {
	ok, err := s.chats.RemoveParticipant(ctx, chatID, userID)
	if err != nil || !ok {
		return false, err
	}
	if err := s.index.Remove(ctx, userID, chatID); err != nil {
		return false, err
	}
	return true, nil
}
