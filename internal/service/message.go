package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/models"
	"github.com/ShannonCanTech/aroundhere/internal/repository"
	"github.com/ShannonCanTech/aroundhere/internal/retention"
)

// ErrNotParticipant is returned by SendMessage and GetMessages when the caller
// is not on the chat's participant list. EditMessage and DeleteMessage
// deliberately do not use it; they collapse every failure into nil/false.
var ErrNotParticipant = errors.New("user is not a participant in this chat")

// DefaultPageSize is the message page size when the caller passes none.
const DefaultPageSize = 50

// MessageService handles sending, paging, editing, and deleting messages.
type MessageService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	sweeper  *retention.Sweeper
	logger   *zap.Logger
	now      func() time.Time
}

func NewMessageService(chats repository.ChatRepository, messages repository.MessageRepository, sweeper *retention.Sweeper, logger *zap.Logger) *MessageService {
	return &MessageService{
		chats:    chats,
		messages: messages,
		sweeper:  sweeper,
		logger:   logger,
		now:      time.Now,
	}
}

// SendMessage stores a new message and bumps the chat's lastMessageAt.
// Sending requires participation but never grants it.
func (s *MessageService) SendMessage(ctx context.Context, chatID, userID, username, content string) (*models.Message, error) {
	ok, err := s.chats.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	now := s.now()
	msg := &models.Message{
		ID:        newMessageID(now),
		UserID:    userID,
		Username:  username,
		Content:   content,
		Timestamp: now.UnixMilli(),
		Edited:    false,
		EditedAt:  nil,
	}

	if err := s.messages.Store(ctx, chatID, msg); err != nil {
		return nil, err
	}
	if err := s.chats.UpdateLastMessageAt(ctx, chatID, msg.Timestamp); err != nil {
		return nil, err
	}

	s.logger.Debug("message sent",
		zap.String("chat_id", chatID),
		zap.String("message_id", msg.ID),
	)
	return msg, nil
}

// GetMessages sweeps expired messages for the chat, then returns a page.
// Callers paginate backward by passing the oldest returned timestamp as the
// next before. limit <= 0 selects the default page size.
func (s *MessageService) GetMessages(ctx context.Context, chatID, userID string, limit int, before int64) (*models.MessagePage, error) {
	ok, err := s.chats.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	if limit <= 0 {
		limit = DefaultPageSize
	}
	if _, err := s.sweeper.CleanOldMessages(ctx, chatID); err != nil {
		return nil, err
	}
	return s.messages.GetMessages(ctx, chatID, limit, before)
}

// EditMessage updates the message content. Returns nil (not an error) when
// the caller is not a participant, the message does not exist, or the caller
// is not the author; the three causes are indistinguishable by contract.
func (s *MessageService) EditMessage(ctx context.Context, chatID, messageID, userID, newContent string) (*models.Message, error) {
	msg, err := s.authorizeAuthor(ctx, chatID, messageID, userID)
	if err != nil || msg == nil {
		return nil, err
	}
	return s.messages.EditMessage(ctx, chatID, messageID, newContent)
}

// DeleteMessage removes the message, with the same collapsed authorization as
// EditMessage. Deleting twice returns true then false.
func (s *MessageService) DeleteMessage(ctx context.Context, chatID, messageID, userID string) (bool, error) {
	msg, err := s.authorizeAuthor(ctx, chatID, messageID, userID)
	if err != nil || msg == nil {
		return false, err
	}
	return s.messages.DeleteMessage(ctx, chatID, messageID)
}

// authorizeAuthor returns the message only when the caller is a participant
// of the chat and the author of the message; nil, nil otherwise.
func (s *MessageService) authorizeAuthor(ctx context.Context, chatID, messageID, userID string) (*models.Message, error) {
	ok, err := s.chats.IsParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	msg, err := s.messages.GetMessage(ctx, chatID, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.UserID != userID {
		return nil, nil
	}
	return msg, nil
}
