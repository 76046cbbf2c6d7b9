// Package repository defines the persistence contracts for chats, messages,
// the per-user chat index, and consent records. Repositories perform no
// authorization; every mutation must come through the service layer.
package repository

import (
	"context"

	"github.com/ShannonCanTech/aroundhere/internal/models"
)

// ChatRepository is durable CRUD for chat metadata records.
type ChatRepository interface {
	// Create persists a new chat with the creator as its only participant and
	// createdAt == lastMessageAt == now.
	Create(ctx context.Context, chatID, creatorID string) (*models.Chat, error)

	// Get returns nil, nil when the chat does not exist.
	Get(ctx context.Context, chatID string) (*models.Chat, error)

	// UpdateLastMessageAt rewrites only the lastMessageAt field. Silently
	// no-ops in effect on a missing chat; callers validate existence first.
	UpdateLastMessageAt(ctx context.Context, chatID string, timestamp int64) error

	// Delete removes the record. Deleting a missing chat is not an error.
	Delete(ctx context.Context, chatID string) error

	// AddParticipant appends userID if the chat exists and the user is new.
	// Returns false only when the chat does not exist.
	AddParticipant(ctx context.Context, chatID, userID string) (bool, error)

	// RemoveParticipant filters userID out of the participant list.
	// Returns false only when the chat does not exist.
	RemoveParticipant(ctx context.Context, chatID, userID string) (bool, error)

	// IsParticipant reports membership; false when the chat is missing.
	IsParticipant(ctx context.Context, chatID, userID string) (bool, error)
}

// MessageRepository is timestamp-ordered message storage per chat.
type MessageRepository interface {
	// Store inserts the message at score = message.Timestamp.
	Store(ctx context.Context, chatID string, msg *models.Message) error

	// GetMessages pages backward in time: messages with timestamp <= before,
	// newest first. before <= 0 means "from now".
	GetMessages(ctx context.Context, chatID string, limit int, before int64) (*models.MessagePage, error)

	// GetMessage returns nil, nil when no message has the given ID.
	GetMessage(ctx context.Context, chatID, messageID string) (*models.Message, error)

	// EditMessage rewrites content, sets the edited flag, and keeps the
	// message at its original send-time position. Returns nil, nil if missing.
	EditMessage(ctx context.Context, chatID, messageID, newContent string) (*models.Message, error)

	// DeleteMessage removes the message; false if not found.
	DeleteMessage(ctx context.Context, chatID, messageID string) (bool, error)

	// GetLastMessage returns the newest message, or nil, nil on an empty chat.
	GetLastMessage(ctx context.Context, chatID string) (*models.Message, error)

	// DeleteAllMessages drops the chat's entire message set.
	DeleteAllMessages(ctx context.Context, chatID string) error

	// DeleteOldMessages removes every message with timestamp <= before and
	// returns how many were removed.
	DeleteOldMessages(ctx context.Context, chatID string, before int64) (int64, error)
}

// UserChatIndex is the per-user recency-ordered list of chat memberships.
// Invariant: a chat ID appears in a user's index iff that user is (or, pending
// sweep, recently was) a participant of that chat.
type UserChatIndex interface {
	Add(ctx context.Context, userID, chatID string) error
	Remove(ctx context.Context, userID, chatID string) error

	// List returns chat IDs most recently added first. Index add-time order,
	// not activity order; ChatService re-sorts by lastMessageAt.
	List(ctx context.Context, userID string) ([]string, error)

	Has(ctx context.Context, userID, chatID string) (bool, error)
	Count(ctx context.Context, userID string) (int64, error)
}

// ConsentRepository stores terms-acceptance records keyed by user.
type ConsentRepository interface {
	Set(ctx context.Context, userID string, consent *models.Consent) error

	// Get returns nil, nil when the user has no consent record.
	Get(ctx context.Context, userID string) (*models.Consent, error)
}
