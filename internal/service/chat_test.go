package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ShannonCanTech/aroundhere/internal/kv"
	"github.com/ShannonCanTech/aroundhere/internal/repository/kvstore"
	"github.com/ShannonCanTech/aroundhere/internal/retention"
)

// stubAvatars resolves every username to a fixed URL, or fails so the
// per-chat fallback path runs.
type stubAvatars struct {
	url      string
	err      error
	fallback string
}

func (s *stubAvatars) AvatarURL(_ context.Context, _ string) (string, error) {
	return s.url, s.err
}

func (s *stubAvatars) ChatFallback(_ context.Context, _, _ string) (string, error) {
	return s.fallback, nil
}

type svcFixture struct {
	chats    *kvstore.ChatStore
	messages *kvstore.MessageStore
	index    *kvstore.UserIndexStore
	policy   *retention.Policy
	avatars  *stubAvatars
	chatSvc  *ChatService
	msgSvc   *MessageService
	clock    time.Time
}

func newSvcFixture(t *testing.T) *svcFixture {
	t.Helper()
	store := kv.NewMemory()
	f := &svcFixture{
		chats:    kvstore.NewChatStore(store),
		messages: kvstore.NewMessageStore(store),
		index:    kvstore.NewUserIndexStore(store),
		policy:   retention.NewPolicy(),
		avatars:  &stubAvatars{url: "https://example.test/a.png", fallback: "https://example.test/fallback.png"},
		clock:    time.Now(),
	}
	now := func() time.Time { return f.clock }
	f.policy.Now = now
	logger := zap.NewNop()
	sweeper := retention.NewSweeper(f.chats, f.messages, f.index, f.policy, logger)
	f.chatSvc = NewChatService(f.chats, f.messages, f.index, sweeper, f.avatars, logger)
	f.chatSvc.now = now
	f.msgSvc = NewMessageService(f.chats, f.messages, sweeper, logger)
	f.msgSvc.now = now
	return f
}

func TestCreateNewChat(t *testing.T) {
	f := newSvcFixture(t)
	ctx := context.Background()

	chat, err := f.chatSvc.CreateNewChat(ctx, "u1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(chat.ID, "chat_"))
	require.Equal(t, "u1", chat.CreatedBy)
	require.Equal(t, []string{"u1"}, chat.Participants)
	require.NotZero(t, chat.CreatedAt)
	require.Equal(t, chat.CreatedAt, chat.LastMessageAt)

	// Creation indexes the chat for the creator.
	ids, err := f.index.List(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{chat.ID}, ids)
}

func TestGetChatWithValidation(t *testing.T) {
	f := newSvcFixture(t)
	ctx := context.Background()

	chat, err := f.chatSvc.CreateNewChat(ctx, "u1")
	require.NoError(t, err)

	got, err := f.chatSvc.GetChatWithValidation(ctx, chat.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, chat.ID, got.ID)

	// Non-participant and missing chat both read as nil.
	got, err = f.chatSvc.GetChatWithValidation(ctx, chat.ID, "u2")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = f.chatSvc.GetChatWithValidation(ctx, "chat_nope", "u1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGetUserChatsOrderingAndPreview(t *testing.T) {
	f := newSvcFixture(t)
	ctx := context.Background()

	first, err := f.chatSvc.CreateNewChat(ctx, "u1")
	require.NoError(t, err)
	f.clock = f.clock.Add(time.Minute)
	second, err := f.chatSvc.CreateNewChat(ctx, "u1")
	require.NoError(t, err)

	// A message in the older chat makes it most recent.
	f.clock = f.clock.Add(time.Minute)
	msg, err := f.msgSvc.SendMessage(ctx, first.ID, "u1", "alice", "newest activity")
	require.NoError(t, err)

	items, err := f.chatSvc.GetUserChats(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, first.ID, items[0].ID)
	require.Equal(t, second.ID, items[1].ID)

	require.NotNil(t, items[0].LastMessage)
	require.Equal(t, "newest activity", items[0].LastMessage.Text)
	require.Equal(t, "alice", items[0].LastMessage.Username)
	require.Equal(t, msg.Timestamp, items[0].LastMessage.Timestamp)
	require.Equal(t, "https://example.test/a.png", items[0].LastMessage.AvatarURL)

	require.Nil(t, items[1].LastMessage)
}

func TestGetUserChatsAvatarFallback(t *testing.T) {
	f := newSvcFixture(t)
	ctx := context.Background()

	chat, err := f.chatSvc.CreateNewChat(ctx, "u1")
	require.NoError(t, err)
	_, err = f.msgSvc.SendMessage(ctx, chat.ID, "u1", "alice", "hi")
	require.NoError(t, err)

	f.avatars.err = errors.New("profile service down")

	items, err := f.chatSvc.GetUserChats(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].LastMessage)
	require.Equal(t, "https://example.test/fallback.png", items[0].LastMessage.AvatarURL)
}

func TestGetUserChatsSweepsInactive(t *testing.T) {
	f := newSvcFixture(t)
	ctx := context.Background()

	chat, err := f.chatSvc.CreateNewChat(ctx, "u1")
	require.NoError(t, err)
	ok, err := f.chatSvc.JoinChat(ctx, chat.ID, "u2")
	require.NoError(t, err)
	require.True(t, ok)
	_, err = f.msgSvc.SendMessage(ctx, chat.ID, "u1", "alice", "hello")
	require.NoError(t, err)

	f.clock = f.clock.Add(181 * 24 * time.Hour)

	// u1's list fetch cascades the deletion.
	items, err := f.chatSvc.GetUserChats(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, items)

	// The chat is gone from u2's list too, not just u1's.
	items, err = f.chatSvc.GetUserChats(ctx, "u2")
	require.NoError(t, err)
	require.Empty(t, items)

	got, err := f.chats.Get(ctx, chat.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDeleteChatWithValidation(t *testing.T) {
	f := newSvcFixture(t)
	ctx := context.Background()

	chat, err := f.chatSvc.CreateNewChat(ctx, "u1")
	require.NoError(t, err)
	ok, err := f.chatSvc.JoinChat(ctx, chat.ID, "u2")
	require.NoError(t, err)
	require.True(t, ok)
	_, err = f.msgSvc.SendMessage(ctx, chat.ID, "u2", "bob", "hi")
	require.NoError(t, err)

	// Only the creator may delete; a mere participant gets false.
	ok, err = f.chatSvc.DeleteChatWithValidation(ctx, chat.ID, "u2")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = f.chatSvc.DeleteChatWithValidation(ctx, chat.ID, "u1")
	require.NoError(t, err)
	require.True(t, ok)

	// Messages and both index entries are gone.
	page, err := f.messages.GetMessages(ctx, chat.ID, 10, 0)
	require.NoError(t, err)
	require.Empty(t, page.Messages)
	for _, user := range []string{"u1", "u2"} {
		ids, err := f.index.List(ctx, user)
		require.NoError(t, err)
		require.Empty(t, ids)
	}

	// Deleting again reports false.
	ok, err = f.chatSvc.DeleteChatWithValidation(ctx, chat.ID, "u1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJoinAndLeaveChat(t *testing.T) {
	f := newSvcFixture(t)
	ctx := context.Background()

	chat, err := f.chatSvc.CreateNewChat(ctx, "u1")
	require.NoError(t, err)

	ok, err := f.chatSvc.JoinChat(ctx, chat.ID, "u2")
	require.NoError(t, err)
	require.True(t, ok)

	got, err := f.chats.Get(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"u1", "u2"}, got.Participants)

	has, err := f.index.Has(ctx, "u2", chat.ID)
	require.NoError(t, err)
	require.True(t, has)

	ok, err = f.chatSvc.LeaveChat(ctx, chat.ID, "u2")
	require.NoError(t, err)
	require.True(t, ok)

	got, err = f.chats.Get(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, got.Participants)

	has, err = f.index.Has(ctx, "u2", chat.ID)
	require.NoError(t, err)
	require.False(t, has)

	ok, err = f.chatSvc.JoinChat(ctx, "chat_nope", "u2")
	require.NoError(t, err)
	require.False(t, ok)
}
