package kvstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ShannonCanTech/aroundhere/internal/kv"
	"github.com/ShannonCanTech/aroundhere/internal/models"
)

func newTestMessage(id string, ts int64) *models.Message {
	return &models.Message{
		ID:        id,
		UserID:    "u1",
		Username:  "alice",
		Content:   "hello " + id,
		Timestamp: ts,
	}
}

func TestMessageStorePagination(t *testing.T) {
	store := NewMessageStore(kv.NewMemory())
	ctx := context.Background()

	base := time.Now().Add(-time.Minute).UnixMilli()
	for i := 0; i < 120; i++ {
		msg := newTestMessage(fmt.Sprintf("msg_%03d", i), base+int64(i))
		require.NoError(t, store.Store(ctx, "chat_1", msg))
	}

	seen := make(map[string]bool)

	page, err := store.GetMessages(ctx, "chat_1", 50, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 50)
	require.True(t, page.HasMore)
	require.Equal(t, "msg_119", page.Messages[0].ID)
	for _, m := range page.Messages {
		seen[m.ID] = true
	}

	// Next page starts strictly before the oldest message returned.
	before := page.Messages[len(page.Messages)-1].Timestamp - 1
	page, err = store.GetMessages(ctx, "chat_1", 50, before)
	require.NoError(t, err)
	require.Len(t, page.Messages, 50)
	require.True(t, page.HasMore)
	for _, m := range page.Messages {
		require.False(t, seen[m.ID])
		seen[m.ID] = true
	}

	before = page.Messages[len(page.Messages)-1].Timestamp - 1
	page, err = store.GetMessages(ctx, "chat_1", 50, before)
	require.NoError(t, err)
	require.Len(t, page.Messages, 20)
	require.False(t, page.HasMore)
	for _, m := range page.Messages {
		require.False(t, seen[m.ID])
		seen[m.ID] = true
	}
	require.Len(t, seen, 120)
}

func TestMessageStoreExactPageBoundary(t *testing.T) {
	store := NewMessageStore(kv.NewMemory())
	ctx := context.Background()

	base := time.Now().Add(-time.Minute).UnixMilli()
	for i := 0; i < 50; i++ {
		require.NoError(t, store.Store(ctx, "chat_1", newTestMessage(fmt.Sprintf("msg_%02d", i), base+int64(i))))
	}

	page, err := store.GetMessages(ctx, "chat_1", 50, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 50)
	require.False(t, page.HasMore)
}

func TestMessageStoreSameMillisecond(t *testing.T) {
	store := NewMessageStore(kv.NewMemory())
	ctx := context.Background()

	ts := time.Now().UnixMilli()
	require.NoError(t, store.Store(ctx, "chat_1", newTestMessage("msg_a", ts)))
	require.NoError(t, store.Store(ctx, "chat_1", newTestMessage("msg_b", ts)))

	page, err := store.GetMessages(ctx, "chat_1", 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
}

func TestMessageStoreEditPreservesTimestamp(t *testing.T) {
	store := NewMessageStore(kv.NewMemory())
	ctx := context.Background()

	edited := time.Now()
	store.now = func() time.Time { return edited }

	sentAt := edited.Add(-time.Hour).UnixMilli()
	require.NoError(t, store.Store(ctx, "chat_1", newTestMessage("msg_1", sentAt)))
	require.NoError(t, store.Store(ctx, "chat_1", newTestMessage("msg_2", sentAt+1)))

	msg, err := store.EditMessage(ctx, "chat_1", "msg_1", "updated")
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Equal(t, "updated", msg.Content)
	require.True(t, msg.Edited)
	require.NotNil(t, msg.EditedAt)
	require.Equal(t, edited.UnixMilli(), *msg.EditedAt)
	require.Equal(t, sentAt, msg.Timestamp)

	// Ordering by send time survives the edit: msg_2 is still newest.
	page, err := store.GetMessages(ctx, "chat_1", 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	require.Equal(t, "msg_2", page.Messages[0].ID)
	require.Equal(t, "msg_1", page.Messages[1].ID)
	require.Equal(t, "updated", page.Messages[1].Content)
}

func TestMessageStoreEditMissing(t *testing.T) {
	store := NewMessageStore(kv.NewMemory())

	msg, err := store.EditMessage(context.Background(), "chat_1", "msg_nope", "x")
	require.NoError(t, err)
	require.Nil(t, msg)
}

func TestMessageStoreDeleteTwice(t *testing.T) {
	store := NewMessageStore(kv.NewMemory())
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "chat_1", newTestMessage("msg_1", time.Now().UnixMilli())))

	ok, err := store.DeleteMessage(ctx, "chat_1", "msg_1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.DeleteMessage(ctx, "chat_1", "msg_1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMessageStoreGetLastMessage(t *testing.T) {
	store := NewMessageStore(kv.NewMemory())
	ctx := context.Background()

	last, err := store.GetLastMessage(ctx, "chat_1")
	require.NoError(t, err)
	require.Nil(t, last)

	base := time.Now().UnixMilli()
	require.NoError(t, store.Store(ctx, "chat_1", newTestMessage("msg_1", base)))
	require.NoError(t, store.Store(ctx, "chat_1", newTestMessage("msg_2", base+5)))

	last, err = store.GetLastMessage(ctx, "chat_1")
	require.NoError(t, err)
	require.NotNil(t, last)
	require.Equal(t, "msg_2", last.ID)
}

func TestMessageStoreDeleteOldMessages(t *testing.T) {
	store := NewMessageStore(kv.NewMemory())
	ctx := context.Background()

	base := time.Now().UnixMilli()
	require.NoError(t, store.Store(ctx, "chat_1", newTestMessage("msg_old", base-100)))
	require.NoError(t, store.Store(ctx, "chat_1", newTestMessage("msg_cut", base-50)))
	require.NoError(t, store.Store(ctx, "chat_1", newTestMessage("msg_new", base)))

	// The cutoff itself is deleted.
	deleted, err := store.DeleteOldMessages(ctx, "chat_1", base-50)
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	page, err := store.GetMessages(ctx, "chat_1", 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	require.Equal(t, "msg_new", page.Messages[0].ID)
}
