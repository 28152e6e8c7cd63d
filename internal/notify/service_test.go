package notify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanderlink/backend/internal/docstore"
	"wanderlink/backend/internal/models"
	"wanderlink/backend/internal/notify"
)

func newService(t *testing.T) *notify.Service {
	t.Helper()
	store := docstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	return notify.NewService(store, nil)
}

func TestNotifyPrependsNewestFirst(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Notify(ctx, "alice", models.Notification{Type: models.NotificationChatMessage, Title: "un"})
	require.NoError(t, err)
	second, err := svc.Notify(ctx, "alice", models.Notification{Type: models.NotificationChatMessage, Title: "deux"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "alice", list[0].UserID)
	assert.False(t, list[0].Read)
}

func TestNotificationsAreSingleRecipient(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Notify(ctx, "alice", models.Notification{Title: "pour alice"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	n, err := svc.Notify(ctx, "alice", models.Notification{Title: "a"})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(ctx, "alice", n.ID))
	require.NoError(t, svc.MarkRead(ctx, "alice", n.ID))
	require.NoError(t, svc.MarkRead(ctx, "alice", "missing"))

	count, err := svc.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllRead(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Notify(ctx, "alice", models.Notification{Title: "n"})
		require.NoError(t, err)
	}
	count, err := svc.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, svc.MarkAllRead(ctx, "alice"))
	count, err = svc.UnreadCount(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	n, err := svc.Notify(ctx, "alice", models.Notification{Title: "a"})
	require.NoError(t, err)
	_, err = svc.Notify(ctx, "alice", models.Notification{Title: "b"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "alice", n.ID))
	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Title)

	// deleting again is a no-op
	require.NoError(t, svc.Delete(ctx, "alice", n.ID))

	require.NoError(t, svc.DeleteAll(ctx, "alice"))
	list, err = svc.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, list)
}
