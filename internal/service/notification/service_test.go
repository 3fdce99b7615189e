package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manas-swain-001/cms/internal/domain/notification"
	"github.com/manas-swain-001/cms/internal/pkg/sse"
	"github.com/manas-swain-001/cms/internal/repository/memory"
)

func newNotificationTestService(t *testing.T) notification.Service {
	t.Helper()
	svc := NewNotificationService(memory.NewNotificationRepository(), nil, sse.NewHub(), nil, nil, Config{
		BatchSize:     10,
		FlushInterval: 20 * time.Millisecond,
		WorkerCount:   1,
		QueueSize:     100,
	})
	t.Cleanup(svc.Stop)
	return svc
}

func TestQueueNotification_PersistsAfterFlush(t *testing.T) {
	ctx := context.Background()
	svc := newNotificationTestService(t)

	err := svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: "user-1",
		Type:        notification.TypeCheckpointWarning,
		Title:       "Status Update Overdue",
		Message:     "Your 10:30 status update is overdue",
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		count, err := svc.GetUnreadCount(ctx, "user-1")
		return err == nil && count == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSubscribe_ReceivesQueuedEvent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := newNotificationTestService(t)

	events, cleanup := svc.Subscribe(ctx, "user-1")
	defer cleanup()

	err := svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: "user-1",
		Type:        notification.TypeCheckpointEscalated,
		Title:       "Checkpoint Escalated",
		Message:     "Your 10:30 status update was missed",
	})
	require.NoError(t, err)

	select {
	case event := <-events:
		assert.Equal(t, "notification", event.Event)
		assert.Equal(t, notification.TypeCheckpointEscalated, event.Data.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an SSE event before the timeout")
	}
}

func TestMarkAsRead(t *testing.T) {
	ctx := context.Background()
	svc := newNotificationTestService(t)

	err := svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: "user-1",
		Type:        notification.TypePunchIn,
		Title:       "Day Started",
		Message:     "Checked in at 09:05",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		count, err := svc.GetUnreadCount(ctx, "user-1")
		return err == nil && count == 1
	}, 2*time.Second, 10*time.Millisecond)

	list, err := svc.GetNotifications(ctx, "user-1", 1, 20, false)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)

	err = svc.MarkAsRead(ctx, "user-1", notification.MarkAsReadRequest{
		NotificationIDs: []string{list.Notifications[0].ID},
	})
	require.NoError(t, err)

	count, err := svc.GetUnreadCount(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
