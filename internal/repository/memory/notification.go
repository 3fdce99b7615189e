package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manas-swain-001/cms/internal/domain/notification"
)

type notificationRepository struct {
	mu            sync.RWMutex
	notifications []*notification.Notification
}

// NewNotificationRepository creates an empty in-memory notification store.
func NewNotificationRepository() notification.Repository {
	return &notificationRepository{}
}

// Create implements notification.Repository.
func (m *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	stored := *n
	m.notifications = append(m.notifications, &stored)
	return nil
}

// CreateBatch implements notification.Repository.
func (m *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		stored := *n
		m.notifications = append(m.notifications, &stored)
	}
	return nil
}

// GetByUserID implements notification.Repository.
func (m *notificationRepository) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*notification.Notification
	for _, n := range m.notifications {
		if n.RecipientID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		copied := *n
		all = append(all, &copied)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := (page - 1) * pageSize
	if start >= total {
		return []*notification.Notification{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

// GetUnreadCount implements notification.Repository.
func (m *notificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, n := range m.notifications {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkAsRead implements notification.Repository.
func (m *notificationRepository) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	now := time.Now()
	for _, n := range m.notifications {
		if n.RecipientID != userID {
			continue
		}
		if _, ok := idSet[n.ID]; !ok {
			continue
		}
		if !n.IsRead {
			n.IsRead = true
			ts := now
			n.ReadAt = &ts
		}
	}
	return nil
}

// MarkAllAsRead implements notification.Repository.
func (m *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, n := range m.notifications {
		if n.RecipientID == userID && !n.IsRead {
			n.IsRead = true
			ts := now
			n.ReadAt = &ts
		}
	}
	return nil
}
