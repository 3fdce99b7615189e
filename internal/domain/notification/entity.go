package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeCheckpointReminder   NotificationType = "checkpoint_reminder"
	TypeCheckpointWarning    NotificationType = "checkpoint_warning"
	TypeCheckpointEscalated  NotificationType = "checkpoint_escalated"
	TypePunchIn              NotificationType = "punch_in"
	TypePunchOut             NotificationType = "punch_out"
	TypeAttendanceAutoClosed NotificationType = "attendance_auto_closed"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeCheckpointReminder,
		TypeCheckpointWarning,
		TypeCheckpointEscalated,
		TypePunchIn,
		TypePunchOut,
		TypeAttendanceAutoClosed,
	}
}

// Escalating reports whether the type should also fan out to email and
// push, not just the in-app stream.
func (t NotificationType) Escalating() bool {
	return t == TypeCheckpointEscalated
}

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
