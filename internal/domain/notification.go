package domain

import "time"

type NotificationKind string

const (
	NotificationLeaveRequested        NotificationKind = "leave_requested"
	NotificationLeaveResolved         NotificationKind = "leave_resolved"
	NotificationLeavePendingReminder  NotificationKind = "leave_pending_reminder"
	NotificationAnnouncementPublished NotificationKind = "announcement_published"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"userID"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Link      string           `json:"link"`
	ReadAt    *time.Time       `json:"readAt"`
	CreatedAt time.Time        `json:"createdAt"`
}
