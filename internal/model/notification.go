package model

import "time"

// Notification types.
const (
	NotificationPayment     = "PAYMENT_RECEIVED"
	NotificationMaintenance = "MAINTENANCE_REQUESTED"
	NotificationLease       = "LEASE_UPDATE"
)

// Notification is a per-user message in the `notifications` table. Rows are
// written by the queue consumer when domain events arrive and read by the
// owning user through the API.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id (recipient)
	Type      string    // notifications.type
	Message   string    // notifications.message
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
