package entities

import "time"

// NotificationKind classifies a user-visible notification
type NotificationKind string

const (
	NotificationKindError   NotificationKind = "error"
	NotificationKindInfo    NotificationKind = "info"
	NotificationKindPending NotificationKind = "pending"
)

// Notification is an ephemeral user-facing record. Not persisted; removed
// on explicit dismissal or on terminal flow state.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"createdAt"`
}
