package usecases

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"codemint.backend/internal/domain/entities"
)

// NotificationCenter keeps the stack of user-visible notifications for the
// authoring and minting flows. Notifications are ephemeral: held in memory,
// newest first, removed on dismissal or replaced when their flow settles.
type NotificationCenter struct {
	mu    sync.Mutex
	stack []entities.Notification
}

// NewNotificationCenter creates an empty notification center
func NewNotificationCenter() *NotificationCenter {
	return &NotificationCenter{}
}

// Push adds a notification and returns its id.
func (c *NotificationCenter) Push(kind entities.NotificationKind, message string) string {
	n := entities.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}
	c.mu.Lock()
	c.stack = append([]entities.Notification{n}, c.stack...)
	c.mu.Unlock()
	return n.ID
}

// Replace atomically dismisses the notification with oldID and pushes a new
// one, so a pending notice flips to its outcome without a gap.
func (c *NotificationCenter) Replace(oldID string, kind entities.NotificationKind, message string) string {
	n := entities.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(oldID)
	c.stack = append([]entities.Notification{n}, c.stack...)
	return n.ID
}

// Dismiss removes a notification by id. Unknown ids are ignored.
func (c *NotificationCenter) Dismiss(id string) {
	c.mu.Lock()
	c.removeLocked(id)
	c.mu.Unlock()
}

// List returns the current stack, newest first.
func (c *NotificationCenter) List() []entities.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]entities.Notification, len(c.stack))
	copy(out, c.stack)
	return out
}

func (c *NotificationCenter) removeLocked(id string) {
	for i, n := range c.stack {
		if n.ID == id {
			c.stack = append(c.stack[:i], c.stack[i+1:]...)
			return
		}
	}
}
