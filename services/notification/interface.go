// Package notification handles the per-user notification feed.
package notification

import (
	"context"

	"clipsynq/database"
	"clipsynq/models"
)

type Service interface {
	// Push stores a notification for a user (e.g. "new device linked").
	Push(ctx context.Context, userID string, n models.Notification) (string, error)
	// MarkRead flips the read flag on one notification.
	MarkRead(ctx context.Context, notifID string) error
	// Delete removes one notification.
	Delete(ctx context.Context, notifID string) error
	// List returns the acting user's notifications keyed by id.
	List(ctx context.Context) (map[string]models.Notification, error)
	// Watch subscribes to the acting user's notifications.
	Watch(ctx context.Context, fn func(map[string]models.Notification)) (database.UnsubscribeFunc, error)
}
