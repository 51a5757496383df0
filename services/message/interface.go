// Package message handles the per-user clip feed: short texts and links
// shared across the account's devices.
package message

import (
	"context"

	"clipsynq/database"
	"clipsynq/models"
)

type Service interface {
	// Send stores a new clip, auto-detecting links, stamped with this device.
	Send(ctx context.Context, text, folder string) (string, error)
	// Edit replaces the text of an existing clip.
	Edit(ctx context.Context, messageID, text string) error
	// Delete removes one clip.
	Delete(ctx context.Context, messageID string) error
	// ClearFolder removes every clip in a folder ("all" clears everything).
	ClearFolder(ctx context.Context, folder string) error
	// SetPinned and SetStarred toggle clip flags.
	SetPinned(ctx context.Context, messageID string, pinned bool) error
	SetStarred(ctx context.Context, messageID string, starred bool) error
	// MoveToFolder reassigns a clip.
	MoveToFolder(ctx context.Context, messageID, folder string) error
	// List returns the current clips keyed by id.
	List(ctx context.Context) (map[string]models.Message, error)
	// Watch subscribes to the clip feed of the acting user.
	Watch(ctx context.Context, fn func(map[string]models.Message)) (database.UnsubscribeFunc, error)
}
