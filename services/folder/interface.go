// Package folder manages the user's clip folders.
package folder

import (
	"context"

	"clipsynq/database"
	"clipsynq/models"
)

type Service interface {
	// Create adds a named folder. Names must be unique per user.
	Create(ctx context.Context, name, icon string) (string, error)
	// Rename changes a folder's display name.
	Rename(ctx context.Context, folderID, name string) error
	// Delete removes a folder and moves its clips back to "all".
	Delete(ctx context.Context, folderID string) error
	// List returns the current folders keyed by id.
	List(ctx context.Context) (map[string]models.Folder, error)
	// Watch subscribes to folder changes for the acting user.
	Watch(ctx context.Context, fn func(map[string]models.Folder)) (database.UnsubscribeFunc, error)
}
