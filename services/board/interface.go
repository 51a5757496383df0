// Package board is the shared global message board visible to every account.
package board

import (
	"context"

	"clipsynq/database"
	"clipsynq/models"
)

type Service interface {
	// Post publishes a message to the global board.
	Post(ctx context.Context, text string) (string, error)
	// ToggleLike flips the acting user's like on a post.
	ToggleLike(ctx context.Context, messageID string) error
	// Reply adds a threaded answer under a post.
	Reply(ctx context.Context, messageID, text string) (string, error)
	// Delete removes a post. Only the author may delete their own.
	Delete(ctx context.Context, messageID string) error
	// List returns the board, keyed by post id.
	List(ctx context.Context) (map[string]models.GlobalMessage, error)
	// Watch subscribes to board updates.
	Watch(ctx context.Context, fn func(map[string]models.GlobalMessage)) (database.UnsubscribeFunc, error)
}
