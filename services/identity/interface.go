// Package identity is the external identity-provider boundary. The agent
// never handles authentication cryptography itself; it delegates to the
// provider and only tracks who is currently signed in.
package identity

import (
	"context"

	"clipsynq/models"
)

type Provider interface {
	// SignInWithEmail authenticates with email/password and caches the user.
	SignInWithEmail(ctx context.Context, email, password string) (*models.AuthUser, error)
	// SignUpWithEmail creates an account and caches the user.
	SignUpWithEmail(ctx context.Context, email, password string) (*models.AuthUser, error)
	// CurrentUser returns the signed-in user, or nil when unauthenticated.
	CurrentUser() *models.AuthUser
	// SignOut terminates the provider session. Idempotent.
	SignOut(ctx context.Context) error
}
