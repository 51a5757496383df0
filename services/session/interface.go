// Package session owns the session-mode decision: whether this device is
// acting under a primary provider session or a QR-linked one, and which user
// id every other component should build paths with. No other package may
// re-derive this precedence.
package session

import "clipsynq/models"

type Service interface {
	// UserID resolves the effective acting identity. A live provider session
	// wins unconditionally; otherwise a cached QR linkage; otherwise "".
	UserID() string
	// IsQRLogin is true only when there is no provider session and both the
	// loginMethod=qr marker and a linked user id are present. This boolean
	// gates the storage namespace for all device writes.
	IsQRLogin() bool
	// PromoteQRSession clears QR markers when a provider session is live.
	// One-directional, idempotent, logged on the transition only.
	PromoteQRSession()
	// LinkQRUser persists the linked-user markers after a successful QR
	// device registration. loginMethod=qr is written here and nowhere else.
	LinkQRUser(userID, email, name, photo string) error
	// ClearLocalSession removes all local identity/device/session markers and
	// resets in-memory state. Never fails; storage errors are logged.
	ClearLocalSession()
	// UserLabel is the best display label for the acting user.
	UserLabel() string
	// CurrentFolder and SetCurrentFolder manage the persisted folder selection.
	CurrentFolder() string
	SetCurrentFolder(folder string)
	// CurrentUser exposes the provider user when one is signed in.
	CurrentUser() *models.AuthUser
}
