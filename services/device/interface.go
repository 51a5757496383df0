// Package device maintains this device's presence record, lists and prunes
// the account's devices, and watches its own record for a remote force-logout.
package device

import (
	"context"

	"clipsynq/models"
)

type Registry interface {
	// Register fully replaces the device record at the namespace selected by
	// isQR. All three identifiers must be non-empty.
	Register(ctx context.Context, userID, deviceID, name string, isQR bool) error
	// RegisterCurrentDevice registers this device under the acting identity,
	// pruning any stale record left in the other namespace.
	RegisterCurrentDevice(ctx context.Context) error
	// UpdateStatus merges isOnline and lastSeen into the current record.
	// No-op when no user or device id resolves.
	UpdateStatus(ctx context.Context, online bool) error
	// Rename updates the record name and the local deviceName marker.
	Rename(ctx context.Context, newName string) error
	// Remove deletes a device record.
	Remove(ctx context.Context, userID, deviceID string, isQR bool) error
	// ForceLogout flags another device of the same user for remote logout.
	// This is the only cross-device write the registry exposes.
	ForceLogout(ctx context.Context, deviceID string, isQR bool) error
	// List merges both namespaces, pruning nameless records opportunistically.
	List(ctx context.Context) ([]models.DeviceEntry, error)
}
