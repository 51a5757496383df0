// Package localstore is the agent-local analog of browser localStorage: a
// small persisted key/value store holding the device identity and session
// markers every other component reads through the session selector.
package localstore

// Marker keys shared across components. The set cleared on logout is exactly
// the identity/session surface; deviceId survives nothing but a wiped store.
const (
	KeyDeviceID        = "deviceId"
	KeyDeviceName      = "deviceName"
	KeyLinkedUserID    = "linkedUserId"
	KeyLinkedUserEmail = "linkedUserEmail"
	KeyLinkedUserName  = "linkedUserName"
	KeyLinkedUserPhoto = "linkedUserPhoto"
	KeyLoginMethod     = "loginMethod"
	KeyCurrentFolder   = "currentFolder"
)

// LoginMethodQR marks a QR-linked session; primary sessions carry no marker.
const LoginMethodQR = "qr"

// Store abstracts marker persistence. Get returns "" for absent keys.
type Store interface {
	Get(key string) string
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
