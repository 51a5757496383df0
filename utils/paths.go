package utils

import "fmt"

// Realtime database path layout. Every component builds paths through these
// helpers so the primary/QR namespace split stays in one place.

func UserDevicesPath(userID string) string {
	return fmt.Sprintf("users/%s/devices", userID)
}

func QRDevicesPath(userID string) string {
	return fmt.Sprintf("qr-devices/%s", userID)
}

// DevicePath returns the record path for one device. The QR namespace and the
// primary namespace never both hold a live record for the same device.
func DevicePath(userID, deviceID string, isQR bool) string {
	if isQR {
		return fmt.Sprintf("qr-devices/%s/%s", userID, deviceID)
	}
	return fmt.Sprintf("users/%s/devices/%s", userID, deviceID)
}

func QRSessionPath(sessionID string) string {
	return fmt.Sprintf("qr-sessions/%s", sessionID)
}

func UserProfilePath(userID string) string {
	return fmt.Sprintf("users/%s/profile", userID)
}

func MessagesPath(userID string) string {
	return fmt.Sprintf("users/%s/messages", userID)
}

func MessagePath(userID, messageID string) string {
	return fmt.Sprintf("users/%s/messages/%s", userID, messageID)
}

func FoldersPath(userID string) string {
	return fmt.Sprintf("users/%s/folders", userID)
}

func FolderPath(userID, folderID string) string {
	return fmt.Sprintf("users/%s/folders/%s", userID, folderID)
}

const GlobalMessagesPath = "globalMessages"

func GlobalMessagePath(messageID string) string {
	return fmt.Sprintf("globalMessages/%s", messageID)
}

func NotificationsPath(userID string) string {
	return fmt.Sprintf("notifications/%s", userID)
}

func NotificationPath(userID, notifID string) string {
	return fmt.Sprintf("notifications/%s/%s", userID, notifID)
}
