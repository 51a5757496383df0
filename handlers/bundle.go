package handlers

import (
	"clipsynq/services/session"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Session session.Service

	// Auth endpoints
	LoginHandler   gin.HandlerFunc
	SignupHandler  gin.HandlerFunc
	LogoutHandler  gin.HandlerFunc
	SessionHandler gin.HandlerFunc

	// Device endpoints
	ListDevicesHandler  gin.HandlerFunc
	RenameDeviceHandler gin.HandlerFunc
	ForceLogoutHandler  gin.HandlerFunc
	RemoveDeviceHandler gin.HandlerFunc
	HeartbeatHandler    gin.HandlerFunc

	// Pairing endpoints
	InitiatePairingHandler gin.HandlerFunc
	PairingStatusHandler   gin.HandlerFunc
	PairingImageHandler    gin.HandlerFunc
	ApprovePairingHandler  gin.HandlerFunc
	DenyPairingHandler     gin.HandlerFunc
	CancelPairingHandler   gin.HandlerFunc
	ScanHandler            gin.HandlerFunc

	// Message endpoints
	SendMessageHandler   gin.HandlerFunc
	ListMessagesHandler  gin.HandlerFunc
	EditMessageHandler   gin.HandlerFunc
	DeleteMessageHandler gin.HandlerFunc
	PinMessageHandler    gin.HandlerFunc
	StarMessageHandler   gin.HandlerFunc
	MoveMessageHandler   gin.HandlerFunc
	ClearFolderHandler   gin.HandlerFunc

	// Folder endpoints
	CreateFolderHandler gin.HandlerFunc
	ListFoldersHandler  gin.HandlerFunc
	RenameFolderHandler gin.HandlerFunc
	DeleteFolderHandler gin.HandlerFunc
	SelectFolderHandler gin.HandlerFunc

	// Board endpoints
	BoardPostHandler       gin.HandlerFunc
	BoardListHandler       gin.HandlerFunc
	BoardToggleLikeHandler gin.HandlerFunc
	BoardReplyHandler      gin.HandlerFunc
	BoardDeleteHandler     gin.HandlerFunc

	// Notification endpoints
	ListNotificationsHandler  gin.HandlerFunc
	MarkNotificationHandler   gin.HandlerFunc
	DeleteNotificationHandler gin.HandlerFunc

	// Event stream
	EventStreamHandler gin.HandlerFunc
}
