package routes

import (
	"net/http"
	"time"

	"clipsynq/handlers"
	"clipsynq/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers sign-in, sign-up and session endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/login", hb.LoginHandler)
		api.POST("/signup", hb.SignupHandler)
		api.POST("/logout", hb.LogoutHandler)
		api.GET("/session", hb.SessionHandler)
	}
}

// RegisterDeviceRoutes registers device-management endpoints.
func RegisterDeviceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/devices")
	{
		api.Use(middleware.SessionAuthMiddleware(hb.Session))
		api.GET("", hb.ListDevicesHandler)
		api.PUT("/name", hb.RenameDeviceHandler)
		api.POST("/force-logout", hb.ForceLogoutHandler)
		api.DELETE("", hb.RemoveDeviceHandler)
		api.POST("/heartbeat", hb.HeartbeatHandler)
	}
}

// RegisterPairingRoutes registers both sides of the QR pairing flow. The scan
// endpoint is public: the scanning device is by definition not signed in yet.
func RegisterPairingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/pairing")
	{
		api.POST("/scan", hb.ScanHandler)

		owner := api.Group("")
		owner.Use(middleware.SessionAuthMiddleware(hb.Session))
		owner.POST("", hb.InitiatePairingHandler)
		owner.GET("", hb.PairingStatusHandler)
		owner.GET("/:sessionId/image", hb.PairingImageHandler)
		owner.POST("/:sessionId/approve", hb.ApprovePairingHandler)
		owner.POST("/:sessionId/deny", hb.DenyPairingHandler)
		owner.DELETE("", hb.CancelPairingHandler)
	}
}

// RegisterMessageRoutes registers the clip feed endpoints.
func RegisterMessageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/messages")
	{
		api.Use(middleware.SessionAuthMiddleware(hb.Session))
		api.POST("", hb.SendMessageHandler)
		api.GET("", hb.ListMessagesHandler)
		api.PUT("/:id", hb.EditMessageHandler)
		api.DELETE("/:id", hb.DeleteMessageHandler)
		api.PUT("/:id/pin", hb.PinMessageHandler)
		api.PUT("/:id/star", hb.StarMessageHandler)
		api.PUT("/:id/folder", hb.MoveMessageHandler)
		api.DELETE("/folder/:folder", hb.ClearFolderHandler)
	}
}

// RegisterFolderRoutes registers folder CRUD plus the active selection.
func RegisterFolderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/folders")
	{
		api.Use(middleware.SessionAuthMiddleware(hb.Session))
		api.POST("", hb.CreateFolderHandler)
		api.GET("", hb.ListFoldersHandler)
		api.PUT("/:id", hb.RenameFolderHandler)
		api.DELETE("/:id", hb.DeleteFolderHandler)
		api.PUT("/current", hb.SelectFolderHandler)
	}
}

// RegisterBoardRoutes registers the shared global board endpoints.
func RegisterBoardRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/board")
	{
		api.Use(middleware.SessionAuthMiddleware(hb.Session))
		api.POST("", hb.BoardPostHandler)
		api.GET("", hb.BoardListHandler)
		api.POST("/:id/like", hb.BoardToggleLikeHandler)
		api.POST("/:id/replies", hb.BoardReplyHandler)
		api.DELETE("/:id", hb.BoardDeleteHandler)
	}
}

// RegisterNotificationRoutes registers the notification feed endpoints.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.SessionAuthMiddleware(hb.Session))
		api.GET("", hb.ListNotificationsHandler)
		api.PUT("/:id/read", hb.MarkNotificationHandler)
		api.DELETE("/:id", hb.DeleteNotificationHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm ClipSynq"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterAuthRoutes(r, hb)
	RegisterDeviceRoutes(r, hb)
	RegisterPairingRoutes(r, hb)
	RegisterMessageRoutes(r, hb)
	RegisterFolderRoutes(r, hb)
	RegisterBoardRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterHealthRoute(r)

	// Event stream is public: the pairing scanner UI needs it before sign-in.
	r.GET("/events", hb.EventStreamHandler)
}
