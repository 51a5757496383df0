package middleware

import (
	"net/http"

	"clipsynq/services/session"

	"github.com/gin-gonic/gin"
)

// SessionAuthMiddleware guards routes that need an acting user. It accepts
// both provider sessions and QR-linked sessions.
func SessionAuthMiddleware(sess session.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := sess.UserID()
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
			return
		}
		c.Set("userID", userID)
		c.Set("isQRLogin", sess.IsQRLogin())
		c.Next()
	}
}
