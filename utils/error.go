package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// apiError is the JSON envelope every endpoint returns on failure.
type apiError struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// JSONError writes a structured error response and logs it at warn level.
func JSONError(c *gin.Context, status int, message, details string) {
	GetLogger().Warn(message, zap.Int("status", status), zap.String("details", details))
	c.JSON(status, apiError{Message: message, Details: details})
}

// ErrorHandler converts a panic escaping a handler into a 500 response so the
// agent keeps serving.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				GetLogger().Error("panic in handler",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred.",
				})
			}
		}()
		c.Next()
	}
}
