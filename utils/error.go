package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body every error answer carries, on the
// webhook 403s and the admin API alike.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler recovers panics into a structured 500 so a broken
// handler never leaks a stack trace to the caller.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				GetLogger().Error("handler panic recovered", zap.Any("panic", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
			}
		}()
		c.Next()
	}
}

// JSONError answers with the standard error body and logs the
// rejection once at the edge, so handlers respond without logging
// separately.
func JSONError(c *gin.Context, status int, message, details string) {
	GetLogger().Warn("request rejected",
		zap.Int("status", status),
		zap.String("message", message),
		zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}
