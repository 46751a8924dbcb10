package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	staffRepo "barberflow/database/repository/staff"
	"barberflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StaffClaimsKey is the gin context key the authenticated staff claims
// are stored under.
const StaffClaimsKey = "staffClaims"

// StaffAuthMiddleware validates the Bearer token on admin API requests
// and loads the account to confirm it is still active. Valid requests
// carry the claims in the context; handlers use them for shop scoping.
func StaffAuthMiddleware(repo staffRepo.StaffRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()

		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := utils.ExtractStaffClaims(tokenString)
		if err != nil {
			logger.Debug("staff token rejected", zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		staff, err := repo.GetByID(ctx, claims.StaffID)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "failed to verify account")
			c.Abort()
			return
		}
		if staff == nil || !staff.Active {
			utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "account disabled")
			c.Abort()
			return
		}

		c.Set(StaffClaimsKey, claims)
		c.Next()
	}
}

// StaffClaims pulls the authenticated claims back out of the context.
func StaffClaims(c *gin.Context) (*utils.StaffClaims, bool) {
	v, ok := c.Get(StaffClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.StaffClaims)
	return claims, ok
}
