package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"loan-ledger/internal/pkg/consts"
	"loan-ledger/internal/pkg/models"
)

const actingUserKey = "actingUserID"

// RequireActingUser reads the acting user set by the upstream gateway.
func RequireActingUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(consts.HeaderUserID))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
				Code:    consts.ErrorMissingActingUser.Code,
				Message: consts.ErrorMissingActingUser.Message,
			})
			return
		}
		c.Set(actingUserKey, userID)
		c.Next()
	}
}

// ActingUserID returns the user stored by RequireActingUser, or "".
func ActingUserID(c *gin.Context) string {
	return c.GetString(actingUserKey)
}
