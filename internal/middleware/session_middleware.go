package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"expensely-go/internal/core"
)

// RequireSessionIdentity rejects requests whose verified token UID does not
// match the controller's current authenticated identity. The process hosts
// a single session; a valid token for some other account must not operate
// on it.
func RequireSessionIdentity(controller *core.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := controller.CurrentIdentity()
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "No active session"})
			return
		}
		if c.GetString("userID") != identity.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Token does not match the active session"})
			return
		}
		c.Next()
	}
}
