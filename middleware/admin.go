package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin rejects callers whose verified token lacks the admin flag.
// Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
