package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware guards mutating endpoints with the shared bearer secret. The
// Authorization header must carry the exact configured token; comparison is
// constant-time.
func Middleware(token string) gin.HandlerFunc {
	secret := []byte(token)
	return func(c *gin.Context) {
		supplied := []byte(c.GetHeader("Authorization"))
		if len(secret) == 0 || subtle.ConstantTimeCompare(secret, supplied) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
