// Package middleware holds the gin middlewares the router wires in
// front of protected routes.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/advisr/backend/internal/auth"
)

const (
	ctxKeyUID   = "auth.uid"
	ctxKeyEmail = "auth.email"
)

// RequireAuth verifies the Bearer token and stashes the caller identity
// on the request context. Missing token is 401, a bad one is 403.
func RequireAuth(jwt *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"kind": "auth", "code": "missing_token", "message": "access denied, no token provided"},
			})
			return
		}
		claims, err := jwt.Verify(parts[1])
		if err != nil || claims.UID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"kind": "auth", "code": "invalid_token", "message": "invalid token"},
			})
			return
		}
		c.Set(ctxKeyUID, claims.UID)
		c.Set(ctxKeyEmail, claims.Email)
		c.Next()
	}
}

// CallerUID returns the authenticated account id set by RequireAuth.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxKeyUID)
}

// CallerEmail returns the authenticated email set by RequireAuth.
func CallerEmail(c *gin.Context) string {
	return c.GetString(ctxKeyEmail)
}
