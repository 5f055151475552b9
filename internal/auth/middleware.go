package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxSubject = "auth_subject"
	ctxRole    = "auth_role"
)

// Middleware validates the Bearer token and stores subject and role on the
// gin context.
func Middleware(key, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sesi tidak ditemukan. Silakan login ulang."})
			return
		}
		claims, err := Parse(token, key, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Sesi tidak valid. Silakan login ulang."})
			return
		}
		c.Set(ctxSubject, claims.Subject)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[RoleFrom(c)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Akses ditolak."})
			return
		}
		c.Next()
	}
}

func SubjectFrom(c *gin.Context) string { return c.GetString(ctxSubject) }
func RoleFrom(c *gin.Context) string    { return c.GetString(ctxRole) }
