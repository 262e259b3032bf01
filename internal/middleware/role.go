package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caradmin/internal/pkg/response"
)

// SuperOnly lets only super admins through.
func SuperOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}

		if !p.IsSuper {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: super admin required")
			c.Abort()
			return
		}

		c.Next()
	}
}
