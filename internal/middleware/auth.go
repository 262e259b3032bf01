package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"caradmin/internal/backend"
	"caradmin/internal/domain"
	"caradmin/internal/pkg/response"
	"caradmin/internal/pkg/slogx"
)

const (
	ctxPrincipal = "principal"
	ctxUpstream  = "upstream"
)

var (
	ErrNoToken        = errors.New("no console token")
	ErrSessionExpired = errors.New("console session expired")
)

// Authenticator resolves a console token to the operator and an upstream
// client bound to the operator's backend token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, *backend.Client, error)
}

// ConsoleAuth requires a valid console session. The token comes from the
// Authorization header, or from ?token= for websocket upgrades.
func ConsoleAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			c.Abort()
			return
		}

		p, client, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrSessionExpired) {
				response.Error(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Сессия истекла, войдите снова")
			} else {
				response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			}
			c.Abort()
			return
		}

		c.Set(ctxPrincipal, p)
		c.Set(ctxUpstream, client)
		c.Set("admin_id", p.AdminID)

		ctx := slogx.WithContext(c.Request.Context(), slogx.FromContext(c.Request.Context()).With("admin_id", p.AdminID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(c.Query("token"))
}

// CurrentPrincipal returns the operator set by ConsoleAuth.
func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// Upstream returns the request's backend client set by ConsoleAuth.
func Upstream(c *gin.Context) *backend.Client {
	v, ok := c.Get(ctxUpstream)
	if !ok {
		return nil
	}
	client, _ := v.(*backend.Client)
	return client
}
