package middleware

import (
	"errors"
	"net/http"
	"strings"

	"courtdash/internal/pkg/jwt"
	"courtdash/internal/pkg/logging"
	"courtdash/internal/pkg/response"
	"courtdash/internal/upstream"

	"github.com/gin-gonic/gin"
)

const (
	ctxCredentials = "credentials"
	ctxOwnerID     = "owner_id"
	ctxRole        = "role"
)

// BearerCredentials requires an Authorization: Bearer header, screens the token
// and stores it for forwarding to the backend.
func BearerCredentials(inspector *jwt.Inspector) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			c.Abort()
			return
		}
		if !strings.HasPrefix(h, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Invalid Authorization header")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		claims, err := inspector.Inspect(token)
		if err != nil {
			code := "INVALID_TOKEN"
			if errors.Is(err, jwt.ErrExpiredToken) {
				code = "REAUTH_REQUIRED"
			}
			response.Error(c, http.StatusUnauthorized, code, err.Error())
			c.Abort()
			return
		}

		c.Set(ctxCredentials, upstream.Credentials{Token: token})
		c.Set(ctxOwnerID, claims.Owner())
		c.Set(ctxRole, claims.Role)

		entry := logging.FromContext(c.Request.Context()).WithField("owner_id", claims.Owner())
		c.Request = c.Request.WithContext(logging.ToContext(c.Request.Context(), entry))

		c.Next()
	}
}

func CredentialsFrom(c *gin.Context) upstream.Credentials {
	if v, ok := c.Get(ctxCredentials); ok {
		if cred, ok := v.(upstream.Credentials); ok {
			return cred
		}
	}
	return upstream.Credentials{}
}

func OwnerIDFrom(c *gin.Context) string {
	return c.GetString(ctxOwnerID)
}
