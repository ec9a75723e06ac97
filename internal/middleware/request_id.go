package middleware

import (
	"courtdash/internal/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const HeaderRequestID = "X-Request-ID"

// RequestID assigns an id when the caller sent none and puts a logger
// carrying it on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(HeaderRequestID, id)

		entry := logrus.WithField("request_id", id)
		c.Request = c.Request.WithContext(logging.ToContext(c.Request.Context(), entry))

		c.Next()
	}
}
