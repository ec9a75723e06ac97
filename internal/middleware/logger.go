package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"courtdash/internal/pkg/logging"
	"courtdash/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorLogger logs failed requests and recovers from panics.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				logRequestError(c, start, "panic", fmt.Sprintf("%v", recovered)).
					WithField("stack", string(debug.Stack())).
					Error("request panicked")

				response.Error(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error")
				c.Abort()
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					logRequestError(c, start, "http_error", fmt.Sprintf("status=%d", c.Writer.Status())).Error("request failed")
				}
				return
			}

			for _, err := range c.Errors {
				entry := logRequestError(c, start, fmt.Sprintf("%v", err.Type), err.Error())
				if err.Meta != nil {
					entry = entry.WithField("meta", err.Meta)
				}
				entry.Error("request error")
			}
		}()

		c.Next()
	}
}

func logRequestError(c *gin.Context, start time.Time, errType, message string) *logrus.Entry {
	return logging.FromContext(c.Request.Context()).WithFields(logrus.Fields{
		"type":      errType,
		"status":    c.Writer.Status(),
		"method":    c.Request.Method,
		"path":      c.Request.URL.Path,
		"query":     c.Request.URL.RawQuery,
		"client_ip": c.ClientIP(),
		"latency":   time.Since(start).String(),
		"error":     message,
	})
}
