package response

import (
	"context"
	"errors"
	"net/http"

	"courtdash/internal/upstream"

	"github.com/gin-gonic/gin"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Upstream maps a backend failure onto the dashboard's error envelope.
// A 401 tells the dashboard to drop its token and log in again.
func Upstream(c *gin.Context, err error) {
	var apiErr *upstream.APIError
	switch {
	case errors.Is(err, upstream.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, "REAUTH_REQUIRED", "Session expired, please log in again")
	case errors.Is(err, upstream.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", messageOf(err))
	case errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Booking service did not respond in time")
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		Error(c, apiErr.StatusCode, "UPSTREAM_REJECTED", apiErr.Message)
	default:
		Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", messageOf(err))
	}
}

func messageOf(err error) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
