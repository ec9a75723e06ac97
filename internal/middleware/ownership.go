package middleware

import (
	"context"
	"errors"
	"net/http"

	"courtdash/internal/domain"
	"courtdash/internal/pkg/logging"
	"courtdash/internal/pkg/response"
	"courtdash/internal/upstream"

	"github.com/gin-gonic/gin"
)

type VenueLookup interface {
	GetVenue(ctx context.Context, cred upstream.Credentials, venueID string) (*domain.Venue, error)
}

const ctxOwnershipUnverified = "ownership_unverified"

type ownershipConfig struct {
	allowUnavailable bool
}

type OwnershipOption func(*ownershipConfig)

// AllowUnavailable lets the request through when the venue lookup fails for
// a reason other than the caller's access, such as a backend outage or
// timeout. Handlers read the failure with OwnershipUnverified and must not
// return venue data in that case.
func AllowUnavailable() OwnershipOption {
	return func(cfg *ownershipConfig) { cfg.allowUnavailable = true }
}

// OwnershipUnverified returns the lookup error when ownership could not be
// checked and the route allowed it through.
func OwnershipUnverified(c *gin.Context) error {
	if v, ok := c.Get(ctxOwnershipUnverified); ok {
		if err, ok := v.(error); ok {
			return err
		}
	}
	return nil
}

// VenueOwnership verifies the caller owns the venue in URL param "venueId".
// Must run after BearerCredentials.
func VenueOwnership(venues VenueLookup, opts ...OwnershipOption) gin.HandlerFunc {
	var cfg ownershipConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(c *gin.Context) {
		ownerID := OwnerIDFrom(c)
		if ownerID == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}

		venueID := c.Param("venueId")
		if venueID == "" {
			response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid venue ID")
			c.Abort()
			return
		}

		venue, err := venues.GetVenue(c.Request.Context(), CredentialsFrom(c), venueID)
		if err != nil {
			if cfg.allowUnavailable && lookupUnavailable(err) {
				logging.FromContext(c.Request.Context()).WithError(err).
					WithField("venue_id", venueID).Warn("venue ownership unverified")
				c.Set(ctxOwnershipUnverified, err)
				c.Next()
				return
			}
			response.Upstream(c, err)
			c.Abort()
			return
		}

		if venue.OwnerID != ownerID {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this venue")
			c.Abort()
			return
		}

		c.Next()
	}
}

// lookupUnavailable is true for outages and timeouts. Rejections such as 401,
// 403 or 404 and a cancelled request are not.
func lookupUnavailable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return true
}
