package realtime

import (
	"context"
	"net/http"

	"courtdash/internal/domain"
	"courtdash/internal/pkg/jwt"
	"courtdash/internal/pkg/response"
	"courtdash/internal/upstream"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// VenueLookup resolves the venue a dashboard asks to watch.
type VenueLookup interface {
	GetVenue(ctx context.Context, cred upstream.Credentials, venueID string) (*domain.Venue, error)
}

type Handler struct {
	hub       *Hub
	inspector *jwt.Inspector
	venues    VenueLookup
	upgrader  websocket.Upgrader
}

// NewHandler builds the websocket endpoint. checkOrigin nil accepts any origin.
func NewHandler(hub *Hub, inspector *jwt.Inspector, venues VenueLookup, checkOrigin func(r *http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		hub:       hub,
		inspector: inspector,
		venues:    venues,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/venues/:venueId", h.Serve)
}

// Serve upgrades a dashboard connection for one venue.
//
// Endpoint: GET /ws/venues/:venueId?token=JWT
// Browsers cannot set headers on websocket requests, so the token rides in the query.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	claims, err := h.inspector.Inspect(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "REAUTH_REQUIRED", "Invalid or expired token")
		return
	}

	venueID := c.Param("venueId")
	venue, err := h.venues.GetVenue(c.Request.Context(), upstream.Credentials{Token: token}, venueID)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	if venue.OwnerID != claims.Owner() {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You don't own this venue")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	logrus.WithFields(logrus.Fields{"owner_id": claims.Owner(), "venue_id": venueID}).Info("dashboard connected")
	h.hub.ServeWS(conn, claims.Owner(), venueID)
}
