package venue

import (
	"context"
	"net/http"

	"courtdash/internal/domain"
	"courtdash/internal/middleware"
	"courtdash/internal/pkg/response"
	"courtdash/internal/upstream"

	"github.com/gin-gonic/gin"
)

type Source interface {
	GetVenue(ctx context.Context, cred upstream.Credentials, venueID string) (*domain.Venue, error)
	ListEquipment(ctx context.Context, cred upstream.Credentials, venueID string) ([]domain.Equipment, error)
}

type Handler struct {
	source Source
}

func NewHandler(source Source) *Handler {
	return &Handler{source: source}
}

// RegisterVenueRoutes expects a group with the venue ownership check.
func (h *Handler) RegisterVenueRoutes(venues *gin.RouterGroup) {
	venues.GET("", h.Get)
	venues.GET("/equipment", h.ListEquipment)
}

// @Summary Venue details
// @Tags Venues
// @Produce json
// @Param venueId path string true "Venue ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /owner/venues/{venueId} [get]
// @Security Bearer
func (h *Handler) Get(c *gin.Context) {
	v, err := h.source.GetVenue(c.Request.Context(), middleware.CredentialsFrom(c), c.Param("venueId"))
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"venue": v})
}

// @Summary Rental equipment of a venue
// @Tags Venues
// @Produce json
// @Param venueId path string true "Venue ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /owner/venues/{venueId}/equipment [get]
// @Security Bearer
func (h *Handler) ListEquipment(c *gin.Context) {
	list, err := h.source.ListEquipment(c.Request.Context(), middleware.CredentialsFrom(c), c.Param("venueId"))
	if err != nil {
		response.Upstream(c, err)
		return
	}
	if list == nil {
		list = []domain.Equipment{}
	}
	response.Success(c, http.StatusOK, gin.H{"equipment": list})
}
