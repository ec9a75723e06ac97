package views

import (
	"errors"
	"net/http"
	"strconv"

	"courtdash/internal/middleware"
	"courtdash/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterVenueRoutes expects a group with the venue ownership check.
func (h *Handler) RegisterVenueRoutes(venues *gin.RouterGroup) {
	venues.GET("/views", h.List)
	venues.POST("/views", h.Create)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/views/:id", h.Delete)
}

// @Summary Saved booking views of a venue
// @Tags Views
// @Produce json
// @Param venueId path string true "Venue ID"
// @Success 200 {object} map[string]interface{}
// @Router /owner/venues/{venueId}/views [get]
// @Security Bearer
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context(), middleware.OwnerIDFrom(c), c.Param("venueId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load saved views")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"views": list})
}

// @Summary Save a booking view
// @Tags Views
// @Accept json
// @Produce json
// @Param venueId path string true "Venue ID"
// @Param request body CreateRequest true "Name and list parameters"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /owner/venues/{venueId}/views [post]
// @Security Bearer
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	v, err := h.service.Create(c.Request.Context(), middleware.OwnerIDFrom(c), c.Param("venueId"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrDuplicate):
			response.Error(c, http.StatusConflict, "DUPLICATE_VIEW", "A saved view with this name already exists")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save view")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"view": v})
}

// @Summary Delete a saved view
// @Tags Views
// @Produce json
// @Param id path int true "View ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /owner/views/{id} [delete]
// @Security Bearer
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid view ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.OwnerIDFrom(c), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "VIEW_NOT_FOUND", "Saved view not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete view")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}
