package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"courtdash/internal/domain"
	"courtdash/internal/middleware"
	"courtdash/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	views   SavedQueries
}

func NewHandler(service *Service, views SavedQueries) *Handler {
	return &Handler{service: service, views: views}
}

// RegisterVenueRoutes registers the venue-scoped reads. The group is expected
// to carry the venue ownership check, built with AllowUnavailable so a
// backend outage still yields an empty dashboard.
func (h *Handler) RegisterVenueRoutes(venues *gin.RouterGroup) {
	venues.GET("/bookings", h.Dashboard)
	venues.GET("/bookings/stats", h.Stats)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.PATCH("/:id/status", h.UpdateStatus)
		bookings.PATCH("/:id/payment-status", h.UpdatePaymentStatus)
	}
}

// @Summary Venue booking dashboard
// @Tags Bookings
// @Produce json
// @Param venueId path string true "Venue ID"
// @Param status query string false "Booking status or all"
// @Param payment_status query string false "Payment status or all"
// @Param court_type query string false "Court type or all"
// @Param search query string false "Customer name, court name or email"
// @Param date_filter query string false "all, today, tomorrow, thisWeek, custom"
// @Param sort_by query string false "date or total"
// @Param sort_order query string false "asc or desc"
// @Param view query int false "Saved view ID"
// @Success 200 {object} map[string]interface{}
// @Router /owner/venues/{venueId}/bookings [get]
// @Security Bearer
func (h *Handler) Dashboard(c *gin.Context) {
	venueID := c.Param("venueId")

	var params ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if raw := c.Query("view"); raw != "" {
		saved, ok := h.savedParams(c, venueID, raw)
		if !ok {
			return
		}
		params = params.Merge(saved)
	}

	q, err := h.service.Query(venueID, params)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FILTER", err.Error())
		return
	}

	if err := middleware.OwnershipUnverified(c); err != nil {
		response.Success(c, http.StatusOK, h.service.DashboardUnavailable(c.Request.Context(), q, err))
		return
	}

	resp, err := h.service.Dashboard(c.Request.Context(), middleware.CredentialsFrom(c), q)
	if err != nil {
		response.Upstream(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) savedParams(c *gin.Context, venueID, raw string) (ListParams, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_VIEW", "view must be a positive integer")
		return ListParams{}, false
	}
	if h.views == nil {
		response.Error(c, http.StatusNotFound, "VIEW_NOT_FOUND", "Saved view not found")
		return ListParams{}, false
	}

	stored, err := h.views.GetViewQuery(c.Request.Context(), middleware.OwnerIDFrom(c), venueID, id)
	if err != nil {
		if errors.Is(err, ErrViewNotFound) {
			response.Error(c, http.StatusNotFound, "VIEW_NOT_FOUND", "Saved view not found")
			return ListParams{}, false
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load saved view")
		return ListParams{}, false
	}

	var saved ListParams
	if len(stored) > 0 {
		if err := json.Unmarshal(stored, &saved); err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Saved view is corrupted")
			return ListParams{}, false
		}
	}
	return saved, true
}

// @Summary Venue booking stats
// @Tags Bookings
// @Produce json
// @Param venueId path string true "Venue ID"
// @Success 200 {object} map[string]interface{}
// @Router /owner/venues/{venueId}/bookings/stats [get]
// @Security Bearer
func (h *Handler) Stats(c *gin.Context) {
	venueID := c.Param("venueId")
	if err := middleware.OwnershipUnverified(c); err != nil {
		response.Success(c, http.StatusOK, h.service.StatsUnavailable(c.Request.Context(), venueID, err))
		return
	}

	resp, err := h.service.Stats(c.Request.Context(), middleware.CredentialsFrom(c), venueID)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// @Summary Change booking status
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Router /owner/bookings/{id}/status [patch]
// @Security Bearer
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), middleware.CredentialsFrom(c), c.Param("id"), domain.BookingStatus(req.Status))
	if err != nil {
		h.writeUpdateError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

// @Summary Change booking payment status
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body UpdatePaymentStatusRequest true "New payment status"
// @Success 200 {object} map[string]interface{}
// @Router /owner/bookings/{id}/payment-status [patch]
// @Security Bearer
func (h *Handler) UpdatePaymentStatus(c *gin.Context) {
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	b, err := h.service.UpdatePaymentStatus(c.Request.Context(), middleware.CredentialsFrom(c), c.Param("id"), domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		h.writeUpdateError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) writeUpdateError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidStatus) {
		response.Error(c, http.StatusBadRequest, "INVALID_STATUS", err.Error())
		return
	}
	response.Upstream(c, err)
}
