package pricing

import (
	"context"
	"net/http"
	"strconv"

	"courtdash/internal/domain"
	"courtdash/internal/middleware"
	"courtdash/internal/pkg/response"
	"courtdash/internal/pkg/validator"
	"courtdash/internal/upstream"

	"github.com/gin-gonic/gin"
)

// CourtSource is the backend surface the pricing screen needs.
type CourtSource interface {
	GetCourt(ctx context.Context, cred upstream.Credentials, courtID string) (*domain.Court, error)
	ListCourts(ctx context.Context, cred upstream.Credentials, venueID string) ([]domain.Court, error)
	UpdateCourtPricing(ctx context.Context, cred upstream.Credentials, courtID string, update domain.CourtPricingUpdate) (*domain.Court, error)
}

type Handler struct {
	courts CourtSource
}

func NewHandler(courts CourtSource) *Handler {
	return &Handler{courts: courts}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/pricing/preview", h.PreviewInput)
	rg.GET("/courts/:id/pricing-preview", h.PreviewCourt)
	rg.GET("/courts/:id/quote", h.QuoteSlot)
	rg.PUT("/courts/:id/pricing", h.UpdatePricing)
}

// RegisterVenueRoutes expects a group with the venue ownership check.
func (h *Handler) RegisterVenueRoutes(venues *gin.RouterGroup) {
	venues.GET("/courts/pricing-preview", h.PreviewVenue)
}

type PreviewResponse struct {
	CourtID string         `json:"court_id,omitempty"`
	Input   Input          `json:"input"`
	Prices  []LabeledPrice `json:"prices"`
	Rounded Result         `json:"rounded"`
}

func newPreviewResponse(courtID string, in Input) PreviewResponse {
	res := Preview(in)
	return PreviewResponse{
		CourtID: courtID,
		Input:   in,
		Prices:  res.Labeled(),
		Rounded: res.Rounded(),
	}
}

// @Summary Pricing preview for unsaved values
// @Tags Pricing
// @Accept json
// @Produce json
// @Param request body Input true "Pricing configuration"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /owner/pricing/preview [post]
// @Security Bearer
func (h *Handler) PreviewInput(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if errs := validateInput(in); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid pricing values", errs)
		return
	}

	response.Success(c, http.StatusOK, newPreviewResponse("", in))
}

// validateInput drops multiplier errors when dynamic pricing is off, since
// the multipliers do not take part in the prices then.
func validateInput(in Input) map[string]string {
	errs := validator.Validate(&in)
	if errs == nil || in.DynamicPricingEnabled {
		return errs
	}
	delete(errs, "peak_multiplier")
	delete(errs, "off_peak_multiplier")
	delete(errs, "weekend_multiplier")
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// PreviewCourt previews a saved court. Query params base, peak, off_peak,
// weekend and enabled override the saved values.
//
// @Summary Pricing preview for a saved court
// @Tags Pricing
// @Produce json
// @Param id path string true "Court ID"
// @Param base query number false "Base price override"
// @Param peak query number false "Peak multiplier override"
// @Param off_peak query number false "Off-peak multiplier override"
// @Param weekend query number false "Weekend multiplier override"
// @Param enabled query bool false "Dynamic pricing override"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /owner/courts/{id}/pricing-preview [get]
// @Security Bearer
func (h *Handler) PreviewCourt(c *gin.Context) {
	court, err := h.courts.GetCourt(c.Request.Context(), middleware.CredentialsFrom(c), c.Param("id"))
	if err != nil {
		response.Upstream(c, err)
		return
	}

	in, err := applyOverrides(InputFromCourt(*court), c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	response.Success(c, http.StatusOK, newPreviewResponse(court.CourtID, in))
}

// @Summary Pricing preview for every court of a venue
// @Tags Pricing
// @Produce json
// @Param venueId path string true "Venue ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /owner/venues/{venueId}/courts/pricing-preview [get]
// @Security Bearer
func (h *Handler) PreviewVenue(c *gin.Context) {
	courts, err := h.courts.ListCourts(c.Request.Context(), middleware.CredentialsFrom(c), c.Param("venueId"))
	if err != nil {
		response.Upstream(c, err)
		return
	}

	out := make([]PreviewResponse, 0, len(courts))
	for _, court := range courts {
		out = append(out, newPreviewResponse(court.CourtID, InputFromCourt(court)))
	}
	response.Success(c, http.StatusOK, gin.H{"courts": out, "count": len(out)})
}

// QuoteSlot prices one slot: ?date=YYYY-MM-DD&start=HH:MM.
//
// @Summary Price of one court slot
// @Tags Pricing
// @Produce json
// @Param id path string true "Court ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Start time (HH:MM)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /owner/courts/{id}/quote [get]
// @Security Bearer
func (h *Handler) QuoteSlot(c *gin.Context) {
	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return
	}
	start, err := domain.ParseTimeOfDay(c.Query("start"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_TIME", "start must be HH:MM or HH:MM:SS")
		return
	}

	court, err := h.courts.GetCourt(c.Request.Context(), middleware.CredentialsFrom(c), c.Param("id"))
	if err != nil {
		response.Upstream(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"court_id":       court.CourtID,
		"date":           date.Format(domain.DateLayout),
		"start":          start,
		"peak":           court.IsPeak(start),
		"price_per_hour": Round2(Quote(*court, date, start)),
	})
}

// @Summary Save court pricing
// @Tags Pricing
// @Accept json
// @Produce json
// @Param id path string true "Court ID"
// @Param request body domain.CourtPricingUpdate true "Pricing rules"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /owner/courts/{id}/pricing [put]
// @Security Bearer
func (h *Handler) UpdatePricing(c *gin.Context) {
	var req domain.CourtPricingUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	court, err := h.courts.UpdateCourtPricing(c.Request.Context(), middleware.CredentialsFrom(c), c.Param("id"), req)
	if err != nil {
		response.Upstream(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"court":   court,
		"preview": newPreviewResponse(court.CourtID, InputFromCourt(*court)),
	})
}

func applyOverrides(in Input, c *gin.Context) (Input, error) {
	floats := []struct {
		key string
		dst *float64
	}{
		{"base", &in.BasePrice},
		{"peak", &in.PeakMultiplier},
		{"off_peak", &in.OffPeakMultiplier},
		{"weekend", &in.WeekendMultiplier},
	}
	for _, f := range floats {
		raw, ok := c.GetQuery(f.key)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, &paramError{name: f.key}
		}
		*f.dst = v
	}

	if raw, ok := c.GetQuery("enabled"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return in, &paramError{name: "enabled"}
		}
		in.DynamicPricingEnabled = v
	}
	return in, nil
}

type paramError struct {
	name string
}

func (e *paramError) Error() string {
	return "invalid value for " + e.name
}
