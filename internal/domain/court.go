package domain

type Court struct {
	CourtID               string    `json:"courtId"`
	VenueID               string    `json:"venueId"`
	Name                  string    `json:"name"`
	CourtType             string    `json:"courtType"`
	PricePerHour          float64   `json:"pricePerHour"`
	PeakHourMultiplier    float64   `json:"peakHourMultiplier"`
	OffPeakMultiplier     float64   `json:"offPeakMultiplier"`
	WeekendMultiplier     float64   `json:"weekendMultiplier"`
	PeakHourStart         TimeOfDay `json:"peakHourStart"`
	PeakHourEnd           TimeOfDay `json:"peakHourEnd"`
	DynamicPricingEnabled bool      `json:"dynamicPricingEnabled"`
}

// IsPeak reports whether t falls in [PeakHourStart, PeakHourEnd).
// A window whose end precedes its start wraps past midnight.
func (c Court) IsPeak(t TimeOfDay) bool {
	if c.PeakHourStart == c.PeakHourEnd {
		return false
	}
	if c.PeakHourStart < c.PeakHourEnd {
		return t >= c.PeakHourStart && t < c.PeakHourEnd
	}
	return t >= c.PeakHourStart || t < c.PeakHourEnd
}

// CourtPricingUpdate is the payload accepted by the backend's pricing endpoint.
type CourtPricingUpdate struct {
	PricePerHour          float64   `json:"pricePerHour" binding:"gte=0"`
	PeakHourMultiplier    float64   `json:"peakHourMultiplier" binding:"gt=0"`
	OffPeakMultiplier     float64   `json:"offPeakMultiplier" binding:"gt=0"`
	WeekendMultiplier     float64   `json:"weekendMultiplier" binding:"gt=0"`
	PeakHourStart         TimeOfDay `json:"peakHourStart"`
	PeakHourEnd           TimeOfDay `json:"peakHourEnd"`
	DynamicPricingEnabled bool      `json:"dynamicPricingEnabled"`
}
