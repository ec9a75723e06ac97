package pricing

import (
	"math"
	"time"

	"courtdash/internal/domain"
)

// Input is the pricing configuration being edited. Multiplier bounds shown in
// the form are hints only and are not enforced here. Multipliers are only
// checked while dynamic pricing is enabled.
type Input struct {
	BasePrice             float64 `json:"base_price" validate:"gte=0"`
	DynamicPricingEnabled bool    `json:"dynamic_pricing_enabled"`
	PeakMultiplier        float64 `json:"peak_multiplier" validate:"gt=0"`
	OffPeakMultiplier     float64 `json:"off_peak_multiplier" validate:"gt=0"`
	WeekendMultiplier     float64 `json:"weekend_multiplier" validate:"gt=0"`
}

// Result holds the example prices in full precision.
type Result struct {
	WeekdayBase    float64 `json:"weekday_base"`
	WeekdayOffPeak float64 `json:"weekday_off_peak"`
	WeekdayPeak    float64 `json:"weekday_peak"`
	WeekendBase    float64 `json:"weekend_base"`
	WeekendOffPeak float64 `json:"weekend_off_peak"`
	WeekendPeak    float64 `json:"weekend_peak"`
}

type LabeledPrice struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

func InputFromCourt(c domain.Court) Input {
	return Input{
		BasePrice:             c.PricePerHour,
		DynamicPricingEnabled: c.DynamicPricingEnabled,
		PeakMultiplier:        c.PeakHourMultiplier,
		OffPeakMultiplier:     c.OffPeakMultiplier,
		WeekendMultiplier:     c.WeekendMultiplier,
	}
}

// Preview computes the example prices. It is total: NaN inputs yield NaN
// outputs and nothing panics.
func Preview(in Input) Result {
	base := in.BasePrice
	if !in.DynamicPricingEnabled {
		return Result{
			WeekdayBase:    base,
			WeekdayOffPeak: base,
			WeekdayPeak:    base,
			WeekendBase:    base,
			WeekendOffPeak: base,
			WeekendPeak:    base,
		}
	}

	return Result{
		WeekdayBase:    base,
		WeekdayOffPeak: base * in.OffPeakMultiplier,
		WeekdayPeak:    base * in.PeakMultiplier,
		WeekendBase:    base * in.WeekendMultiplier,
		WeekendOffPeak: base * in.OffPeakMultiplier * in.WeekendMultiplier,
		WeekendPeak:    base * in.PeakMultiplier * in.WeekendMultiplier,
	}
}

// Rounded returns a copy rounded to cents for display.
func (r Result) Rounded() Result {
	return Result{
		WeekdayBase:    Round2(r.WeekdayBase),
		WeekdayOffPeak: Round2(r.WeekdayOffPeak),
		WeekdayPeak:    Round2(r.WeekdayPeak),
		WeekendBase:    Round2(r.WeekendBase),
		WeekendOffPeak: Round2(r.WeekendOffPeak),
		WeekendPeak:    Round2(r.WeekendPeak),
	}
}

// Labeled returns the rounded prices in display order.
func (r Result) Labeled() []LabeledPrice {
	d := r.Rounded()
	return []LabeledPrice{
		{Label: "Weekday base", Price: d.WeekdayBase},
		{Label: "Weekday off-peak", Price: d.WeekdayOffPeak},
		{Label: "Weekday peak", Price: d.WeekdayPeak},
		{Label: "Weekend base", Price: d.WeekendBase},
		{Label: "Weekend off-peak", Price: d.WeekendOffPeak},
		{Label: "Weekend peak", Price: d.WeekendPeak},
	}
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Quote is the hourly price of a slot starting at start on date, in full
// precision. Slots outside the peak window are off-peak.
func Quote(c domain.Court, date time.Time, start domain.TimeOfDay) float64 {
	p := Preview(InputFromCourt(c))

	weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday
	peak := c.IsPeak(start)

	switch {
	case weekend && peak:
		return p.WeekendPeak
	case weekend:
		return p.WeekendOffPeak
	case peak:
		return p.WeekdayPeak
	default:
		return p.WeekdayOffPeak
	}
}
