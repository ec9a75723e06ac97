package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingNoShow    BookingStatus = "NO_SHOW"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted, BookingNoShow:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentSucceeded         PaymentStatus = "SUCCEEDED"
	PaymentPending           PaymentStatus = "PENDING"
	PaymentProcessing        PaymentStatus = "PROCESSING"
	PaymentFailed            PaymentStatus = "FAILED"
	PaymentCancelled         PaymentStatus = "CANCELLED"
	PaymentRefunded          PaymentStatus = "REFUNDED"
	PaymentPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentSucceeded, PaymentPending, PaymentProcessing, PaymentFailed,
		PaymentCancelled, PaymentRefunded, PaymentPartiallyRefunded:
		return true
	}
	return false
}

type TimeSlotRange struct {
	StartTime TimeOfDay `json:"startTime"`
	EndTime   TimeOfDay `json:"endTime"`
}

// Booking is the backend's booking record. Status and PaymentStatus are
// independent axes.
type Booking struct {
	BookingID     string        `json:"bookingId"`
	VenueID       string        `json:"venueId"`
	CourtID       string        `json:"courtId,omitempty"`
	CourtName     string        `json:"courtName,omitempty"`
	CourtType     string        `json:"courtType"`
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	CustomerPhone string        `json:"customerPhone,omitempty"`
	Date          string        `json:"date"`
	StartTime     TimeOfDay     `json:"startTime"`
	EndTime       TimeOfDay     `json:"endTime"`
	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	TotalCost     float64       `json:"totalCost"`
	// PaymentAmount is nil when the backend omits it.
	PaymentAmount  *float64        `json:"paymentAmount,omitempty"`
	TimeSlotRanges []TimeSlotRange `json:"timeSlotRanges,omitempty"`
}

// EffectiveAmount is the amount counted towards revenue.
func (b Booking) EffectiveAmount() float64 {
	if b.PaymentAmount != nil {
		return *b.PaymentAmount
	}
	return b.TotalCost
}

// Slots returns the booked ranges, falling back to StartTime/EndTime.
func (b Booking) Slots() []TimeSlotRange {
	if len(b.TimeSlotRanges) > 0 {
		out := make([]TimeSlotRange, len(b.TimeSlotRanges))
		copy(out, b.TimeSlotRanges)
		return out
	}
	return []TimeSlotRange{{StartTime: b.StartTime, EndTime: b.EndTime}}
}

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD booking date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
