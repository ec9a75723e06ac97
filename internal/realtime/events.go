package realtime

import "encoding/json"

const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingCancelled     = "booking.cancelled"
)

// Event is a venue-scoped booking change. Dashboards re-request the derived
// booking list when they receive one.
type Event struct {
	Type          string          `json:"type"`
	VenueID       string          `json:"venue_id"`
	BookingID     string          `json:"booking_id,omitempty"`
	Status        string          `json:"status,omitempty"`
	PaymentStatus string          `json:"payment_status,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

func KnownEventType(t string) bool {
	switch t {
	case EventBookingCreated, EventBookingStatusChanged, EventBookingCancelled:
		return true
	}
	return false
}
