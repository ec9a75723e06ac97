package booking

import (
	"context"
	"encoding/json"

	"courtdash/internal/domain"
	"courtdash/internal/realtime"
	"courtdash/internal/upstream"
)

// BookingSource is the backend's booking API.
type BookingSource interface {
	ListBookings(ctx context.Context, cred upstream.Credentials) ([]domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, cred upstream.Credentials, bookingID string, status domain.BookingStatus) (*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, cred upstream.Credentials, bookingID string, status domain.PaymentStatus) (*domain.Booking, error)
}

// EventPublisher pushes changes to the venue's open dashboards.
type EventPublisher interface {
	BroadcastToVenue(venueID string, event realtime.Event) int
}

// SavedQueries resolves a saved view to its stored list parameters.
type SavedQueries interface {
	GetViewQuery(ctx context.Context, ownerID, venueID string, viewID int64) (json.RawMessage, error)
}
