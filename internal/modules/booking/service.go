package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtdash/internal/domain"
	"courtdash/internal/observability/metrics"
	"courtdash/internal/pkg/logging"
	"courtdash/internal/realtime"
	"courtdash/internal/upstream"

	"github.com/sirupsen/logrus"
)

type Service struct {
	bookings  BookingSource
	events    EventPublisher
	metrics   *metrics.Metrics
	weekStart time.Weekday
	now       func() time.Time
}

func NewService(bookings BookingSource, events EventPublisher, m *metrics.Metrics, weekStart time.Weekday) *Service {
	return &Service{
		bookings:  bookings,
		events:    events,
		metrics:   m,
		weekStart: weekStart,
		now:       time.Now,
	}
}

// WithClock replaces the clock the relative date filters are evaluated at.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Query turns request parameters into a pipeline query evaluated now.
func (s *Service) Query(venueID string, p ListParams) (Query, error) {
	return p.Query(venueID, s.now(), s.weekStart)
}

// Dashboard fetches the owner's bookings and derives the venue's list and
// stats. Failures other than an expired session degrade to an empty view.
func (s *Service) Dashboard(ctx context.Context, cred upstream.Credentials, q Query) (*DashboardResponse, error) {
	resp := &DashboardResponse{
		VenueID:     q.VenueID,
		Bookings:    []BookingView{},
		Stats:       EmptyStats(),
		GeneratedAt: q.Now,
	}

	all, err := s.bookings.ListBookings(ctx, cred)
	if err != nil {
		if !degradable(err) {
			return nil, err
		}
		return s.DashboardUnavailable(ctx, q, err), nil
	}

	list := Derive(all, q)
	resp.Bookings = newBookingViews(list)
	resp.Count = len(list)
	resp.Stats = ComputeStats(all, q.VenueID, q.Now)
	return resp, nil
}

func (s *Service) Stats(ctx context.Context, cred upstream.Credentials, venueID string) (*StatsResponse, error) {
	resp := &StatsResponse{VenueID: venueID, Stats: EmptyStats()}

	all, err := s.bookings.ListBookings(ctx, cred)
	if err != nil {
		if !degradable(err) {
			return nil, err
		}
		return s.StatsUnavailable(ctx, venueID, err), nil
	}

	resp.Stats = ComputeStats(all, venueID, s.now())
	return resp, nil
}

// DashboardUnavailable is the empty dashboard served when bookings, or the
// venue they belong to, could not be loaded.
func (s *Service) DashboardUnavailable(ctx context.Context, q Query, err error) *DashboardResponse {
	s.degrade(ctx, "bookings", q.VenueID, err)
	return &DashboardResponse{
		VenueID:     q.VenueID,
		Bookings:    []BookingView{},
		Stats:       EmptyStats(),
		Degraded:    true,
		Error:       upstreamMessage(err),
		GeneratedAt: q.Now,
	}
}

func (s *Service) StatsUnavailable(ctx context.Context, venueID string, err error) *StatsResponse {
	s.degrade(ctx, "stats", venueID, err)
	return &StatsResponse{
		VenueID:  venueID,
		Stats:    EmptyStats(),
		Degraded: true,
		Error:    upstreamMessage(err),
	}
}

func (s *Service) UpdateStatus(ctx context.Context, cred upstream.Credentials, bookingID string, status domain.BookingStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	b, err := s.bookings.UpdateBookingStatus(ctx, cred, bookingID, status)
	if err != nil {
		return nil, err
	}

	eventType := realtime.EventBookingStatusChanged
	if status == domain.BookingCancelled {
		eventType = realtime.EventBookingCancelled
	}
	s.publish(ctx, b, realtime.Event{
		Type:      eventType,
		BookingID: b.BookingID,
		Status:    string(b.Status),
	})
	return b, nil
}

func (s *Service) UpdatePaymentStatus(ctx context.Context, cred upstream.Credentials, bookingID string, status domain.PaymentStatus) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	b, err := s.bookings.UpdatePaymentStatus(ctx, cred, bookingID, status)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, b, realtime.Event{
		Type:          realtime.EventBookingStatusChanged,
		BookingID:     b.BookingID,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
	})
	return b, nil
}

func (s *Service) publish(ctx context.Context, b *domain.Booking, ev realtime.Event) {
	if s.events == nil || b.VenueID == "" {
		return
	}
	ev.VenueID = b.VenueID
	n := s.events.BroadcastToVenue(b.VenueID, ev)
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"venue_id":   b.VenueID,
		"booking_id": b.BookingID,
		"event":      ev.Type,
		"recipients": n,
	}).Debug("booking change broadcast")
}

func (s *Service) degrade(ctx context.Context, view, venueID string, err error) {
	s.metrics.ObserveDegraded(view)
	logging.FromContext(ctx).WithError(err).WithFields(logrus.Fields{
		"view":     view,
		"venue_id": venueID,
	}).Warn("booking fetch failed, serving empty dashboard")
}

// degradable reports whether a fetch failure should fall back to an empty
// view. An expired session and a cancelled request never do.
func degradable(err error) bool {
	return !errors.Is(err, upstream.ErrUnauthorized) && !errors.Is(err, context.Canceled)
}

func upstreamMessage(err error) string {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
