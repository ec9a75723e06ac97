package booking

import (
	"fmt"
	"time"

	"courtdash/internal/domain"
)

// ListParams are the booking-list query parameters as the dashboard sends
// them. The same struct is what a saved view stores.
type ListParams struct {
	Status        string `form:"status" json:"status,omitempty"`
	PaymentStatus string `form:"payment_status" json:"payment_status,omitempty"`
	CourtType     string `form:"court_type" json:"court_type,omitempty"`
	Search        string `form:"search" json:"search,omitempty"`
	DateFilter    string `form:"date_filter" json:"date_filter,omitempty"`
	StartDate     string `form:"start_date" json:"start_date,omitempty"`
	EndDate       string `form:"end_date" json:"end_date,omitempty"`
	SortBy        string `form:"sort_by" json:"sort_by,omitempty"`
	SortOrder     string `form:"sort_order" json:"sort_order,omitempty"`
}

// Merge fills every field p leaves empty from base.
func (p ListParams) Merge(base ListParams) ListParams {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	return ListParams{
		Status:        pick(p.Status, base.Status),
		PaymentStatus: pick(p.PaymentStatus, base.PaymentStatus),
		CourtType:     pick(p.CourtType, base.CourtType),
		Search:        pick(p.Search, base.Search),
		DateFilter:    pick(p.DateFilter, base.DateFilter),
		StartDate:     pick(p.StartDate, base.StartDate),
		EndDate:       pick(p.EndDate, base.EndDate),
		SortBy:        pick(p.SortBy, base.SortBy),
		SortOrder:     pick(p.SortOrder, base.SortOrder),
	}
}

// Validate rejects filter values outside the known enums. Empty means all.
// Sort fields are not checked; Query falls back to date ascending.
func (p ListParams) Validate() error {
	if p.Status != "" && p.Status != FilterAll && !domain.BookingStatus(p.Status).Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, p.Status)
	}
	if p.PaymentStatus != "" && p.PaymentStatus != FilterAll && !domain.PaymentStatus(p.PaymentStatus).Valid() {
		return fmt.Errorf("%w: unknown payment status %q", ErrValidation, p.PaymentStatus)
	}
	switch DateFilter(p.DateFilter) {
	case "", DateAll, DateToday, DateTomorrow, DateThisWeek, DateCustom:
	default:
		return fmt.Errorf("%w: unknown date filter %q", ErrValidation, p.DateFilter)
	}
	for _, d := range []string{p.StartDate, p.EndDate} {
		if d == "" {
			continue
		}
		if _, err := domain.ParseDate(d); err != nil {
			return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrValidation, d)
		}
	}
	return nil
}

// Query validates p and builds the pipeline query for a venue at now.
func (p ListParams) Query(venueID string, now time.Time, weekStart time.Weekday) (Query, error) {
	if err := p.Validate(); err != nil {
		return Query{}, err
	}

	q := Query{
		VenueID:       venueID,
		Status:        orAll(p.Status),
		PaymentStatus: orAll(p.PaymentStatus),
		CourtType:     orAll(p.CourtType),
		Search:        p.Search,
		DateFilter:    DateFilter(p.DateFilter),
		DateRange:     DateRange{Start: p.StartDate, End: p.EndDate},
		SortBy:        SortBy(p.SortBy),
		SortOrder:     SortOrder(p.SortOrder),
		Now:           now,
		WeekStart:     weekStart,
	}
	if q.DateFilter == "" {
		q.DateFilter = DateAll
	}
	if q.SortBy != SortByTotal {
		q.SortBy = SortByDate
	}
	if q.SortOrder != SortDesc {
		q.SortOrder = SortAsc
	}
	return q, nil
}

func orAll(v string) string {
	if v == "" {
		return FilterAll
	}
	return v
}

// BookingView is a booking with its display slots resolved.
type BookingView struct {
	domain.Booking
	SlotRanges []domain.TimeSlotRange `json:"slots"`
	Amount     float64                `json:"amount"`
}

func newBookingViews(list []domain.Booking) []BookingView {
	out := make([]BookingView, 0, len(list))
	for _, b := range list {
		out = append(out, BookingView{Booking: b, SlotRanges: b.Slots(), Amount: b.EffectiveAmount()})
	}
	return out
}

type DashboardResponse struct {
	VenueID     string        `json:"venue_id"`
	Bookings    []BookingView `json:"bookings"`
	Count       int           `json:"count"`
	Stats       Stats         `json:"stats"`
	Degraded    bool          `json:"degraded"`
	Error       string        `json:"error,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
}

type StatsResponse struct {
	VenueID  string `json:"venue_id"`
	Stats    Stats  `json:"stats"`
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}
