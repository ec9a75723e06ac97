package booking

import (
	"sort"
	"strings"
	"time"

	"courtdash/internal/domain"
)

// FilterAll disables a filter dimension.
const FilterAll = "all"

type DateFilter string

const (
	DateAll      DateFilter = "all"
	DateToday    DateFilter = "today"
	DateTomorrow DateFilter = "tomorrow"
	DateThisWeek DateFilter = "thisWeek"
	DateCustom   DateFilter = "custom"
)

type SortBy string

const (
	SortByDate  SortBy = "date"
	SortByTotal SortBy = "total"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DateRange bounds a custom date filter, inclusive. Empty bounds disable it.
type DateRange struct {
	Start string `json:"start_date,omitempty"`
	End   string `json:"end_date,omitempty"`
}

// Query is one evaluation of the booking list. Now is injected so that the
// relative date filters never read the clock.
type Query struct {
	VenueID       string
	Status        string
	PaymentStatus string
	CourtType     string
	Search        string
	DateFilter    DateFilter
	DateRange     DateRange
	SortBy        SortBy
	SortOrder     SortOrder
	Now           time.Time
	WeekStart     time.Weekday
}

// Stats are computed over the venue-scoped, unfiltered collection.
type Stats struct {
	TotalBookings     int     `json:"total_bookings"`
	PendingBookings   int     `json:"pending_bookings"`
	ConfirmedBookings int     `json:"confirmed_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
	PendingPayments   float64 `json:"pending_payments"`
	FailedPayments    float64 `json:"failed_payments"`
	TodayBookings     int     `json:"today_bookings"`
}

func EmptyStats() Stats { return Stats{} }

// ScopeToVenue returns a new slice holding the bookings of one venue.
func ScopeToVenue(bookings []domain.Booking, venueID string) []domain.Booking {
	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.VenueID == venueID {
			out = append(out, b)
		}
	}
	return out
}

// Derive produces the list the dashboard renders. The input is not modified.
func Derive(bookings []domain.Booking, q Query) []domain.Booking {
	match := newMatcher(q)

	out := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.VenueID != q.VenueID {
			continue
		}
		if match(b) {
			out = append(out, b)
		}
	}

	sortBookings(out, q.SortBy, q.SortOrder)
	return out
}

func ComputeStats(bookings []domain.Booking, venueID string, now time.Time) Stats {
	today := now.UTC().Format(domain.DateLayout)

	var s Stats
	for _, b := range bookings {
		if b.VenueID != venueID {
			continue
		}
		s.TotalBookings++

		switch b.Status {
		case domain.BookingPending:
			s.PendingBookings++
		case domain.BookingConfirmed:
			s.ConfirmedBookings++
		}

		switch b.PaymentStatus {
		case domain.PaymentSucceeded:
			s.TotalRevenue += b.EffectiveAmount()
		case domain.PaymentPending, domain.PaymentProcessing:
			s.PendingPayments += b.EffectiveAmount()
		case domain.PaymentFailed:
			s.FailedPayments += b.EffectiveAmount()
		}

		if b.Date == today {
			s.TodayBookings++
		}
	}
	return s
}

func newMatcher(q Query) func(domain.Booking) bool {
	search := strings.ToLower(q.Search)
	inDate := dateMatcher(q)

	return func(b domain.Booking) bool {
		if active(q.Status) && string(b.Status) != q.Status {
			return false
		}
		if active(q.PaymentStatus) && string(b.PaymentStatus) != q.PaymentStatus {
			return false
		}
		if active(q.CourtType) && b.CourtType != q.CourtType {
			return false
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.CustomerName), search) &&
			!strings.Contains(strings.ToLower(b.CourtName), search) &&
			!strings.Contains(strings.ToLower(b.CustomerEmail), search) {
			return false
		}
		return inDate(b)
	}
}

func active(v string) bool {
	return v != "" && v != FilterAll
}

func dateMatcher(q Query) func(domain.Booking) bool {
	pass := func(domain.Booking) bool { return true }

	switch q.DateFilter {
	case DateToday:
		day := q.Now.UTC().Format(domain.DateLayout)
		return func(b domain.Booking) bool { return b.Date == day }

	case DateTomorrow:
		day := q.Now.UTC().AddDate(0, 0, 1).Format(domain.DateLayout)
		return func(b domain.Booking) bool { return b.Date == day }

	case DateThisWeek:
		start, end := WeekBounds(q.Now, q.WeekStart)
		return within(start, end)

	case DateCustom:
		if q.DateRange.Start == "" || q.DateRange.End == "" {
			return pass
		}
		start, err := domain.ParseDate(q.DateRange.Start)
		if err != nil {
			return pass
		}
		end, err := domain.ParseDate(q.DateRange.End)
		if err != nil {
			return pass
		}
		return within(start, end)
	}
	return pass
}

// WeekBounds returns the first and last calendar day of the week holding now,
// read in now's location. Both bounds are fresh values; now is not touched.
func WeekBounds(now time.Time, weekStart time.Weekday) (time.Time, time.Time) {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	offset := (int(now.Weekday()) - int(weekStart) + 7) % 7
	start := day.AddDate(0, 0, -offset)
	end := start.AddDate(0, 0, 6)
	return start, end
}

func within(start, end time.Time) func(domain.Booking) bool {
	return func(b domain.Booking) bool {
		d, err := domain.ParseDate(b.Date)
		if err != nil {
			return false
		}
		return !d.Before(start) && !d.After(end)
	}
}

// sortBookings sorts in place with a strict comparator, so equal keys keep
// their input order.
func sortBookings(list []domain.Booking, by SortBy, order SortOrder) {
	keys := make([]float64, len(list))
	for i, b := range list {
		keys[i] = sortKey(b, by)
	}

	idx := make([]int, len(list))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if order == SortDesc {
			return keys[idx[i]] > keys[idx[j]]
		}
		return keys[idx[i]] < keys[idx[j]]
	})

	sorted := make([]domain.Booking, len(list))
	for i, k := range idx {
		sorted[i] = list[k]
	}
	copy(list, sorted)
}

func sortKey(b domain.Booking, by SortBy) float64 {
	if by == SortByTotal {
		return b.TotalCost
	}
	d, err := domain.ParseDate(b.Date)
	if err != nil {
		return float64(time.Time{}.Unix())
	}
	return float64(d.Unix())
}
