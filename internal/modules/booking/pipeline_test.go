package booking

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"courtdash/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wednesday = time.Date(2024, 1, 17, 10, 30, 0, 0, time.UTC)

func fixture() []domain.Booking {
	return []domain.Booking{
		{BookingID: "b1", VenueID: "V1", CourtName: "Court A", CourtType: "tennis", CustomerName: "John Doe",
			CustomerEmail: "john@example.com", Date: "2024-01-15", Status: domain.BookingPending,
			PaymentStatus: domain.PaymentPending, TotalCost: 100},
		{BookingID: "b2", VenueID: "V1", CourtName: "Court B", CourtType: "padel", CustomerName: "Jane Smith",
			CustomerEmail: "jane@example.com", Date: "2024-01-16", Status: domain.BookingConfirmed,
			PaymentStatus: domain.PaymentSucceeded, TotalCost: 200},
		{BookingID: "b3", VenueID: "V1", CourtName: "Court A", CourtType: "tennis", CustomerName: "Ann Lee",
			CustomerEmail: "ann@example.com", Date: "2024-01-14", Status: domain.BookingCancelled,
			PaymentStatus: domain.PaymentCancelled, TotalCost: 50},
		{BookingID: "b4", VenueID: "V2", CourtName: "Court Z", CourtType: "tennis", CustomerName: "Other Venue",
			CustomerEmail: "x@example.com", Date: "2024-01-13", Status: domain.BookingConfirmed,
			PaymentStatus: domain.PaymentSucceeded, TotalCost: 999},
	}
}

func baseQuery() Query {
	return Query{
		VenueID:       "V1",
		Status:        FilterAll,
		PaymentStatus: FilterAll,
		CourtType:     FilterAll,
		DateFilter:    DateAll,
		SortBy:        SortByDate,
		SortOrder:     SortAsc,
		Now:           wednesday,
		WeekStart:     time.Sunday,
	}
}

func ids(list []domain.Booking) []string {
	out := make([]string, 0, len(list))
	for _, b := range list {
		out = append(out, b.BookingID)
	}
	return out
}

func TestDerive_VenueScopedDateAscending(t *testing.T) {
	bookings := fixture()

	got := Derive(bookings, baseQuery())

	assert.Equal(t, []string{"b3", "b1", "b2"}, ids(got))
	assert.Equal(t, 200.0, ComputeStats(bookings, "V1", wednesday).TotalRevenue)
}

func TestDerive_SearchIsCaseInsensitive(t *testing.T) {
	q := baseQuery()
	q.Search = "jane"

	got := Derive(fixture()[:2], q)

	require.Len(t, got, 1)
	assert.Equal(t, "Jane Smith", got[0].CustomerName)
}

func TestDerive_SearchMatchesCourtAndEmail(t *testing.T) {
	q := baseQuery()
	q.Search = "COURT B"
	assert.Equal(t, []string{"b2"}, ids(Derive(fixture(), q)))

	q.Search = "ann@"
	assert.Equal(t, []string{"b3"}, ids(Derive(fixture(), q)))
}

func TestDerive_SearchTermIsUsedAsTyped(t *testing.T) {
	bookings := append(fixture()[:2], domain.Booking{BookingID: "b9", VenueID: "V1", CustomerName: "Doeman",
		CourtName: "CourtC", CustomerEmail: "doeman@example.com", Date: "2024-01-17"})

	q := baseQuery()
	q.Search = " doe"
	assert.Equal(t, []string{"b1"}, ids(Derive(bookings, q)))

	// A lone space is a real term, not an empty search.
	q.Search = " "
	assert.Equal(t, []string{"b1", "b2"}, ids(Derive(bookings, q)))
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	bookings := fixture()
	before := ids(bookings)

	q := baseQuery()
	q.SortBy = SortByTotal
	q.SortOrder = SortDesc
	_ = Derive(bookings, q)

	assert.Equal(t, before, ids(bookings))
}

func TestDerive_Idempotent(t *testing.T) {
	bookings := fixture()
	q := baseQuery()
	q.SortBy = SortByTotal

	assert.Equal(t, Derive(bookings, q), Derive(bookings, q))
}

func TestDerive_SortByTotalDescending(t *testing.T) {
	q := baseQuery()
	q.SortBy = SortByTotal
	q.SortOrder = SortDesc

	assert.Equal(t, []string{"b2", "b1", "b3"}, ids(Derive(fixture(), q)))
}

func TestDerive_SortIsStable(t *testing.T) {
	bookings := []domain.Booking{
		{BookingID: "a", VenueID: "V1", Date: "2024-01-15", TotalCost: 10},
		{BookingID: "b", VenueID: "V1", Date: "2024-01-14", TotalCost: 10},
		{BookingID: "c", VenueID: "V1", Date: "2024-01-15", TotalCost: 10},
		{BookingID: "d", VenueID: "V1", Date: "2024-01-14", TotalCost: 10},
	}

	q := baseQuery()
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(Derive(bookings, q)))

	q.SortOrder = SortDesc
	assert.Equal(t, []string{"a", "c", "b", "d"}, ids(Derive(bookings, q)))

	q.SortBy = SortByTotal
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(Derive(bookings, q)))
}

func TestDerive_UnparseableDateSortsFirst(t *testing.T) {
	bookings := []domain.Booking{
		{BookingID: "ok", VenueID: "V1", Date: "2024-01-15"},
		{BookingID: "bad", VenueID: "V1", Date: "soon"},
	}

	assert.Equal(t, []string{"bad", "ok"}, ids(Derive(bookings, baseQuery())))
}

func TestDerive_RelativeDateFilters(t *testing.T) {
	bookings := []domain.Booking{
		{BookingID: "today", VenueID: "V1", Date: "2024-01-17"},
		{BookingID: "tomorrow", VenueID: "V1", Date: "2024-01-18"},
		{BookingID: "sunday", VenueID: "V1", Date: "2024-01-14"},
		{BookingID: "saturday", VenueID: "V1", Date: "2024-01-20"},
		{BookingID: "next-sunday", VenueID: "V1", Date: "2024-01-21"},
		{BookingID: "broken", VenueID: "V1", Date: "n/a"},
	}

	tests := []struct {
		name      string
		filter    DateFilter
		weekStart time.Weekday
		want      []string
	}{
		{"today", DateToday, time.Sunday, []string{"today"}},
		{"tomorrow", DateTomorrow, time.Sunday, []string{"tomorrow"}},
		{"sunday week", DateThisWeek, time.Sunday, []string{"sunday", "today", "tomorrow", "saturday"}},
		{"monday week", DateThisWeek, time.Monday, []string{"today", "tomorrow", "saturday", "next-sunday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := baseQuery()
			q.DateFilter = tt.filter
			q.WeekStart = tt.weekStart

			assert.Equal(t, tt.want, ids(Derive(bookings, q)))
		})
	}
}

func TestDerive_CustomRange(t *testing.T) {
	q := baseQuery()
	q.DateFilter = DateCustom
	q.DateRange = DateRange{Start: "2024-01-15", End: "2024-01-16"}
	assert.Equal(t, []string{"b1", "b2"}, ids(Derive(fixture(), q)))

	q.DateRange = DateRange{Start: "2024-01-15"}
	assert.Len(t, Derive(fixture(), q), 3)

	q.DateRange = DateRange{Start: "yesterday", End: "2024-01-16"}
	assert.Len(t, Derive(fixture(), q), 3)
}

func TestWeekBounds(t *testing.T) {
	start, end := WeekBounds(wednesday, time.Sunday)
	assert.Equal(t, "2024-01-14", start.Format(domain.DateLayout))
	assert.Equal(t, "2024-01-20", end.Format(domain.DateLayout))

	start, end = WeekBounds(wednesday, time.Monday)
	assert.Equal(t, "2024-01-15", start.Format(domain.DateLayout))
	assert.Equal(t, "2024-01-21", end.Format(domain.DateLayout))

	// A Sunday with a Monday week start belongs to the week that began six days earlier.
	sunday := time.Date(2024, 1, 21, 23, 0, 0, 0, time.UTC)
	start, end = WeekBounds(sunday, time.Monday)
	assert.Equal(t, "2024-01-15", start.Format(domain.DateLayout))
	assert.Equal(t, "2024-01-21", end.Format(domain.DateLayout))
}

func TestWeekBounds_UsesNowLocation(t *testing.T) {
	tz := time.FixedZone("UTC+5", 5*3600)
	// Saturday 22:00 UTC is already Sunday in UTC+5.
	now := time.Date(2024, 1, 20, 22, 0, 0, 0, time.UTC).In(tz)

	start, end := WeekBounds(now, time.Sunday)
	assert.Equal(t, "2024-01-21", start.Format(domain.DateLayout))
	assert.Equal(t, "2024-01-27", end.Format(domain.DateLayout))
	assert.Equal(t, 21, now.Day())
}

func TestDerive_RandomFiltersAreConjunctive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	statuses := []string{FilterAll, "PENDING", "CONFIRMED", "CANCELLED", "COMPLETED"}
	payments := []string{FilterAll, "PENDING", "SUCCEEDED", "FAILED", "CANCELLED"}
	courtTypes := []string{FilterAll, "tennis", "padel", "squash"}
	searches := []string{"", "a", "jo", "court", "@example"}
	dates := []string{"2024-01-13", "2024-01-14", "2024-01-15", "2024-01-16", "2024-01-17", "2024-01-20"}
	names := []string{"John Doe", "Jane Smith", "Ann Lee", "Bob Stone"}

	var bookings []domain.Booking
	for i := 0; i < 200; i++ {
		bookings = append(bookings, domain.Booking{
			BookingID:     string(rune('a'+i%26)) + dates[i%len(dates)],
			VenueID:       []string{"V1", "V2"}[rng.Intn(2)],
			CourtName:     "Court " + string(rune('A'+rng.Intn(4))),
			CourtType:     courtTypes[1+rng.Intn(len(courtTypes)-1)],
			CustomerName:  names[rng.Intn(len(names))],
			CustomerEmail: strings.ToLower(names[rng.Intn(len(names))][:3]) + "@example.com",
			Date:          dates[rng.Intn(len(dates))],
			Status:        domain.BookingStatus(statuses[1+rng.Intn(len(statuses)-1)]),
			PaymentStatus: domain.PaymentStatus(payments[1+rng.Intn(len(payments)-1)]),
			TotalCost:     float64(rng.Intn(20) * 10),
		})
	}

	for i := 0; i < 300; i++ {
		q := baseQuery()
		q.Status = statuses[rng.Intn(len(statuses))]
		q.PaymentStatus = payments[rng.Intn(len(payments))]
		q.CourtType = courtTypes[rng.Intn(len(courtTypes))]
		q.Search = searches[rng.Intn(len(searches))]
		q.DateFilter = []DateFilter{DateAll, DateToday, DateTomorrow, DateThisWeek, DateCustom}[rng.Intn(5)]
		q.DateRange = DateRange{Start: "2024-01-14", End: "2024-01-16"}
		q.SortBy = []SortBy{SortByDate, SortByTotal}[rng.Intn(2)]
		q.SortOrder = []SortOrder{SortAsc, SortDesc}[rng.Intn(2)]

		weekStart, weekEnd := WeekBounds(q.Now, q.WeekStart)
		out := Derive(bookings, q)

		for _, b := range out {
			require.Equal(t, "V1", b.VenueID)
			if q.Status != FilterAll {
				require.Equal(t, q.Status, string(b.Status))
			}
			if q.PaymentStatus != FilterAll {
				require.Equal(t, q.PaymentStatus, string(b.PaymentStatus))
			}
			if q.CourtType != FilterAll {
				require.Equal(t, q.CourtType, b.CourtType)
			}
			if q.Search != "" {
				hay := strings.ToLower(b.CustomerName + "\x00" + b.CourtName + "\x00" + b.CustomerEmail)
				require.Contains(t, hay, strings.ToLower(q.Search))
			}

			d, err := domain.ParseDate(b.Date)
			require.NoError(t, err)
			switch q.DateFilter {
			case DateToday:
				require.Equal(t, "2024-01-17", b.Date)
			case DateTomorrow:
				require.Equal(t, "2024-01-18", b.Date)
			case DateThisWeek:
				require.False(t, d.Before(weekStart) || d.After(weekEnd))
			case DateCustom:
				require.True(t, b.Date >= "2024-01-14" && b.Date <= "2024-01-16")
			}
		}

		for j := 1; j < len(out); j++ {
			prev, cur := sortKey(out[j-1], q.SortBy), sortKey(out[j], q.SortBy)
			if q.SortOrder == SortDesc {
				require.GreaterOrEqual(t, prev, cur)
			} else {
				require.LessOrEqual(t, prev, cur)
			}
		}
	}
}

func TestComputeStats(t *testing.T) {
	amount := 40.0
	bookings := append(fixture(),
		domain.Booking{BookingID: "b5", VenueID: "V1", Date: "2024-01-17", Status: domain.BookingPending,
			PaymentStatus: domain.PaymentProcessing, TotalCost: 80, PaymentAmount: &amount},
		domain.Booking{BookingID: "b6", VenueID: "V1", Date: "2024-01-17", Status: domain.BookingConfirmed,
			PaymentStatus: domain.PaymentFailed, TotalCost: 30},
	)

	s := ComputeStats(bookings, "V1", wednesday)

	assert.Equal(t, 5, s.TotalBookings)
	assert.Equal(t, 2, s.PendingBookings)
	assert.Equal(t, 2, s.ConfirmedBookings)
	assert.Equal(t, 200.0, s.TotalRevenue)
	assert.Equal(t, 140.0, s.PendingPayments)
	assert.Equal(t, 30.0, s.FailedPayments)
	assert.Equal(t, 2, s.TodayBookings)
	assert.LessOrEqual(t, s.PendingBookings+s.ConfirmedBookings, s.TotalBookings)
}

func TestComputeStats_IgnoresFilters(t *testing.T) {
	bookings := fixture()
	q := baseQuery()
	q.Status = string(domain.BookingPending)

	require.Len(t, Derive(bookings, q), 1)
	assert.Equal(t, 3, ComputeStats(bookings, "V1", wednesday).TotalBookings)
	assert.Equal(t, EmptyStats(), ComputeStats(nil, "V1", wednesday))
}

func TestScopeToVenue(t *testing.T) {
	assert.Equal(t, []string{"b4"}, ids(ScopeToVenue(fixture(), "V2")))
	assert.Empty(t, ScopeToVenue(fixture(), "V9"))
}
