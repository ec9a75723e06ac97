package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay_BothFormats(t *testing.T) {
	a, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	b, err := ParseTimeOfDay("09:30:00")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "09:30", a.String())
	assert.Equal(t, 9, a.Hour())
	assert.Equal(t, 30, a.Minute())
}

func TestParseTimeOfDay_Invalid(t *testing.T) {
	for _, s := range []string{"", "9", "25:00", "10:61", "aa:bb", "10:00:00:00", "100:00"} {
		_, err := ParseTimeOfDay(s)
		assert.Error(t, err, s)
	}
}

func TestTimeOfDay_UnmarshalRejectsPastMidnight(t *testing.T) {
	var v TimeOfDay
	assert.Error(t, json.Unmarshal([]byte(`"24:00"`), &v))
	require.NoError(t, json.Unmarshal([]byte(`"23:59:59"`), &v))
	assert.Equal(t, NewTimeOfDay(23, 59, 59), v)
}

func TestBooking_UnmarshalNormalizesTimes(t *testing.T) {
	raw := `{"bookingId":"b1","venueId":"v1","date":"2024-01-15",
		"startTime":"18:00:00","endTime":"19:00",
		"timeSlotRanges":[{"startTime":"18:00","endTime":"18:30:00"}],
		"status":"CONFIRMED","paymentStatus":"PENDING","totalCost":100}`

	var b Booking
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	assert.Equal(t, NewTimeOfDay(18, 0, 0), b.StartTime)
	assert.Equal(t, NewTimeOfDay(19, 0, 0), b.EndTime)
	assert.Equal(t, NewTimeOfDay(18, 30, 0), b.TimeSlotRanges[0].EndTime)
	assert.Nil(t, b.PaymentAmount)
	assert.Equal(t, 100.0, b.EffectiveAmount())

	out, err := json.Marshal(b.StartTime)
	require.NoError(t, err)
	assert.Equal(t, `"18:00"`, string(out))
}

func TestBooking_Slots(t *testing.T) {
	b := Booking{StartTime: NewTimeOfDay(10, 0, 0), EndTime: NewTimeOfDay(11, 0, 0)}
	assert.Equal(t, []TimeSlotRange{{StartTime: b.StartTime, EndTime: b.EndTime}}, b.Slots())

	b.TimeSlotRanges = []TimeSlotRange{
		{StartTime: NewTimeOfDay(8, 0, 0), EndTime: NewTimeOfDay(9, 0, 0)},
		{StartTime: NewTimeOfDay(12, 0, 0), EndTime: NewTimeOfDay(13, 0, 0)},
	}
	assert.Len(t, b.Slots(), 2)
}

func TestBooking_EffectiveAmountPrefersPayment(t *testing.T) {
	paid := 80.0
	b := Booking{TotalCost: 100, PaymentAmount: &paid}
	assert.Equal(t, 80.0, b.EffectiveAmount())
}

func TestCourt_IsPeak(t *testing.T) {
	c := Court{PeakHourStart: NewTimeOfDay(17, 0, 0), PeakHourEnd: NewTimeOfDay(21, 0, 0)}
	assert.True(t, c.IsPeak(NewTimeOfDay(17, 0, 0)))
	assert.True(t, c.IsPeak(NewTimeOfDay(20, 59, 0)))
	assert.False(t, c.IsPeak(NewTimeOfDay(21, 0, 0)))
	assert.False(t, c.IsPeak(NewTimeOfDay(9, 0, 0)))

	overnight := Court{PeakHourStart: NewTimeOfDay(22, 0, 0), PeakHourEnd: NewTimeOfDay(2, 0, 0)}
	assert.True(t, overnight.IsPeak(NewTimeOfDay(23, 0, 0)))
	assert.True(t, overnight.IsPeak(NewTimeOfDay(1, 0, 0)))
	assert.False(t, overnight.IsPeak(NewTimeOfDay(12, 0, 0)))
}

func TestStatusValid(t *testing.T) {
	assert.True(t, BookingNoShow.Valid())
	assert.False(t, BookingStatus("pending").Valid())
	assert.True(t, PaymentPartiallyRefunded.Valid())
	assert.False(t, PaymentStatus("PAID").Valid())
}
