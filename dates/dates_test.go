package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pacific(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	require.NoError(t, err)
	return loc
}

func TestDateKeyUsesBusinessTimezone(t *testing.T) {
	loc := pacific(t)
	c := &Clock{Location: loc}

	// 03:00 UTC on the 15th is still the evening of the 14th in Los Angeles.
	instant := time.Date(2026, 10, 15, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-14", c.DateKey(instant))
}

func TestNormalizeKeyLeavesFormattedDatesAlone(t *testing.T) {
	c := &Clock{Location: pacific(t)}

	got, err := c.NormalizeKey("2026-02-27")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-27", got)

	got, err = c.NormalizeKey("2026-02-27 09:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-27", got)

	got, err = c.NormalizeKey("2026-02-28T02:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-27", got)

	_, err = c.NormalizeKey("next tuesday")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseKeyAnchorsAtNoon(t *testing.T) {
	loc := pacific(t)
	c := &Clock{Location: loc}

	got, err := c.ParseKey("2026-03-08") // DST starts
	require.NoError(t, err)
	assert.Equal(t, 12, got.Hour())
	assert.Equal(t, "2026-03-08", c.DateKey(got))
	assert.Equal(t, "Mar 8", c.Fmt("2026-03-08"))
	assert.Equal(t, "Sun, Mar 8, 2026", c.FmtFull("2026-03-08"))
}

func TestDaysSince(t *testing.T) {
	loc := pacific(t)
	c := Fixed(loc, time.Date(2026, 10, 14, 8, 0, 0, 0, loc))

	assert.Equal(t, 0, c.DaysSince("2026-10-14"))
	assert.Equal(t, 1, c.DaysSince("2026-10-13"))
	assert.Equal(t, 90, c.DaysSince("2026-07-16"))
	assert.Equal(t, -3, c.DaysSince("2026-10-17"))
	assert.Equal(t, Infinite, c.DaysSince(""))
	assert.Equal(t, Infinite, c.DaysSince("garbage"))
}

func TestDaysSinceAcrossDST(t *testing.T) {
	loc := pacific(t)
	c := Fixed(loc, time.Date(2026, 11, 2, 9, 0, 0, 0, loc))

	assert.Equal(t, 2, c.DaysSince("2026-10-31"))
}

func TestMondayOf(t *testing.T) {
	loc := pacific(t)
	c := &Clock{Location: loc}

	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"monday", time.Date(2026, 10, 12, 10, 0, 0, 0, loc), "2026-10-12"},
		{"wednesday", time.Date(2026, 10, 14, 10, 0, 0, 0, loc), "2026-10-12"},
		{"saturday", time.Date(2026, 10, 17, 23, 0, 0, 0, loc), "2026-10-12"},
		{"sunday maps to prior monday", time.Date(2026, 10, 18, 10, 0, 0, 0, loc), "2026-10-12"},
		{"utc monday still sunday in LA", time.Date(2026, 10, 19, 2, 0, 0, 0, time.UTC), "2026-10-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.MondayOf(tt.in))
		})
	}
}

func TestWeekKeysAndShift(t *testing.T) {
	keys, err := WeekKeys("2026-12-28")
	require.NoError(t, err)
	assert.Len(t, keys, 7)
	assert.Equal(t, "2027-01-03", keys[6])

	prev, err := ShiftKey("2026-10-12", -7)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-05", prev)

	_, err = ShiftKey("bad", 1)
	assert.ErrorIs(t, err, ErrInvalidDate)

	start := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC), AddDays(start, 1))
}

func TestIsPast(t *testing.T) {
	loc := pacific(t)
	c := Fixed(loc, time.Date(2026, 10, 14, 8, 0, 0, 0, loc))

	assert.True(t, c.IsPast("2026-10-13"))
	assert.False(t, c.IsPast("2026-10-14"))
	assert.False(t, c.IsPast("2026-10-15"))
}

func TestHourLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{9, "9:00 AM"},
		{9.5, "9:30 AM"},
		{12, "12:00 PM"},
		{13.5, "1:30 PM"},
		{17, "5:00 PM"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HourLabel(tt.in))
	}
}

func TestAtBuildsWallClockTime(t *testing.T) {
	loc := pacific(t)
	c := &Clock{Location: loc}

	got, err := c.At("2026-11-01", 10.5)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 1, 10, 30, 0, 0, loc), got, "DST change day keeps wall time")

	_, err = c.At("nope", 9)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
