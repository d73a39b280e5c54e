// ABOUTME: Business timezone calendar math for the schedule
// ABOUTME: Converts instants to YYYY-MM-DD keys, finds week starts, counts elapsed days
package dates

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // business timezone must resolve on hosts without zoneinfo
)

// KeyLayout is the canonical calendar date format.
const KeyLayout = "2006-01-02"

// DefaultTimezone is the business timezone used when none is configured.
const DefaultTimezone = "America/Los_Angeles"

// Infinite is returned by DaysSince for a date that never happened.
const Infinite = math.MaxInt

var ErrInvalidDate = errors.New("invalid date")

var keyPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Clock answers "what day is it" in the business timezone.
// Now is injectable for tests; nil means time.Now.
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

// NewClock loads the named timezone.
func NewClock(tz string) (*Clock, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	return &Clock{Location: loc}, nil
}

// Fixed returns a clock frozen at now.
func Fixed(loc *time.Location, now time.Time) *Clock {
	return &Clock{Location: loc, Now: func() time.Time { return now }}
}

func (c *Clock) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Clock) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// Time returns the current instant in the business timezone.
func (c *Clock) Time() time.Time {
	return c.now().In(c.location())
}

// DateKey returns the business-timezone calendar date containing t.
func (c *Clock) DateKey(t time.Time) string {
	return t.In(c.location()).Format(KeyLayout)
}

// NormalizeKey accepts either an already formatted date (returned as-is, never
// re-interpreted) or an RFC3339 timestamp, which is converted to the business date.
func (c *Clock) NormalizeKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if keyPrefix.MatchString(s) && (len(s) == 10 || s[10] != 'T') {
		return s[:10], nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		if keyPrefix.MatchString(s) {
			return s[:10], nil
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return c.DateKey(t), nil
}

// ParseKey anchors a calendar date at local noon in the business timezone, which
// keeps it on the same day regardless of DST or UTC-midnight parsing.
func (c *Clock) ParseKey(key string) (time.Time, error) {
	d, err := civil(key)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, c.location()), nil
}

// At returns the wall-clock time hour hours after midnight on key in the
// business timezone. Fractional hours become minutes.
func (c *Clock) At(key string, hour float64) (time.Time, error) {
	d, err := civil(key)
	if err != nil {
		return time.Time{}, err
	}
	minutes := int(math.Round(hour * 60))
	return time.Date(d.Year(), d.Month(), d.Day(), minutes/60, minutes%60, 0, 0, c.location()), nil
}

// Today returns today's calendar date.
func (c *Clock) Today() string {
	return c.DateKey(c.now())
}

// IsPast reports whether key is strictly before today.
func (c *Clock) IsPast(key string) bool {
	return key < c.Today()
}

// DaysSince returns whole calendar days from key to today. An empty or
// unparseable key yields Infinite.
func (c *Clock) DaysSince(key string) int {
	if key == "" {
		return Infinite
	}
	from, err := civil(key)
	if err != nil {
		return Infinite
	}
	today, _ := civil(c.Today())
	return int(today.Sub(from).Hours() / 24)
}

// MondayOf returns the Monday on or before the business date containing t.
// Sunday belongs to the week that started six days earlier.
func (c *Clock) MondayOf(t time.Time) string {
	d, _ := civil(c.DateKey(t))
	offset := 1 - int(d.Weekday())
	if d.Weekday() == time.Sunday {
		offset = -6
	}
	return d.AddDate(0, 0, offset).Format(KeyLayout)
}

// AddDays moves t by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// ShiftKey moves a calendar date by n days.
func ShiftKey(key string, n int) (string, error) {
	d, err := civil(key)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, n).Format(KeyLayout), nil
}

// WeekKeys returns the seven dates starting at monday.
func WeekKeys(monday string) ([]string, error) {
	d, err := civil(monday)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 7)
	for i := range keys {
		keys[i] = d.AddDate(0, 0, i).Format(KeyLayout)
	}
	return keys, nil
}

// civil parses a date key as a UTC midnight so day arithmetic never crosses DST.
func civil(key string) (time.Time, error) {
	if len(key) < 10 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	d, err := time.Parse(KeyLayout, key[:10])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	return d, nil
}
