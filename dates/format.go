// ABOUTME: Presentation helpers for dates and half-hour slots
// ABOUTME: Formats calendar keys as labels without shifting the day
package dates

import (
	"fmt"
	"math"
)

// Fmt renders a calendar key as "Jan 2".
func (c *Clock) Fmt(key string) string {
	t, err := c.ParseKey(key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2")
}

// FmtFull renders a calendar key as "Mon, Jan 2, 2006".
func (c *Clock) FmtFull(key string) string {
	t, err := c.ParseKey(key)
	if err != nil {
		return key
	}
	return t.Format("Mon, Jan 2, 2006")
}

// FmtDateTime renders the current moment for note stamps.
func (c *Clock) FmtDateTime() string {
	return c.Time().Format("Jan 2, 2006, 3:04 PM")
}

// HourLabel renders a half-hour slot, e.g. 13.5 -> "1:30 PM".
func HourLabel(h float64) string {
	hh := int(math.Floor(h))
	mm := "00"
	if h-float64(hh) == 0.5 {
		mm = "30"
	}
	ap := "AM"
	if hh >= 12 {
		ap = "PM"
	}
	if hh > 12 {
		hh -= 12
	}
	return fmt.Sprintf("%d:%s %s", hh, mm, ap)
}
