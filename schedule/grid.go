// ABOUTME: Slot grid model for the weekly appointment schedule
// ABOUTME: Answers occupancy and overlap queries and validates bookings per staff lane
package schedule

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/models"
)

// Grid errors.
var (
	ErrEmptyClient  = errors.New("client name is required")
	ErrBadDuration  = errors.New("duration must be a positive multiple of 30 minutes")
	ErrOutsideHours = errors.New("appointment falls outside business hours")
	ErrUnknownLane  = errors.New("unknown broker or staff lane")
	ErrSlotOccupied = errors.New("slot is already occupied")
	ErrPastDate     = errors.New("cannot book a date in the past")
)

// SlotLength is the grid resolution in hours.
const SlotLength = 0.5

// Hours is the bookable business window. Close is the last slot boundary.
type Hours struct {
	Open  float64 `yaml:"open" json:"open"`
	Close float64 `yaml:"close" json:"close"`
}

// DefaultHours is 9:00 to 17:00.
func DefaultHours() Hours {
	return Hours{Open: 9, Close: 17}
}

// Slots returns every half-hour boundary from Open to Close inclusive.
func (h Hours) Slots() []float64 {
	var slots []float64
	for s := h.Open; s <= h.Close; s += SlotLength {
		slots = append(slots, s)
	}
	return slots
}

// ConflictError reports the appointment that already holds a requested slot.
type ConflictError struct {
	Existing models.Appointment
	Hour     float64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s already has %s at %s on %s",
		ErrSlotOccupied, e.Existing.Broker, e.Existing.ClientName, dates.HourLabel(e.Hour), e.Existing.Date)
}

func (e *ConflictError) Unwrap() error {
	return ErrSlotOccupied
}

// Grid is a read-only view over one appointment collection.
type Grid struct {
	appts []models.Appointment
	lanes []string
	hours Hours
	slots []float64
	clock *dates.Clock
}

// NewGrid builds a grid. The appointment slice is not copied and must not be
// mutated while the grid is in use.
func NewGrid(appts []models.Appointment, lanes []string, hours Hours, clock *dates.Clock) *Grid {
	return &Grid{
		appts: appts,
		lanes: lanes,
		hours: hours,
		slots: hours.Slots(),
		clock: clock,
	}
}

// Lanes returns the staff columns.
func (g *Grid) Lanes() []string {
	return g.lanes
}

// Hours returns the business window.
func (g *Grid) Hours() Hours {
	return g.hours
}

// AppointmentAt returns the appointment starting exactly at (staff, date, hour).
func (g *Grid) AppointmentAt(staff, date string, hour float64) *models.Appointment {
	return g.appointmentAt(staff, date, hour, "")
}

func (g *Grid) appointmentAt(staff, date string, hour float64, exclude string) *models.Appointment {
	for i := range g.appts {
		a := &g.appts[i]
		if exclude != "" && a.ID == exclude {
			continue
		}
		if a.Broker == staff && a.Date == date && a.StartHour == hour {
			return a
		}
	}
	return nil
}

// BlockedByPrior returns the first appointment starting on an earlier slot
// boundary whose span still covers hour.
func (g *Grid) BlockedByPrior(staff, date string, hour float64) *models.Appointment {
	return g.blockedByPrior(staff, date, hour, "")
}

func (g *Grid) blockedByPrior(staff, date string, hour float64, exclude string) *models.Appointment {
	for _, s := range g.slots {
		if s >= hour {
			break
		}
		if a := g.appointmentAt(staff, date, s, exclude); a != nil && s+a.Duration > hour {
			return a
		}
	}
	return nil
}

// SlotFree reports whether nothing starts at or spans over the slot.
func (g *Grid) SlotFree(staff, date string, hour float64) bool {
	return g.occupant(staff, date, hour, "") == nil
}

func (g *Grid) occupant(staff, date string, hour float64, exclude string) *models.Appointment {
	if a := g.appointmentAt(staff, date, hour, exclude); a != nil {
		return a
	}
	return g.blockedByPrior(staff, date, hour, exclude)
}

// Bookable reports whether an empty grid cell accepts a new booking. Past
// dates are read-only.
func (g *Grid) Bookable(staff, date string, hour float64) bool {
	if g.clock != nil && g.clock.IsPast(date) {
		return false
	}
	return hour >= g.hours.Open && hour < g.hours.Close && g.SlotFree(staff, date, hour)
}

// Validate checks an appointment against the grid. The appointment's own ID is
// ignored so an edit never conflicts with itself.
func (g *Grid) Validate(a models.Appointment) error {
	if a.ClientName == "" {
		return ErrEmptyClient
	}
	if a.Duration <= 0 || !isHalfHour(a.Duration) {
		return ErrBadDuration
	}
	if !slices.Contains(g.lanes, a.Broker) {
		return fmt.Errorf("%w: %q", ErrUnknownLane, a.Broker)
	}
	if !isHalfHour(a.StartHour) || a.StartHour < g.hours.Open || a.StartHour >= g.hours.Close || a.EndHour() > g.hours.Close {
		return fmt.Errorf("%w: %s for %gh", ErrOutsideHours, dates.HourLabel(a.StartHour), a.Duration)
	}
	for s := a.StartHour; s < a.EndHour(); s += SlotLength {
		if existing := g.occupant(a.Broker, a.Date, s, a.ID); existing != nil {
			return &ConflictError{Existing: *existing, Hour: s}
		}
	}
	return nil
}

// ValidateNew is Validate plus the past-date rule for fresh bookings.
func (g *Grid) ValidateNew(a models.Appointment) error {
	if g.clock != nil && g.clock.IsPast(a.Date) {
		return fmt.Errorf("%w: %s", ErrPastDate, a.Date)
	}
	return g.Validate(a)
}

func isHalfHour(x float64) bool {
	return math.Abs(x*2-math.Round(x*2)) < 1e-9
}
