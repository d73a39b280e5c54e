// ABOUTME: iCalendar feed of desk appointments
// ABOUTME: Renders one VEVENT per appointment with wall-clock times in the business timezone
package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/models"
)

// ProductID identifies the feed producer.
const ProductID = "-//brokerdesk//schedule//EN"

// Filter narrows the feed. Empty fields match everything.
type Filter struct {
	Broker string
	Client string
}

func (f Filter) match(a models.Appointment) bool {
	if f.Broker != "" && !strings.EqualFold(f.Broker, a.Broker) {
		return false
	}
	if f.Client != "" && !strings.EqualFold(f.Client, a.ClientName) {
		return false
	}
	return true
}

// Feed serializes appointments as an iCalendar document. Appointments with an
// unparseable date are skipped.
func Feed(appts []models.Appointment, clock *dates.Clock, filter Filter, name string) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetXWRCalName(name)
	}
	if clock.Location != nil {
		cal.SetXWRTimezone(clock.Location.String())
	}

	stamp := clock.Time().UTC()
	for _, a := range appts {
		if !filter.match(a) {
			continue
		}
		start, err := clock.At(a.Date, a.StartHour)
		if err != nil {
			continue
		}
		end := start.Add(time.Duration(a.Duration * float64(time.Hour)))

		ev := cal.AddEvent(a.ID + "@brokerdesk")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(summary(a))
		if a.Notes != "" {
			ev.SetDescription(a.Notes)
		}
		ev.SetLocation(a.Broker)
		if a.FromPipedrive {
			ev.AddProperty(ical.ComponentPropertyCategories, models.SourcePipedrive)
		}
	}

	return cal.Serialize()
}

func summary(a models.Appointment) string {
	return fmt.Sprintf("%s with %s", a.ClientName, a.Broker)
}
