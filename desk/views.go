// ABOUTME: Derived views over the desk state
// ABOUTME: Week grid, client statuses and the overdue followup list
package desk

import (
	"github.com/harperreed/brokerdesk/followup"
	"github.com/harperreed/brokerdesk/schedule"
)

// Week renders the schedule for the week starting at monday. An empty key
// means the current week.
func (d *Desk) Week(monday string) (*schedule.Week, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if monday == "" {
		monday = d.clock.MondayOf(d.clock.Time())
	}
	return d.grid().Week(monday)
}

// ClientStatuses evaluates every client against the appointment history.
func (d *Desk) ClientStatuses() []followup.Entry {
	d.mu.Lock()
	defer d.mu.Unlock()

	return followup.Evaluate(d.clients, d.appts, d.clock, d.settings.OverdueThreshold)
}

// Overdue lists clients with no upcoming appointment whose last one is at
// least the overdue threshold in the past.
func (d *Desk) Overdue() []followup.Entry {
	d.mu.Lock()
	defer d.mu.Unlock()

	return followup.Overdue(d.clients, d.appts, d.clock, d.settings.OverdueThreshold)
}
