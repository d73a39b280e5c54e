// ABOUTME: Client scheduling status and overdue detection
// ABOUTME: Derives last/next appointment per client and flags clients past the follow-up threshold
package followup

import (
	"sort"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/models"
)

// Status badge labels.
const (
	LabelOverdue   = "Overdue"
	LabelScheduled = "Scheduled"
	LabelNoFuture  = "No future appt"
	LabelNew       = "New"
)

// Stats folds the appointment history into last/next dates keyed by client
// name. Appointments on or before today advance Last; the earliest one after
// today becomes Next.
func Stats(appts []models.Appointment, today string) map[string]models.ClientStatus {
	sorted := make([]models.Appointment, len(appts))
	copy(sorted, appts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	stats := make(map[string]models.ClientStatus)
	for _, a := range sorted {
		st := stats[a.ClientName]
		if a.Date <= today {
			st.Last = a.Date
		} else if st.Next == "" {
			st.Next = a.Date
		}
		stats[a.ClientName] = st
	}
	return stats
}

// IsOverdue reports whether a client with no future appointment has gone
// threshold days without one. A client who was never booked has an infinite
// gap and is always overdue.
func IsOverdue(st models.ClientStatus, clock *dates.Clock, threshold int) bool {
	return st.Next == "" && clock.DaysSince(st.Last) >= threshold
}

// Label returns the badge text shown next to a client.
func Label(st models.ClientStatus, overdue bool) string {
	switch {
	case overdue:
		return LabelOverdue
	case st.Next != "":
		return LabelScheduled
	case st.Last != "":
		return LabelNoFuture
	default:
		return LabelNew
	}
}

// Entry is one client row in the directory or overdue views.
type Entry struct {
	Client    models.Client       `json:"client"`
	Status    models.ClientStatus `json:"status"`
	DaysSince int                 `json:"daysSince"` // dates.Infinite when never booked
	Overdue   bool                `json:"overdue"`
	Label     string              `json:"label"`
}

// Evaluate computes the status of every client, preserving collection order.
func Evaluate(clients []models.Client, appts []models.Appointment, clock *dates.Clock, threshold int) []Entry {
	stats := Stats(appts, clock.Today())
	entries := make([]Entry, 0, len(clients))
	for _, c := range clients {
		st := stats[c.Name]
		overdue := IsOverdue(st, clock, threshold)
		entries = append(entries, Entry{
			Client:    c,
			Status:    st,
			DaysSince: clock.DaysSince(st.Last),
			Overdue:   overdue,
			Label:     Label(st, overdue),
		})
	}
	return entries
}

// Overdue returns only the overdue clients.
func Overdue(clients []models.Client, appts []models.Appointment, clock *dates.Clock, threshold int) []Entry {
	var out []Entry
	for _, e := range Evaluate(clients, appts, clock, threshold) {
		if e.Overdue {
			out = append(out, e)
		}
	}
	return out
}
