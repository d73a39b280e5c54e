package followup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/models"
)

func fixedClock(t *testing.T) *dates.Clock {
	t.Helper()
	c, err := dates.NewClock(dates.DefaultTimezone)
	require.NoError(t, err)
	return dates.Fixed(c.Location, time.Date(2026, 10, 14, 10, 0, 0, 0, c.Location))
}

func appt(client, date string) models.Appointment {
	return models.Appointment{Broker: "Amy", Date: date, StartHour: 10, Duration: 1, ClientName: client}
}

func TestStatsLastAndNext(t *testing.T) {
	appts := []models.Appointment{
		appt("Jane", "2026-11-20"),
		appt("Jane", "2026-09-01"),
		appt("Jane", "2026-10-14"),
		appt("Jane", "2026-10-30"),
		appt("Bob", "2026-01-05"),
	}

	stats := Stats(appts, "2026-10-14")

	assert.Equal(t, models.ClientStatus{Last: "2026-10-14", Next: "2026-10-30"}, stats["Jane"])
	assert.Equal(t, models.ClientStatus{Last: "2026-01-05"}, stats["Bob"])
	_, ok := stats["Nobody"]
	assert.False(t, ok)
}

func TestStatsDoesNotReorderInput(t *testing.T) {
	appts := []models.Appointment{appt("Jane", "2026-11-20"), appt("Jane", "2026-09-01")}
	Stats(appts, "2026-10-14")
	assert.Equal(t, "2026-11-20", appts[0].Date)
}

func TestOverdueBoundary(t *testing.T) {
	clock := fixedClock(t)

	ninety := models.ClientStatus{Last: "2026-07-16"}
	eightyNine := models.ClientStatus{Last: "2026-07-17"}

	assert.True(t, IsOverdue(ninety, clock, 90))
	assert.False(t, IsOverdue(eightyNine, clock, 90))
}

func TestFutureAppointmentIsNeverOverdue(t *testing.T) {
	clock := fixedClock(t)
	st := models.ClientStatus{Last: "2025-01-01", Next: "2026-12-01"}
	assert.False(t, IsOverdue(st, clock, 90))
}

func TestNeverBookedClientIsOverdue(t *testing.T) {
	clock := fixedClock(t)
	assert.True(t, IsOverdue(models.ClientStatus{}, clock, 90))
	assert.True(t, IsOverdue(models.ClientStatus{}, clock, 100000))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, LabelOverdue, Label(models.ClientStatus{}, true))
	assert.Equal(t, LabelScheduled, Label(models.ClientStatus{Next: "2026-11-01"}, false))
	assert.Equal(t, LabelNoFuture, Label(models.ClientStatus{Last: "2026-10-01"}, false))
	assert.Equal(t, LabelNew, Label(models.ClientStatus{}, false))
}

func TestEvaluateAndOverdue(t *testing.T) {
	clock := fixedClock(t)
	clients := []models.Client{
		{ID: "1", Name: "Jane"},
		{ID: "2", Name: "Bob"},
		{ID: "3", Name: "Fresh"},
	}
	appts := []models.Appointment{
		appt("Jane", "2026-10-01"),
		appt("Bob", "2026-10-20"),
	}

	entries := Evaluate(clients, appts, clock, 90)
	require.Len(t, entries, 3)
	assert.Equal(t, 13, entries[0].DaysSince)
	assert.Equal(t, LabelNoFuture, entries[0].Label)
	assert.Equal(t, LabelScheduled, entries[1].Label)
	assert.Equal(t, dates.Infinite, entries[2].DaysSince)
	assert.True(t, entries[2].Overdue)

	overdue := Overdue(clients, appts, clock, 90)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Fresh", overdue[0].Client.Name)

	overdue = Overdue(clients, appts, clock, 10)
	require.Len(t, overdue, 2)
	assert.Equal(t, "Jane", overdue[0].Client.Name)
}
