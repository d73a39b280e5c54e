// ABOUTME: Tests for the desk MCP tool, resource and prompt handlers
// ABOUTME: Runs handlers against an in-memory desk with a fixed clock
package handlers

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/desk"
	"github.com/harperreed/brokerdesk/models"
	crmsync "github.com/harperreed/brokerdesk/sync"
)

func setupTestDesk(t *testing.T) *desk.Desk {
	t.Helper()
	c, err := dates.NewClock(dates.DefaultTimezone)
	require.NoError(t, err)

	d := desk.New(nil, desk.Options{
		Clock:    dates.Fixed(c.Location, time.Date(2026, 10, 14, 9, 0, 0, 0, c.Location)),
		Defaults: models.Settings{Brokers: []string{"Amy", "Ben"}, OverdueThreshold: 90},
		Logger:   log.New(io.Discard),
	})
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestBookAppointmentUsesPreferredBroker(t *testing.T) {
	d := setupTestDesk(t)
	c, err := d.AddClient(models.Client{Name: "Dana Park", ManualBrokers: []string{"Ben"}})
	require.NoError(t, err)

	h := NewScheduleHandlers(d)
	_, out, err := h.BookAppointment(context.Background(), nil, BookAppointmentInput{
		ClientName: c.Name,
		Date:       "2026-10-20",
		StartHour:  13.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ben", out.Broker)
	assert.Equal(t, 1.0, out.Duration)
	assert.Equal(t, "1:30 PM", out.Start)

	_, _, err = h.BookAppointment(context.Background(), nil, BookAppointmentInput{
		ClientName: "Eve Ruiz",
		Broker:     "Ben",
		Date:       "2026-10-20",
		StartHour:  13.5,
	})
	assert.Error(t, err)

	_, _, err = h.BookAppointment(context.Background(), nil, BookAppointmentInput{ClientName: "New Person", Date: "2026-10-20", StartHour: 9})
	assert.Error(t, err)
}

func TestWeekScheduleGroupsByDay(t *testing.T) {
	d := setupTestDesk(t)
	for _, a := range []models.Appointment{
		{Broker: "Ben", Date: "2026-10-14", StartHour: 11, Duration: 1, ClientName: "Dana Park"},
		{Broker: "Amy", Date: "2026-10-14", StartHour: 10, Duration: 1, ClientName: "Eve Ruiz"},
		{Broker: "Amy", Date: "2026-10-21", StartHour: 10, Duration: 1, ClientName: "Eve Ruiz"},
	} {
		_, err := d.Book(a)
		require.NoError(t, err)
	}

	h := NewScheduleHandlers(d)
	_, out, err := h.WeekSchedule(context.Background(), nil, WeekScheduleInput{})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-12", out.Monday)
	require.Len(t, out.Days, 7)

	wed := out.Days[2]
	assert.Equal(t, "2026-10-14", wed.Date)
	require.Len(t, wed.Appointments, 2)
	assert.Equal(t, "Eve Ruiz", wed.Appointments[0].ClientName)
	assert.Empty(t, out.Days[0].Appointments)

	_, out, err = h.WeekSchedule(context.Background(), nil, WeekScheduleInput{Monday: "2026-10-19", Broker: "amy"})
	require.NoError(t, err)
	assert.Len(t, out.Days[2].Appointments, 1)

	_, _, err = h.WeekSchedule(context.Background(), nil, WeekScheduleInput{Monday: "nope"})
	assert.Error(t, err)
}

func TestFindClientsAndOverdue(t *testing.T) {
	d := setupTestDesk(t)
	_, err := d.AddClient(models.Client{Name: "Dana Park", Email: "dana@example.com", ManualBrokers: []string{"Amy"}})
	require.NoError(t, err)
	_, err = d.AddClient(models.Client{Name: "Eve Ruiz", Email: "eve@example.com"})
	require.NoError(t, err)
	_, err = d.Book(models.Appointment{Broker: "Ben", Date: "2026-10-20", StartHour: 9, Duration: 1, ClientName: "Eve Ruiz"})
	require.NoError(t, err)

	h := NewClientHandlers(d)
	_, found, err := h.FindClients(context.Background(), nil, FindClientsInput{Query: "example.com", Limit: 1})
	require.NoError(t, err)
	require.Len(t, found.Clients, 1)
	assert.Equal(t, "Dana Park", found.Clients[0].Name)

	_, found, err = h.FindClients(context.Background(), nil, FindClientsInput{Query: "eve"})
	require.NoError(t, err)
	require.Len(t, found.Clients, 1)
	assert.Equal(t, "2026-10-20", found.Clients[0].NextAppointment)
	assert.False(t, found.Clients[0].Overdue)

	_, overdue, err := h.ListOverdue(context.Background(), nil, ListOverdueInput{})
	require.NoError(t, err)
	assert.Equal(t, 90, overdue.Threshold)
	require.Len(t, overdue.Clients, 1)
	assert.Equal(t, "Dana Park", overdue.Clients[0].Name)
	assert.Nil(t, overdue.Clients[0].DaysSince)

	_, overdue, err = h.ListOverdue(context.Background(), nil, ListOverdueInput{Broker: "Ben"})
	require.NoError(t, err)
	assert.Empty(t, overdue.Clients)
}

func TestAddNote(t *testing.T) {
	d := setupTestDesk(t)
	_, err := d.AddClient(models.Client{Name: "Dana Park"})
	require.NoError(t, err)

	h := NewClientHandlers(d)
	_, out, err := h.AddNote(context.Background(), nil, AddNoteInput{ClientName: "dana park", Broker: "Amy", Note: "Reviewed IRA", NextSteps: "Send forms"})
	require.NoError(t, err)
	assert.Equal(t, "Dana Park", out.ClientName)
	assert.NotEmpty(t, out.ID)
	assert.NotEmpty(t, out.Datetime)
	assert.Len(t, d.Notes("Dana Park"), 1)

	_, _, err = h.AddNote(context.Background(), nil, AddNoteInput{ClientName: "Nobody", Note: "x"})
	assert.ErrorIs(t, err, desk.ErrNotFound)

	_, _, err = h.AddNote(context.Background(), nil, AddNoteInput{ClientName: "Dana Park"})
	assert.ErrorIs(t, err, desk.ErrEmptyNote)
}

type fakeSyncer struct {
	err error
}

func (f fakeSyncer) Sync(_ context.Context, source string) (*crmsync.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &crmsync.Result{Source: source, Contacts: 3, Activities: 2, Merge: crmsync.MergeResult{Created: 1, Updated: 2}, Message: "ok"}, nil
}

func TestSyncSource(t *testing.T) {
	_, out, err := NewSyncHandlers(fakeSyncer{}).SyncSource(context.Background(), nil, SyncSourceInput{Source: "pipedrive"})
	require.NoError(t, err)
	assert.Equal(t, SyncSourceOutput{Source: "pipedrive", Contacts: 3, Activities: 2, Created: 1, Updated: 2, Message: "ok"}, out)

	_, _, err = NewSyncHandlers(fakeSyncer{err: crmsync.ErrMissingCredentials}).SyncSource(context.Background(), nil, SyncSourceInput{Source: "redtail"})
	assert.ErrorIs(t, err, crmsync.ErrMissingCredentials)

	_, _, err = NewSyncHandlers(fakeSyncer{}).SyncSource(context.Background(), nil, SyncSourceInput{})
	assert.Error(t, err)
}

func readResource(t *testing.T, h *ResourceHandlers, uri string) (*mcp.ReadResourceResult, error) {
	t.Helper()
	return h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
}

func TestReadResource(t *testing.T) {
	d := setupTestDesk(t)
	_, err := d.AddClient(models.Client{Name: "Dana Park"})
	require.NoError(t, err)
	_, err = d.AddNote("Dana Park", models.Note{Note: "Intro call"})
	require.NoError(t, err)

	h := NewResourceHandlers(d)

	res, err := readResource(t, h, "brokerdesk://clients")
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	assert.Contains(t, res.Contents[0].Text, "Dana Park")

	res, err = readResource(t, h, "brokerdesk://notes/Dana%20Park")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, "Intro call")

	res, err = readResource(t, h, "brokerdesk://schedule")
	require.NoError(t, err)
	assert.Contains(t, res.Contents[0].Text, "2026-10-12")

	_, err = readResource(t, h, "brokerdesk://notes/Nobody")
	assert.Error(t, err)
	_, err = readResource(t, h, "crm://clients")
	assert.Error(t, err)
	_, err = readResource(t, h, "brokerdesk://deals")
	assert.Error(t, err)
}

func getPrompt(t *testing.T, h *PromptHandlers, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	t.Helper()
	return h.GetPrompt(context.Background(), &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
}

func TestPrompts(t *testing.T) {
	d := setupTestDesk(t)
	_, err := d.AddClient(models.Client{Name: "Dana Park", Email: "dana@example.com", ManualBrokers: []string{"Amy"}})
	require.NoError(t, err)
	_, err = d.AddNote("Dana Park", models.Note{Broker: "Amy", Note: "Intro call", NextSteps: "Send proposal"})
	require.NoError(t, err)

	h := NewPromptHandlers(d)

	res, err := getPrompt(t, h, "follow-up-suggestions", nil)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Dana Park (never booked)")
	assert.Contains(t, text, "Send proposal")

	res, err = getPrompt(t, h, "follow-up-suggestions", map[string]string{"broker": "Ben"})
	require.NoError(t, err)
	assert.Contains(t, res.Messages[0].Content.(*mcp.TextContent).Text, "No clients are overdue.")

	res, err = getPrompt(t, h, "client-briefing", map[string]string{"client_name": "Dana Park"})
	require.NoError(t, err)
	text = res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "dana@example.com")
	assert.Contains(t, text, "with Amy: Intro call")

	_, err = getPrompt(t, h, "client-briefing", nil)
	assert.Error(t, err)
	_, err = getPrompt(t, h, "deal-analysis", nil)
	assert.Error(t, err)
}

func TestNewServerRegisters(t *testing.T) {
	d := setupTestDesk(t)
	assert.NotNil(t, NewServer(d, fakeSyncer{}, "test"))
	assert.NotNil(t, NewServer(d, nil, "test"))
}
