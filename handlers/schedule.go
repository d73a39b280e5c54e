// ABOUTME: Schedule MCP tool handlers
// ABOUTME: Implements week_schedule and book_appointment tools
package handlers

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/desk"
	"github.com/harperreed/brokerdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ScheduleHandlers struct {
	desk *desk.Desk
}

func NewScheduleHandlers(d *desk.Desk) *ScheduleHandlers {
	return &ScheduleHandlers{desk: d}
}

type AppointmentOutput struct {
	ID         string  `json:"id"`
	Broker     string  `json:"broker"`
	Date       string  `json:"date"`
	Start      string  `json:"start"`
	StartHour  float64 `json:"start_hour"`
	Duration   float64 `json:"duration"`
	ClientName string  `json:"client_name"`
	Notes      string  `json:"notes,omitempty"`
	Synced     bool    `json:"synced"`
}

type WeekScheduleInput struct {
	Monday string `json:"monday,omitempty" jsonschema:"Monday of the week as YYYY-MM-DD (default: current week)"`
	Broker string `json:"broker,omitempty" jsonschema:"Only include appointments in this broker's lane"`
}

type DayOutput struct {
	Name         string              `json:"name"`
	Date         string              `json:"date"`
	Appointments []AppointmentOutput `json:"appointments"`
}

type WeekScheduleOutput struct {
	Monday string      `json:"monday"`
	Lanes  []string    `json:"lanes"`
	Days   []DayOutput `json:"days"`
}

func (h *ScheduleHandlers) WeekSchedule(_ context.Context, request *mcp.CallToolRequest, input WeekScheduleInput) (*mcp.CallToolResult, WeekScheduleOutput, error) {
	week, err := h.desk.Week(input.Monday)
	if err != nil {
		return nil, WeekScheduleOutput{}, fmt.Errorf("invalid week: %w", err)
	}

	byDate := make(map[string][]AppointmentOutput)
	for _, a := range h.desk.Appointments() {
		if input.Broker != "" && !strings.EqualFold(a.Broker, input.Broker) {
			continue
		}
		byDate[a.Date] = append(byDate[a.Date], appointmentToOutput(a))
	}

	out := WeekScheduleOutput{Monday: week.Monday, Lanes: week.Lanes}
	for _, day := range week.Days {
		appts := byDate[day.Date]
		slices.SortFunc(appts, func(a, b AppointmentOutput) int {
			if c := cmp.Compare(a.StartHour, b.StartHour); c != 0 {
				return c
			}
			return strings.Compare(a.Broker, b.Broker)
		})
		if appts == nil {
			appts = []AppointmentOutput{}
		}
		out.Days = append(out.Days, DayOutput{Name: day.Name, Date: day.Date, Appointments: appts})
	}

	return nil, out, nil
}

type BookAppointmentInput struct {
	ClientName string  `json:"client_name" jsonschema:"Client name (required; unknown names create a client)"`
	Broker     string  `json:"broker,omitempty" jsonschema:"Broker or Staff lane (default: the client's preferred broker)"`
	Date       string  `json:"date" jsonschema:"Date as YYYY-MM-DD (required)"`
	StartHour  float64 `json:"start_hour" jsonschema:"Start hour in half-hour steps, e.g. 13.5 for 1:30 PM (required)"`
	Duration   float64 `json:"duration,omitempty" jsonschema:"Duration in hours (default 1)"`
	Notes      string  `json:"notes,omitempty" jsonschema:"Appointment notes"`
}

func (h *ScheduleHandlers) BookAppointment(_ context.Context, request *mcp.CallToolRequest, input BookAppointmentInput) (*mcp.CallToolResult, AppointmentOutput, error) {
	if strings.TrimSpace(input.ClientName) == "" {
		return nil, AppointmentOutput{}, fmt.Errorf("client_name is required")
	}

	broker := input.Broker
	if broker == "" {
		if c, err := h.desk.ClientByName(input.ClientName); err == nil {
			broker = c.DefaultBroker()
		}
	}
	if broker == "" {
		return nil, AppointmentOutput{}, fmt.Errorf("broker is required for a client without a preferred broker")
	}

	duration := input.Duration
	if duration == 0 {
		duration = 1
	}

	a, err := h.desk.Book(models.Appointment{
		Broker:     broker,
		Date:       input.Date,
		StartHour:  input.StartHour,
		Duration:   duration,
		ClientName: input.ClientName,
		Notes:      input.Notes,
	})
	if err != nil {
		return nil, AppointmentOutput{}, fmt.Errorf("failed to book appointment: %w", err)
	}

	return nil, appointmentToOutput(a), nil
}

func appointmentToOutput(a models.Appointment) AppointmentOutput {
	return AppointmentOutput{
		ID:         a.ID,
		Broker:     a.Broker,
		Date:       a.Date,
		Start:      dates.HourLabel(a.StartHour),
		StartHour:  a.StartHour,
		Duration:   a.Duration,
		ClientName: a.ClientName,
		Notes:      a.Notes,
		Synced:     a.FromPipedrive,
	}
}
