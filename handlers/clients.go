// ABOUTME: Client MCP tool handlers
// ABOUTME: Implements find_clients, list_overdue and add_note tools
package handlers

import (
	"context"
	"fmt"
	"slices"

	"github.com/harperreed/brokerdesk/dates"
	"github.com/harperreed/brokerdesk/desk"
	"github.com/harperreed/brokerdesk/followup"
	"github.com/harperreed/brokerdesk/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ClientHandlers struct {
	desk *desk.Desk
}

func NewClientHandlers(d *desk.Desk) *ClientHandlers {
	return &ClientHandlers{desk: d}
}

type ClientOutput struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone,omitempty"`
	Email           string   `json:"email,omitempty"`
	Brokers         []string `json:"brokers,omitempty"`
	ImportedFrom    string   `json:"imported_from"`
	LastAppointment string   `json:"last_appointment,omitempty"`
	NextAppointment string   `json:"next_appointment,omitempty"`
	DaysSince       *int     `json:"days_since,omitempty"`
	Overdue         bool     `json:"overdue"`
	Status          string   `json:"status"`
}

type FindClientsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search query (matches name, email or phone)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindClientsOutput struct {
	Clients []ClientOutput `json:"clients"`
}

func (h *ClientHandlers) FindClients(_ context.Context, request *mcp.CallToolRequest, input FindClientsInput) (*mcp.CallToolResult, FindClientsOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	match := make(map[string]bool)
	for _, c := range h.desk.FindClients(input.Query) {
		match[c.ID] = true
	}

	result := []ClientOutput{}
	for _, e := range h.desk.ClientStatuses() {
		if !match[e.Client.ID] {
			continue
		}
		result = append(result, entryToOutput(e))
		if len(result) == limit {
			break
		}
	}

	return nil, FindClientsOutput{Clients: result}, nil
}

type ListOverdueInput struct {
	Broker string `json:"broker,omitempty" jsonschema:"Only include clients preferring this broker"`
}

type ListOverdueOutput struct {
	Threshold int            `json:"threshold_days"`
	Clients   []ClientOutput `json:"clients"`
}

func (h *ClientHandlers) ListOverdue(_ context.Context, request *mcp.CallToolRequest, input ListOverdueInput) (*mcp.CallToolResult, ListOverdueOutput, error) {
	result := []ClientOutput{}
	for _, e := range h.desk.Overdue() {
		if input.Broker != "" && !prefers(e.Client, input.Broker) {
			continue
		}
		result = append(result, entryToOutput(e))
	}

	return nil, ListOverdueOutput{
		Threshold: h.desk.Settings().OverdueThreshold,
		Clients:   result,
	}, nil
}

type AddNoteInput struct {
	ClientName string `json:"client_name" jsonschema:"Client name (required)"`
	Broker     string `json:"broker,omitempty" jsonschema:"Broker who met the client"`
	Note       string `json:"note" jsonschema:"Meeting note (required)"`
	FollowUp   string `json:"follow_up,omitempty" jsonschema:"Follow-up items"`
	NextSteps  string `json:"next_steps,omitempty" jsonschema:"Agreed next steps"`
}

type NoteOutput struct {
	ID         string `json:"id"`
	ClientName string `json:"client_name"`
	Datetime   string `json:"datetime"`
	Broker     string `json:"broker,omitempty"`
	Note       string `json:"note"`
	FollowUp   string `json:"follow_up,omitempty"`
	NextSteps  string `json:"next_steps,omitempty"`
}

func (h *ClientHandlers) AddNote(_ context.Context, request *mcp.CallToolRequest, input AddNoteInput) (*mcp.CallToolResult, NoteOutput, error) {
	if input.ClientName == "" {
		return nil, NoteOutput{}, fmt.Errorf("client_name is required")
	}

	c, err := h.desk.ClientByName(input.ClientName)
	if err != nil {
		return nil, NoteOutput{}, fmt.Errorf("failed to find client: %w", err)
	}

	n, err := h.desk.AddNote(c.Name, models.Note{
		Broker:    input.Broker,
		Note:      input.Note,
		FollowUp:  input.FollowUp,
		NextSteps: input.NextSteps,
	})
	if err != nil {
		return nil, NoteOutput{}, fmt.Errorf("failed to add note: %w", err)
	}

	return nil, NoteOutput{
		ID:         n.ID,
		ClientName: c.Name,
		Datetime:   n.Datetime,
		Broker:     n.Broker,
		Note:       n.Note,
		FollowUp:   n.FollowUp,
		NextSteps:  n.NextSteps,
	}, nil
}

func prefers(c models.Client, broker string) bool {
	return slices.Contains(c.PreferredBrokers(), broker)
}

func entryToOutput(e followup.Entry) ClientOutput {
	out := ClientOutput{
		ID:              e.Client.ID,
		Name:            e.Client.Name,
		Phone:           e.Client.Phone,
		Email:           e.Client.Email,
		Brokers:         e.Client.PreferredBrokers(),
		ImportedFrom:    e.Client.ImportedFrom,
		LastAppointment: e.Status.Last,
		NextAppointment: e.Status.Next,
		Overdue:         e.Overdue,
		Status:          e.Label,
	}
	if e.DaysSince != dates.Infinite {
		days := e.DaysSince
		out.DaysSince = &days
	}
	return out
}
