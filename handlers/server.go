// ABOUTME: MCP server assembly
// ABOUTME: Registers every desk tool, resource and prompt on one server
package handlers

import (
	"github.com/harperreed/brokerdesk/desk"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds the MCP server for a desk. A nil syncer leaves out sync_source.
func NewServer(d *desk.Desk, syncer Syncer, version string) *mcp.Server {
	scheduleHandlers := NewScheduleHandlers(d)
	clientHandlers := NewClientHandlers(d)
	resourceHandlers := NewResourceHandlers(d)
	promptHandlers := NewPromptHandlers(d)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "brokerdesk",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "week_schedule",
		Description: "Show the appointments of one week, grouped by day",
	}, scheduleHandlers.WeekSchedule)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "book_appointment",
		Description: "Book an appointment in a broker's lane; the slot must be free and inside business hours",
	}, scheduleHandlers.BookAppointment)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_clients",
		Description: "Search clients by name, email or phone with their last and next appointments",
	}, clientHandlers.FindClients)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_overdue",
		Description: "List clients with no upcoming appointment whose last meeting is past the overdue threshold",
	}, clientHandlers.ListOverdue)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_note",
		Description: "Append a meeting note to a client's history",
	}, clientHandlers.AddNote)

	if syncer != nil {
		mcp.AddTool(server, &mcp.Tool{
			Name:        "sync_source",
			Description: "Import contacts (and Pipedrive activities) from pipedrive or redtail",
		}, NewSyncHandlers(syncer).SyncSource)
	}

	for _, r := range []*mcp.Resource{
		{URI: resourceScheme + "clients", Name: "clients", Description: "Every client with scheduling status", MIMEType: "application/json"},
		{URI: resourceScheme + "overdue", Name: "overdue", Description: "Clients due for a follow-up", MIMEType: "application/json"},
		{URI: resourceScheme + "schedule", Name: "schedule", Description: "This week's schedule grid", MIMEType: "application/json"},
	} {
		server.AddResource(r, resourceHandlers.ReadResource)
	}
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resourceScheme + "notes/{client}",
		Name:        "notes",
		Description: "Meeting notes for one client",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-suggestions",
		Description: "Plan outreach to overdue clients",
		Arguments: []*mcp.PromptArgument{
			{Name: "broker", Description: "Only clients preferring this broker"},
		},
	}, promptHandlers.GetPrompt)
	server.AddPrompt(&mcp.Prompt{
		Name:        "client-briefing",
		Description: "Summarize a client's history before a meeting",
		Arguments: []*mcp.PromptArgument{
			{Name: "client_name", Description: "Client name", Required: true},
		},
	}, promptHandlers.GetPrompt)

	return server
}
