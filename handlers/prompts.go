// ABOUTME: MCP prompt handlers for reusable broker workflow templates
// ABOUTME: Provides follow-up planning and client briefing prompts built from desk data
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/brokerdesk/desk"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	desk *desk.Desk
}

func NewPromptHandlers(d *desk.Desk) *PromptHandlers {
	return &PromptHandlers{desk: d}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(request.Params.Arguments)
	case "client-briefing":
		return h.getClientBriefingPrompt(request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	broker := args["broker"]
	overdue := h.desk.Overdue()

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Clients without a meeting in %d days or more", h.desk.Settings().OverdueThreshold))
	if broker != "" {
		promptText.WriteString(fmt.Sprintf(" (broker: %s)", broker))
	}
	promptText.WriteString(":\n\n")

	count := 0
	for _, e := range overdue {
		if broker != "" && !prefers(e.Client, broker) {
			continue
		}
		if e.Status.Last == "" {
			promptText.WriteString(fmt.Sprintf("- %s (never booked)\n", e.Client.Name))
		} else {
			promptText.WriteString(fmt.Sprintf("- %s (last seen %s, %d days ago)\n", e.Client.Name, e.Status.Last, e.DaysSince))
		}
		if notes := h.desk.Notes(e.Client.Name); len(notes) > 0 {
			last := notes[len(notes)-1]
			if last.NextSteps != "" {
				promptText.WriteString(fmt.Sprintf("  Next steps from last note: %s\n", last.NextSteps))
			}
		}
		count++
	}

	if count == 0 {
		promptText.WriteString("No clients are overdue.\n")
	}

	promptText.WriteString("\nPlease:")
	promptText.WriteString("\n1. Prioritize which clients to call first")
	promptText.WriteString("\n2. Suggest a talking point for each based on their history")

	return &mcp.GetPromptResult{
		Description: "Follow-up suggestions for overdue clients",
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}

func (h *PromptHandlers) getClientBriefingPrompt(args map[string]string) (*mcp.GetPromptResult, error) {
	name, ok := args["client_name"]
	if !ok || name == "" {
		return nil, fmt.Errorf("client_name is required")
	}

	c, err := h.desk.ClientByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Prepare a briefing for an upcoming meeting with this client:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", c.Name))
	if c.Phone != "" {
		promptText.WriteString(fmt.Sprintf("Phone: %s\n", c.Phone))
	}
	if c.Email != "" {
		promptText.WriteString(fmt.Sprintf("Email: %s\n", c.Email))
	}
	if brokers := c.PreferredBrokers(); len(brokers) > 0 {
		promptText.WriteString(fmt.Sprintf("Brokers: %s\n", strings.Join(brokers, ", ")))
	}
	if c.ContactSource != "" {
		promptText.WriteString(fmt.Sprintf("Source: %s\n", c.ContactSource))
	}

	notes := h.desk.Notes(c.Name)
	if len(notes) > 0 {
		promptText.WriteString(fmt.Sprintf("\nMeeting notes (%d):\n", len(notes)))
		for _, n := range notes {
			promptText.WriteString(fmt.Sprintf("- %s", n.Datetime))
			if n.Broker != "" {
				promptText.WriteString(fmt.Sprintf(" with %s", n.Broker))
			}
			promptText.WriteString(fmt.Sprintf(": %s\n", n.Note))
			if n.FollowUp != "" {
				promptText.WriteString(fmt.Sprintf("  Follow-up: %s\n", n.FollowUp))
			}
		}
	}

	promptText.WriteString("\nPlease provide:")
	promptText.WriteString("\n1. A short summary of the relationship so far")
	promptText.WriteString("\n2. Open items to raise in the meeting")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Briefing for %s", c.Name),
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: promptText.String()},
			},
		},
	}, nil
}
