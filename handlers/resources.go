// ABOUTME: MCP resource handlers for exposing desk data
// ABOUTME: Provides read-only access to clients, the overdue list, the week schedule and notes via URI
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/harperreed/brokerdesk/desk"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "brokerdesk://"

type ResourceHandlers struct {
	desk *desk.Desk
}

func NewResourceHandlers(d *desk.Desk) *ResourceHandlers {
	return &ResourceHandlers{desk: d}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.SplitN(strings.TrimPrefix(uri, resourceScheme), "/", 2)

	switch parts[0] {
	case "clients":
		return jsonResource(uri, h.desk.ClientStatuses())

	case "overdue":
		return jsonResource(uri, h.desk.Overdue())

	case "schedule":
		week, err := h.desk.Week("")
		if err != nil {
			return nil, fmt.Errorf("failed to build schedule: %w", err)
		}
		return jsonResource(uri, week)

	case "notes":
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf("notes resource requires a client name")
		}
		name, err := url.PathUnescape(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid client name: %w", err)
		}
		c, err := h.desk.ClientByName(name)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return jsonResource(uri, h.desk.Notes(c.Name))

	default:
		return nil, mcp.ResourceNotFoundError(uri)
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
