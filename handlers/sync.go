// ABOUTME: Sync MCP tool handler
// ABOUTME: Implements sync_source for Pipedrive and Redtail imports
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	crmsync "github.com/harperreed/brokerdesk/sync"
)

// Syncer runs one CRM import to completion.
type Syncer interface {
	Sync(ctx context.Context, source string) (*crmsync.Result, error)
}

type SyncHandlers struct {
	syncer Syncer
}

func NewSyncHandlers(syncer Syncer) *SyncHandlers {
	return &SyncHandlers{syncer: syncer}
}

type SyncSourceInput struct {
	Source string `json:"source" jsonschema:"CRM to import from: pipedrive or redtail (required)"`
}

type SyncSourceOutput struct {
	Source     string `json:"source"`
	Contacts   int    `json:"contacts"`
	Activities int    `json:"activities"`
	Created    int    `json:"created"`
	Updated    int    `json:"updated"`
	Message    string `json:"message"`
}

func (h *SyncHandlers) SyncSource(ctx context.Context, request *mcp.CallToolRequest, input SyncSourceInput) (*mcp.CallToolResult, SyncSourceOutput, error) {
	if input.Source == "" {
		return nil, SyncSourceOutput{}, fmt.Errorf("source is required")
	}

	res, err := h.syncer.Sync(ctx, input.Source)
	if err != nil {
		return nil, SyncSourceOutput{}, err
	}

	return nil, SyncSourceOutput{
		Source:     res.Source,
		Contacts:   res.Contacts,
		Activities: res.Activities,
		Created:    res.Merge.Created,
		Updated:    res.Merge.Updated,
		Message:    res.Message,
	}, nil
}
