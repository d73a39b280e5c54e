// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/brokerdesk/desk"
	"github.com/harperreed/brokerdesk/handlers"
	crmsync "github.com/harperreed/brokerdesk/sync"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, d *desk.Desk, syncer *crmsync.Syncer, version string, logger *log.Logger) error {
	logger.Info("Starting brokerdesk MCP server...")

	server := handlers.NewServer(d, syncer, version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
