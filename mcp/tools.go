package mcp

import (
	"fmt"
	"strings"

	goMCP "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/melkeydev/demodb-query/databases"
	"github.com/melkeydev/demodb-query/dispatch"
	"github.com/melkeydev/demodb-query/handlers"
)

const (
	ServerName    = "demodb-query"
	ServerVersion = "0.1.0"
)

// NewServer returns an MCP server with every tool registered.
func NewServer(svc *dispatch.Service, connector databases.Connector, maxRows uint32) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithLogging(),
	)
	RegisterTools(s, svc, connector, maxRows)
	return s
}

func RegisterTools(s *server.MCPServer, svc *dispatch.Service, connector databases.Connector, maxRows uint32) {
	// List tool
	listTool := goMCP.NewTool("list_tables",
		goMCP.WithDescription("List the tables that can be queried and their columns"),
	)

	// Query tool
	queryTool := goMCP.NewTool("query_table",
		goMCP.WithDescription(fmt.Sprintf(
			"Run a read-only SELECT against one table. At most %d rows are returned unless the query sets its own LIMIT", maxRows)),
		goMCP.WithString("table",
			goMCP.Required(),
			goMCP.Description("Table to query, one of: "+strings.Join(svc.Tables(), ", ")),
		),
		goMCP.WithString("query",
			goMCP.Description("SELECT statement reading from the table. If empty, returns the first rows of the table"),
		),
		goMCP.WithString("format",
			goMCP.Description("Output format (default: text)"),
			goMCP.Enum(handlers.FormatText, handlers.FormatJSON, handlers.FormatTable),
		),
	)

	// Scan tool
	scanTool := goMCP.NewTool("scan_database",
		goMCP.WithDescription("Check that the database has every queryable table and column"),
		goMCP.WithArray("tables",
			goMCP.Description("Optional list of specific table names to check. If empty, checks all tables"),
			goMCP.Items(map[string]any{"type": "string"}),
		),
	)

	s.AddTool(listTool, handlers.ListTablesHandler(svc))
	s.AddTool(queryTool, handlers.QueryHandler(svc))
	s.AddTool(scanTool, handlers.ScanHandler(svc, connector))
}
