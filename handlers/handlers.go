package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/melkeydev/demodb-query/catalog"
	"github.com/melkeydev/demodb-query/columnar"
	"github.com/melkeydev/demodb-query/databases"
	"github.com/melkeydev/demodb-query/dispatch"
	"github.com/melkeydev/demodb-query/logging"
)

// Output formats accepted by query_table.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

type tableInfo struct {
	Name    string               `json:"name"`
	Columns []catalog.ColumnInfo `json:"columns"`
}

// ListTablesHandler creates a handler for the list_tables tool
func ListTablesHandler(svc *dispatch.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tables := make([]tableInfo, 0, len(svc.Tables()))
		for _, name := range svc.Tables() {
			h, err := svc.ForTable(name)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("List failed: %v", err)), nil
			}
			tables = append(tables, tableInfo{Name: h.Name(), Columns: h.Columns()})
		}

		jsonData, err := json.MarshalIndent(tables, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// QueryHandler creates a handler for the query_table tool
func QueryHandler(svc *dispatch.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := request.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Missing table parameter: %v", err)), nil
		}
		query := optionalString(request, "query", "")
		format := optionalString(request, "format", FormatText)

		h, err := svc.ForTable(table)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Query failed: %v", err)), nil
		}

		logging.Debug("query_table", "table", table, "format", format, "query", query)

		out, err := Render(ctx, h, query, format)
		if err != nil {
			logging.Warn("query_table failed", "table", table, "error", err)
			return mcp.NewToolResultError(fmt.Sprintf("Query failed: %v", err)), nil
		}

		return mcp.NewToolResultText(out), nil
	}
}

// ScanHandler creates a handler for the scan_database tool
func ScanHandler(svc *dispatch.Service, connector databases.Connector) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var tablesList []string

		if args, ok := request.Params.Arguments.(map[string]any); ok {
			if tablesParam, exists := args["tables"]; exists {
				if tablesArray, ok := tablesParam.([]interface{}); ok {
					for _, table := range tablesArray {
						if tableStr, ok := table.(string); ok {
							tablesList = append(tablesList, tableStr)
						}
					}
				}
			}
		}

		checks, err := databases.CheckCatalog(ctx, connector, svc.Catalog())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Scan failed: %v", err)), nil
		}

		if len(tablesList) > 0 {
			wanted := make(map[string]bool, len(tablesList))
			for _, t := range tablesList {
				wanted[t] = true
			}
			filtered := checks[:0]
			for _, c := range checks {
				if wanted[c.Name] {
					filtered = append(filtered, c)
				}
			}
			checks = filtered
		}

		jsonData, err := json.MarshalIndent(checks, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// Render runs sql through h and prints the rows in the requested format: display lines,
// a JSON array or a bordered grid.
func Render(ctx context.Context, h *dispatch.Handle, sql, format string) (string, error) {
	switch format {
	case "", FormatText:
		lines, err := h.Strings(ctx, sql)
		if err != nil {
			return "", err
		}
		return strings.Join(lines, "\n"), nil
	case FormatJSON:
		return h.JSON(ctx, sql)
	case FormatTable:
		rec, err := h.Columnar(ctx, sql)
		if err != nil {
			return "", err
		}
		defer rec.Release()
		return columnar.Format(rec), nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s, %s or %s)", format, FormatText, FormatJSON, FormatTable)
	}
}

func optionalString(request mcp.CallToolRequest, key, def string) string {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}
