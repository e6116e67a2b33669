package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/melkeydev/demodb-query/mcp"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the query tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, svc, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			s := mcp.NewServer(svc, conn, uint32(a.cfg.Query.MaxRows))
			a.logger.Info("serving on stdio", "tables", len(svc.Tables()))

			return server.ServeStdio(s)
		},
	}
}
