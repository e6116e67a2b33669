// Package cmd provides the demodb command line: the MCP server and direct access to the
// query pipeline.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/melkeydev/demodb-query/catalog"
	"github.com/melkeydev/demodb-query/config"
	"github.com/melkeydev/demodb-query/databases"
	"github.com/melkeydev/demodb-query/dispatch"
	"github.com/melkeydev/demodb-query/guard"
	"github.com/melkeydev/demodb-query/logging"
)

type app struct {
	fs         afero.Fs
	configPath string
	cfg        *config.Config
	logger     *logging.Logger
}

// NewRootCommand returns the root command with all subcommands attached
func NewRootCommand(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}

	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:   "demodb",
		Short: "Bounded read-only queries over the airline demo database.",
		Long: `demodb runs read-only SELECT queries against the eight tables of the airline demo
database. Every query is checked before it reaches the store and is capped at a fixed number
of rows. Results are printed as text, JSON or a grid, exported to parquet, or served to MCP
clients over stdio.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "",
		"path to config file (default: bundled demo store)")

	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newQueryCommand(a))
	rootCmd.AddCommand(newExportCommand(a))
	rootCmd.AddCommand(newShowCommand(a))
	rootCmd.AddCommand(newTablesCommand(a))
	rootCmd.AddCommand(newSeedCommand(a))

	return rootCmd
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.fs, a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.Init(cfg.Log.Level)
	return nil
}

// connect opens the configured store and builds the query service over it. The caller
// closes the connector.
func (a *app) connect(ctx context.Context) (databases.Connector, *dispatch.Service, error) {
	connStr, err := a.cfg.Database.GetConnectionString()
	if err != nil {
		return nil, nil, err
	}

	conn, err := databases.NewConnector(ctx, a.cfg.Database.DBType, connStr, a.cfg.Database.MaxConnections)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connector: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to reach %s database: %w", a.cfg.Database.DBType, err)
	}
	a.logger.Debug("connected", "type", a.cfg.Database.DBType, "max_rows", a.cfg.Query.MaxRows)

	cat := catalog.Default()
	g := guard.New(cat, uint32(a.cfg.Query.MaxRows),
		guard.WithClampLimit(a.cfg.Query.ClampLimit),
		guard.WithDialect(guard.Dialect(a.cfg.Database.DBType)),
	)
	return conn, dispatch.New(cat, g, conn), nil
}
