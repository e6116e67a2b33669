package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/melkeydev/demodb-query/databases"
	"github.com/melkeydev/demodb-query/databases/sqlite"
)

func newTablesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the queryable tables and check them against the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conn, svc, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			checks, err := databases.CheckCatalog(cmd.Context(), conn, svc.Catalog())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TABLE\tCOLUMNS\tSTATUS")
			for _, c := range checks {
				h, err := svc.ForTable(c.Name)
				if err != nil {
					return err
				}
				status := "ok"
				switch {
				case !c.Present:
					status = "missing"
				case len(c.MissingColumns) > 0:
					status = "missing columns: " + strings.Join(c.MissingColumns, ", ")
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", c.Name, len(h.Columns()), status)
			}
			return w.Flush()
		},
	}
}

func newSeedCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a sqlite database file holding the demo tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sqlite.CreateDemoFile(cmd.Context(), file); err != nil {
				return err
			}
			a.logger.Info("seeded demo database", "file", file)
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "database.db", "sqlite file to create")
	return cmd
}
