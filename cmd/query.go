package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/melkeydev/demodb-query/handlers"
)

func newQueryCommand(a *app) *cobra.Command {
	var sql, format string

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Run a bounded SELECT against one table",
		Long: `Run a read-only SELECT against one table and print the rows.

Without --sql the first rows of the table are printed. Queries without a LIMIT are capped
at query.max_rows rows.`,
		Example: `  demodb query flights --sql "select * from flights where status = 'Arrived'"
  demodb query bookings --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, svc, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			h, err := svc.ForTable(args[0])
			if err != nil {
				return err
			}
			out, err := handlers.Render(cmd.Context(), h, sql, format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sql, "sql", "s", "", "SELECT statement to run")
	cmd.Flags().StringVarP(&format, "format", "f", handlers.FormatText, "output format: text, json or table")
	return cmd
}
