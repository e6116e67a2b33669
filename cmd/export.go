package cmd

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/spf13/cobra"

	"github.com/melkeydev/demodb-query/columnar"
)

type sortFlags struct {
	Column string
	Desc   bool
}

func (f *sortFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Column, "sort", "", "column to order rows by")
	cmd.Flags().BoolVar(&f.Desc, "desc", false, "sort in descending order")
}

// apply sorts rec when a column was given. It always returns a batch the caller owns and
// releases rec.
func (f *sortFlags) apply(cmd *cobra.Command, rec arrow.Record) (arrow.Record, error) {
	if f.Column == "" {
		return rec, nil
	}
	defer rec.Release()
	return columnar.SortBy(cmd.Context(), memory.DefaultAllocator, rec, f.Column, !f.Desc)
}

func newExportCommand(a *app) *cobra.Command {
	var sql, out string
	var order sortFlags

	cmd := &cobra.Command{
		Use:     "export <table>",
		Short:   "Write the rows of a bounded query to a parquet file",
		Example: `  demodb export ticket_flights --sql "select * from ticket_flights" --sort flight_id --out ticket_flights.parquet`,
		Args:    cobra.ExactArgs(1),
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
			rec, err := h.Columnar(cmd.Context(), sql)
			if err != nil {
				return err
			}
			rec, err = order.apply(cmd, rec)
			if err != nil {
				return err
			}
			defer rec.Release()

			if err := columnar.WriteParquet(a.fs, out, rec); err != nil {
				return err
			}
			a.logger.Debug("exported", "table", h.Name(), "path", out)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", columnar.Count(rec), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sql, "sql", "s", "", "SELECT statement to run")
	cmd.Flags().StringVarP(&out, "out", "o", "", "parquet file to write")
	_ = cmd.MarkFlagRequired("out")
	order.register(cmd)
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	var offset, limit int64
	var order sortFlags

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print the rows stored in a parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := columnar.ReadParquetRecord(cmd.Context(), a.fs, args[0], memory.DefaultAllocator)
			if err != nil {
				return err
			}
			rec, err = order.apply(cmd, rec)
			if err != nil {
				return err
			}
			defer rec.Release()

			page := columnar.Limit(rec, offset, limit)
			defer page.Release()

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, columnar.Format(page))
			fmt.Fprintf(w, "(%d of %d rows)\n", columnar.Count(page), columnar.Count(rec))
			return nil
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "rows to skip")
	cmd.Flags().Int64Var(&limit, "limit", -1, "rows to print (-1 for all)")
	order.register(cmd)
	return cmd
}
