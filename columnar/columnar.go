// Package columnar holds the batch operations used on top of the columnar projection:
// counting, slicing, sorting, printing and parquet files.
package columnar

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/mattn/go-runewidth"
)

// Count returns the total number of rows across recs.
func Count(recs ...arrow.Record) int64 {
	var n int64
	for _, r := range recs {
		n += r.NumRows()
	}
	return n
}

// Concat joins batches sharing one schema into a single batch. A single input is
// retained and returned as is.
func Concat(mem memory.Allocator, recs ...arrow.Record) (arrow.Record, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("no batches to join")
	}
	if len(recs) == 1 {
		recs[0].Retain()
		return recs[0], nil
	}

	schema := recs[0].Schema()
	cols := make([]arrow.Array, schema.NumFields())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i := range cols {
		parts := make([]arrow.Array, len(recs))
		for j, r := range recs {
			if !r.Schema().Equal(schema) {
				return nil, fmt.Errorf("batch %d has a different schema", j)
			}
			parts[j] = r.Column(i)
		}
		joined, err := array.Concatenate(parts, mem)
		if err != nil {
			return nil, fmt.Errorf("join column %s: %w", schema.Field(i).Name, err)
		}
		cols[i] = joined
	}
	return array.NewRecord(schema, cols, Count(recs...)), nil
}

// Limit returns at most n rows of rec starting at offset. A negative n means no limit.
// The result shares memory with rec and must be released on its own.
func Limit(rec arrow.Record, offset, n int64) arrow.Record {
	rows := rec.NumRows()
	if offset < 0 {
		offset = 0
	}
	if offset > rows {
		offset = rows
	}
	end := rows
	if n >= 0 && offset+n < rows {
		end = offset + n
	}
	return rec.NewSlice(offset, end)
}

// SortBy returns a copy of rec ordered by the named column. Nulls come first, and rows
// with equal keys keep their relative order.
func SortBy(ctx context.Context, mem memory.Allocator, rec arrow.Record, column string, ascending bool) (arrow.Record, error) {
	idx := rec.Schema().FieldIndices(column)
	if len(idx) == 0 {
		return nil, fmt.Errorf("no column %q in batch", column)
	}
	key := rec.Column(idx[0])

	less, err := comparator(key)
	if err != nil {
		return nil, err
	}

	order := make([]int, rec.NumRows())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		i, j := order[a], order[b]
		switch ni, nj := key.IsNull(i), key.IsNull(j); {
		case ni || nj:
			return ni && !nj
		case ascending:
			return less(i, j)
		default:
			return less(j, i)
		}
	})

	ib := array.NewInt64Builder(mem)
	defer ib.Release()
	for _, i := range order {
		ib.Append(int64(i))
	}
	indices := ib.NewArray()
	defer indices.Release()

	ctx = compute.WithAllocator(ctx, mem)
	cols := make([]arrow.Array, rec.NumCols())
	defer func() {
		for _, c := range cols {
			if c != nil {
				c.Release()
			}
		}
	}()
	for i, col := range rec.Columns() {
		taken, err := compute.TakeArray(ctx, col, indices)
		if err != nil {
			return nil, fmt.Errorf("reorder column %s: %w", rec.ColumnName(i), err)
		}
		cols[i] = taken
	}
	return array.NewRecord(rec.Schema(), cols, rec.NumRows()), nil
}

func comparator(arr arrow.Array) (func(i, j int) bool, error) {
	switch a := arr.(type) {
	case *array.Int32:
		return func(i, j int) bool { return a.Value(i) < a.Value(j) }, nil
	case *array.Int64:
		return func(i, j int) bool { return a.Value(i) < a.Value(j) }, nil
	case *array.Float64:
		return func(i, j int) bool { return a.Value(i) < a.Value(j) }, nil
	case *array.String:
		return func(i, j int) bool { return a.Value(i) < a.Value(j) }, nil
	default:
		return nil, fmt.Errorf("cannot sort by %s column", arr.DataType())
	}
}

// Format prints recs as a bordered grid with one header row. Null cells are empty.
func Format(recs ...arrow.Record) string {
	if len(recs) == 0 {
		return ""
	}
	schema := recs[0].Schema()
	cols := schema.NumFields()

	widths := make([]int, cols)
	for i, f := range schema.Fields() {
		widths[i] = runewidth.StringWidth(f.Name)
	}
	var cells [][]string
	for _, rec := range recs {
		for row := 0; row < int(rec.NumRows()); row++ {
			line := make([]string, cols)
			for i, col := range rec.Columns() {
				line[i] = cellString(col, row)
				if w := runewidth.StringWidth(line[i]); w > widths[i] {
					widths[i] = w
				}
			}
			cells = append(cells, line)
		}
	}

	sep := func() string {
		var b strings.Builder
		b.WriteString("+")
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w+2))
			b.WriteString("+")
		}
		return b.String()
	}
	row := func(values []string) string {
		var b strings.Builder
		b.WriteString("|")
		for i, v := range values {
			b.WriteString(" ")
			b.WriteString(runewidth.FillRight(v, widths[i]))
			b.WriteString(" |")
		}
		return b.String()
	}

	header := make([]string, cols)
	for i, f := range schema.Fields() {
		header[i] = f.Name
	}

	lines := []string{sep(), row(header), sep()}
	for _, c := range cells {
		lines = append(lines, row(c))
	}
	lines = append(lines, sep())
	return strings.Join(lines, "\n")
}

func cellString(arr arrow.Array, i int) string {
	if arr.IsNull(i) {
		return ""
	}
	if s, ok := arr.(*array.String); ok {
		return s.Value(i)
	}
	return arr.ValueStr(i)
}
