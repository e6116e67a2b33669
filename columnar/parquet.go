package columnar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/spf13/afero"
)

// WriteParquet writes rec to path on fs, creating parent directories as needed. The
// arrow schema is stored alongside so column types survive a round trip.
func WriteParquet(fs afero.Fs, path string, rec arrow.Record) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	props := parquet.NewWriterProperties()
	w, err := pqarrow.NewFileWriter(rec.Schema(), f, props, pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema()))
	if err != nil {
		return fmt.Errorf("failed to open parquet writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return fmt.Errorf("failed to write batch: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", path, err)
	}
	return nil
}

const readBatchSize = 64 * 1024

// ReadParquet reads every batch stored in path on fs. The caller releases each record.
func ReadParquet(ctx context.Context, fs afero.Fs, path string, mem memory.Allocator) ([]arrow.Record, error) {
	_, recs, err := readParquet(ctx, fs, path, mem)
	return recs, err
}

// ReadParquetRecord reads path on fs into a single batch. A file holding no rows yields
// an empty batch with the stored schema.
func ReadParquetRecord(ctx context.Context, fs afero.Fs, path string, mem memory.Allocator) (arrow.Record, error) {
	schema, recs, err := readParquet(ctx, fs, path, mem)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return emptyRecord(mem, schema), nil
	}
	defer func() {
		for _, r := range recs {
			r.Release()
		}
	}()
	return Concat(mem, recs...)
}

func emptyRecord(mem memory.Allocator, schema *arrow.Schema) arrow.Record {
	cols := make([]arrow.Array, schema.NumFields())
	for i, f := range schema.Fields() {
		cols[i] = array.MakeArrayOfNull(mem, f.Type, 0)
	}
	rec := array.NewRecord(schema, cols, 0)
	for _, c := range cols {
		c.Release()
	}
	return rec
}

func readParquet(ctx context.Context, fs afero.Fs, path string, mem memory.Allocator) (*arrow.Schema, []arrow.Record, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f, file.WithReadProps(parquet.NewReaderProperties(mem)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read parquet footer: %w", err)
	}
	defer pf.Close()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: readBatchSize}, mem)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open arrow reader: %w", err)
	}
	rr, err := fr.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read batches: %w", err)
	}
	defer rr.Release()

	var out []arrow.Record
	for rr.Next() {
		rec := rr.Record()
		rec.Retain()
		out = append(out, rec)
	}
	// The reader reports io.EOF once the last row group is drained.
	if err := rr.Err(); err != nil && !errors.Is(err, io.EOF) {
		for _, r := range out {
			r.Release()
		}
		return nil, nil, fmt.Errorf("failed to read batches: %w", err)
	}
	return rr.Schema(), out, nil
}
