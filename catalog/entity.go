package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/melkeydev/demodb-query/types"
)

// Descriptor is the record-type-independent view of an entity. It is what the catalog
// stores and what callers resolve by table name.
type Descriptor interface {
	Name() string
	Columns() []ColumnInfo
	Schema() *arrow.Schema
	// Decode converts every raw row into the entity's record. Any failing row aborts the
	// whole set; no partial set is returned.
	Decode(rows []types.Row) (RecordSet, error)
}

// RecordSet is one request's decoded rows together with the three projections over them.
type RecordSet interface {
	Table() string
	Len() int
	Strings() []string
	JSON() (string, error)
	Columnar(mem memory.Allocator) (arrow.Record, error)
}

// Column binds a column name and logical type to the record field holding its value.
// The same slice of columns drives decoding and every projection.
type Column[R any] struct {
	Name     string
	Type     LogicalType
	Nullable bool

	cell func(*R) Cell
}

const (
	notNull  = false
	nullable = true
)

func column[R any, C Cell](name string, typ LogicalType, null bool, field func(*R) C) Column[R] {
	return Column[R]{
		Name:     name,
		Type:     typ,
		Nullable: null,
		cell:     func(r *R) Cell { return field(r) },
	}
}

func textCol[R any](name string, null bool, field func(*R) *Text) Column[R] {
	return column(name, TypeText, null, field)
}

func int32Col[R any](name string, null bool, field func(*R) *Int32) Column[R] {
	return column(name, TypeInt32, null, field)
}

func decimalCol[R any](name string, null bool, field func(*R) *Decimal) Column[R] {
	return column(name, TypeDecimal, null, field)
}

func timestampCol[R any](name string, null bool, field func(*R) *Timestamp) Column[R] {
	return column(name, TypeTimestamp, null, field)
}

func jsonCol[R, T any](name string, null bool, field func(*R) *JSON[T]) Column[R] {
	return column(name, TypeJSON, null, field)
}

func pointCol[R any](name string, null bool, field func(*R) *Point) Column[R] {
	return column(name, TypePoint, null, field)
}

// Entity is the descriptor of one table whose rows decode into R.
type Entity[R any] struct {
	name    string
	columns []Column[R]
	schema  *arrow.Schema
}

func newEntity[R any](name string, columns ...Column[R]) *Entity[R] {
	fields := make([]arrow.Field, len(columns))
	for i, c := range columns {
		fields[i] = arrow.Field{Name: c.Name, Type: c.Type.ArrowType(), Nullable: c.Nullable}
	}
	return &Entity[R]{
		name:    name,
		columns: columns,
		schema:  arrow.NewSchema(fields, nil),
	}
}

func (e *Entity[R]) Name() string { return e.name }

func (e *Entity[R]) Schema() *arrow.Schema { return e.schema }

func (e *Entity[R]) Columns() []ColumnInfo {
	out := make([]ColumnInfo, len(e.columns))
	for i, c := range e.columns {
		out[i] = ColumnInfo{Name: c.Name, Type: c.Type, Nullable: c.Nullable}
	}
	return out
}

// DecodeRow converts a single raw row. Columns missing from the row decode as NULL when
// they are nullable.
func (e *Entity[R]) DecodeRow(row types.Row) (R, error) {
	return e.decode(0, row)
}

func (e *Entity[R]) decode(idx int, row types.Row) (R, error) {
	var r R
	for _, c := range e.columns {
		v, ok := row[c.Name]
		if !ok || v == nil {
			if !c.Nullable {
				return r, &DecodeError{Table: e.name, Row: idx, Column: c.Name, Err: ErrMissingValue}
			}
			continue
		}
		if err := c.cell(&r).Scan(v); err != nil {
			return r, &DecodeError{Table: e.name, Row: idx, Column: c.Name, Err: err}
		}
		if !c.Nullable && c.cell(&r).Null() {
			return r, &DecodeError{Table: e.name, Row: idx, Column: c.Name, Err: ErrMissingValue}
		}
	}
	return r, nil
}

// DecodeAll decodes rows in order and fails on the first bad row.
func (e *Entity[R]) DecodeAll(rows []types.Row) ([]R, error) {
	out := make([]R, 0, len(rows))
	for i, row := range rows {
		r, err := e.decode(i, row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (e *Entity[R]) Decode(rows []types.Row) (RecordSet, error) {
	records, err := e.DecodeAll(rows)
	if err != nil {
		return nil, err
	}
	return &recordSet[R]{entity: e, records: records}, nil
}

// Display renders a record as "col: value, col: value" in column order.
func (e *Entity[R]) Display(r *R) string {
	var b strings.Builder
	for i, c := range e.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Name)
		b.WriteString(": ")
		cell := c.cell(r)
		if cell.Null() {
			b.WriteString(NullDisplay)
			continue
		}
		b.WriteString(cell.String())
	}
	return b.String()
}

// JSON renders a record as a JSON object whose keys follow column order.
func (e *Entity[R]) JSON(r *R) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range e.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := c.cell(r).MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode %s.%s: %w", e.name, c.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// AppendColumnar appends every record to the builder, one field builder per column.
func (e *Entity[R]) AppendColumnar(records []R, b *array.RecordBuilder) error {
	if !b.Schema().Equal(e.schema) {
		return fmt.Errorf("builder schema does not match %s", e.name)
	}
	b.Reserve(len(records))
	for i := range records {
		for j, c := range e.columns {
			cell := c.cell(&records[i])
			if cell.Null() {
				b.Field(j).AppendNull()
				continue
			}
			cell.appendTo(b.Field(j))
		}
	}
	return nil
}

// Columnar builds one batch holding every record.
func (e *Entity[R]) Columnar(mem memory.Allocator, records []R) (arrow.Record, error) {
	b := array.NewRecordBuilder(mem, e.schema)
	defer b.Release()

	if err := e.AppendColumnar(records, b); err != nil {
		return nil, err
	}
	return b.NewRecord(), nil
}

type recordSet[R any] struct {
	entity  *Entity[R]
	records []R
}

func (s *recordSet[R]) Table() string { return s.entity.name }

func (s *recordSet[R]) Len() int { return len(s.records) }

func (s *recordSet[R]) Strings() []string {
	out := make([]string, len(s.records))
	for i := range s.records {
		out[i] = s.entity.Display(&s.records[i])
	}
	return out
}

func (s *recordSet[R]) JSON() (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := range s.records {
		if i > 0 {
			buf.WriteByte(',')
		}
		obj, err := s.entity.JSON(&s.records[i])
		if err != nil {
			return "", err
		}
		buf.Write(obj)
	}
	buf.WriteByte(']')
	return buf.String(), nil
}

func (s *recordSet[R]) Columnar(mem memory.Allocator) (arrow.Record, error) {
	return s.entity.Columnar(mem, s.records)
}

// Records returns the typed records behind a set produced by an Entity[R].
func Records[R any](s RecordSet) ([]R, bool) {
	rs, ok := s.(*recordSet[R])
	if !ok {
		return nil, false
	}
	return rs.records, true
}
