package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/jackc/pgtype"
	"github.com/shopspring/decimal"
)

// NullDisplay is what a NULL field renders as in the display projection.
const NullDisplay = "NULL"

// TimestampLayout renders every timestamp in UTC with an explicit offset,
// e.g. 2016-08-13T12:40:00+00:00.
const TimestampLayout = "2006-01-02T15:04:05.999999999-07:00"

// Cell is one typed field of a record. Every projection of a record goes through the
// same four methods, so a column renders identically wherever it appears.
type Cell interface {
	Scan(src any) error
	Null() bool
	// String is the display and columnar form of a non-null value.
	String() string
	MarshalJSON() ([]byte, error)

	appendTo(b array.Builder)
}

// Text is a nullable string column.
type Text struct {
	V     string
	Valid bool
}

func (c *Text) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = Text{}
	case string:
		*c = Text{V: v, Valid: true}
	case []byte:
		*c = Text{V: string(v), Valid: true}
	default:
		return wrongType(src, TypeText)
	}
	return nil
}

func (c *Text) Null() bool     { return !c.Valid }
func (c *Text) String() string { return c.V }

func (c *Text) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.V)
}

func (c *Text) appendTo(b array.Builder) {
	b.(*array.StringBuilder).Append(c.V)
}

// Int32 is a nullable 32-bit integer column.
type Int32 struct {
	V     int32
	Valid bool
}

func (c *Int32) Scan(src any) error {
	var n int64
	switch v := src.(type) {
	case nil:
		*c = Int32{}
		return nil
	case int64:
		n = v
	case int32:
		n = int64(v)
	case int:
		n = int64(v)
	case int16:
		n = int64(v)
	case float64:
		if v != math.Trunc(v) {
			return fmt.Errorf("%w: %v is not an integer", ErrWrongType, v)
		}
		n = int64(v)
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	default:
		return wrongType(src, TypeInt32)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return fmt.Errorf("%w: %d overflows int32", ErrWrongType, n)
	}
	*c = Int32{V: int32(n), Valid: true}
	return nil
}

func (c *Int32) parse(s string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrongType, err)
	}
	*c = Int32{V: int32(n), Valid: true}
	return nil
}

func (c *Int32) Null() bool     { return !c.Valid }
func (c *Int32) String() string { return strconv.FormatInt(int64(c.V), 10) }

func (c *Int32) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(c.String()), nil
}

func (c *Int32) appendTo(b array.Builder) {
	b.(*array.Int32Builder).Append(c.V)
}

// Decimal is a nullable arbitrary-precision amount. It always renders with the scale the
// store returned it with, so 99800.00 stays "99800.00" in every projection.
type Decimal struct {
	V     decimal.Decimal
	Valid bool
}

func (c *Decimal) Scan(src any) error {
	switch src.(type) {
	case nil:
		*c = Decimal{}
		return nil
	case string, []byte, int64, float64, float32, uint64:
	default:
		return wrongType(src, TypeDecimal)
	}
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("%w: %v", ErrWrongType, err)
	}
	*c = Decimal{V: d, Valid: true}
	return nil
}

func (c *Decimal) Null() bool { return !c.Valid }

func (c *Decimal) String() string {
	if exp := c.V.Exponent(); exp < 0 {
		return c.V.StringFixed(-exp)
	}
	return c.V.String()
}

func (c *Decimal) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

func (c *Decimal) appendTo(b array.Builder) {
	b.(*array.StringBuilder).Append(c.String())
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a nullable point in time, rendered in UTC.
type Timestamp struct {
	V     time.Time
	Valid bool
}

func (c *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = Timestamp{}
		return nil
	case time.Time:
		*c = Timestamp{V: v, Valid: true}
		return nil
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	default:
		return wrongType(src, TypeTimestamp)
	}
}

func (c *Timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*c = Timestamp{V: t, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not a timestamp", ErrWrongType, s)
}

func (c *Timestamp) Null() bool     { return !c.Valid }
func (c *Timestamp) String() string { return c.V.UTC().Format(TimestampLayout) }

func (c *Timestamp) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

func (c *Timestamp) appendTo(b array.Builder) {
	b.(*array.StringBuilder).Append(c.String())
}

// JSON is a nullable nested JSON column decoded into the typed sub-record T.
// A SQL NULL and a JSON null both decode to absent.
type JSON[T any] struct {
	V     T
	Valid bool
}

func (c *JSON[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = JSON[T]{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWrongType, err)
		}
		raw = b
	default:
		return wrongType(src, TypeJSON)
	}

	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		*c = JSON[T]{}
		return nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrWrongType, err)
	}
	// String cannot report an error, so a value that will not encode back is refused here.
	if _, err := json.Marshal(v); err != nil {
		return fmt.Errorf("%w: %v", ErrWrongType, err)
	}
	*c = JSON[T]{V: v, Valid: true}
	return nil
}

func (c *JSON[T]) Null() bool { return !c.Valid }

func (c *JSON[T]) String() string {
	b, err := json.Marshal(c.V)
	if err != nil {
		return fmt.Sprintf("%+v", c.V)
	}
	return string(b)
}

func (c *JSON[T]) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.V)
}

func (c *JSON[T]) appendTo(b array.Builder) {
	b.(*array.StringBuilder).Append(c.String())
}

type xy struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point is a nullable 2-D point. It is read either from the store's text form "(x,y)"
// or from a {"x":..,"y":..} object, and always written as the object.
type Point struct {
	X, Y  float64
	Valid bool
}

func (c *Point) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = Point{}
		return nil
	case string:
		return c.parse([]byte(v))
	case []byte:
		return c.parse(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWrongType, err)
		}
		return c.parse(b)
	default:
		return wrongType(src, TypePoint)
	}
}

func (c *Point) parse(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var p xy
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("%w: %v", ErrWrongType, err)
		}
		*c = Point{X: p.X, Y: p.Y, Valid: true}
		return nil
	}

	var p pgtype.Point
	if err := p.Scan(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrWrongType, err)
	}
	if p.Status != pgtype.Present {
		*c = Point{}
		return nil
	}
	*c = Point{X: p.P.X, Y: p.P.Y, Valid: true}
	return nil
}

func (c *Point) Null() bool { return !c.Valid }

func (c *Point) String() string {
	b, _ := json.Marshal(xy{X: c.X, Y: c.Y})
	return string(b)
}

func (c *Point) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(xy{X: c.X, Y: c.Y})
}

func (c *Point) appendTo(b array.Builder) {
	b.(*array.StringBuilder).Append(c.String())
}
