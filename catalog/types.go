package catalog

import "github.com/apache/arrow-go/v18/arrow"

// LogicalType is the shape of one output column, independent of the store's own type names.
type LogicalType string

const (
	TypeText      LogicalType = "text"
	TypeInt32     LogicalType = "int32"
	TypeJSON      LogicalType = "json"
	TypeDecimal   LogicalType = "decimal"
	TypeTimestamp LogicalType = "timestamp"
	TypePoint     LogicalType = "point"
)

// ArrowType returns the columnar type the column is stored as. Only int32 columns keep a
// numeric type; decimals, timestamps and nested JSON are stored as their string forms.
func (t LogicalType) ArrowType() arrow.DataType {
	if t == TypeInt32 {
		return arrow.PrimitiveTypes.Int32
	}
	return arrow.BinaryTypes.String
}

// ColumnInfo describes one column of an entity without exposing its record type.
type ColumnInfo struct {
	Name     string      `json:"name"`
	Type     LogicalType `json:"type"`
	Nullable bool        `json:"nullable"`
}
