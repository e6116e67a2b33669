package types

// Row is one raw result row keyed by column name, as returned by a connector.
// Values are dynamically typed: string, []byte, int64, float64, bool, time.Time or nil.
type Row map[string]any

type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// TableCheck compares one catalog entity against what the store actually has.
type TableCheck struct {
	Name           string   `json:"name"`
	Present        bool     `json:"present"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

// NewRow copies a scanned map into a Row. Drivers hand back text columns as []byte;
// those are turned into strings so every connector yields the same value kinds.
func NewRow(m map[string]any) Row {
	row := make(Row, len(m))
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[k] = v
	}
	return row
}
