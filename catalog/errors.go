package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is matched by every row decoding failure.
	ErrDecode = errors.New("decode error")

	// ErrMissingValue indicates a required column was absent or NULL.
	ErrMissingValue = errors.New("required value is missing")

	// ErrWrongType indicates the store returned a value the column cannot interpret.
	ErrWrongType = errors.New("unexpected value type")
)

// DecodeError reports which row and column of a result set could not be decoded.
type DecodeError struct {
	Table  string
	Row    int
	Column string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s row %d column %s: %v", e.Table, e.Row, e.Column, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

func wrongType(src any, want LogicalType) error {
	return fmt.Errorf("%w: cannot read %T as %s", ErrWrongType, src, want)
}
