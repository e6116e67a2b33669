package guard

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is returned when the SQL text could not be parsed.
	ErrSyntax = errors.New("sql parse error")

	// ErrUnsupportedStatement is returned for anything that parsed but is not a single
	// plain SELECT: writes, DDL, CTEs and multi-statement input.
	ErrUnsupportedStatement = errors.New("unsupported query type")

	// ErrUnknownTable is returned when a SELECT does not read from exactly one catalog table.
	ErrUnknownTable = errors.New("invalid query: unsupported table")
)

// QueryError is the error returned by the guard. Kind is one of the sentinel errors above
// and can be matched with errors.Is. For syntax errors Message is the parser's text.
type QueryError struct {
	Kind    error
	Message string
}

func (e *QueryError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *QueryError) Unwrap() error {
	return e.Kind
}

func syntaxError(msg string) error {
	return &QueryError{Kind: ErrSyntax, Message: msg}
}

func unsupported(format string, args ...any) error {
	return &QueryError{Kind: ErrUnsupportedStatement, Message: fmt.Sprintf(format, args...)}
}

func unknownTable(format string, args ...any) error {
	return &QueryError{Kind: ErrUnknownTable, Message: fmt.Sprintf(format, args...)}
}
