package sqlparser

import (
	"fmt"
	"strings"
)

// MySQLHazard returns a description of the first token in sql that MySQL would read
// differently from the canonical form, or "" when there is none. Backslashes inside
// quoted strings and identifiers start escape sequences in MySQL's default mode, and
// '#' begins a line comment, so the JSON path operators cannot be sent to it.
func MySQLHazard(sql string) (string, error) {
	tokens, err := tokenize(sql)
	if err != nil {
		return "", err
	}
	for _, t := range tokens {
		switch t.kind {
		case tokString, tokQuotedIdent:
			if strings.ContainsRune(t.text, '\\') {
				return fmt.Sprintf("backslash in quoted text %s at line %d, column %d", t, t.line, t.col), nil
			}
		case tokOp:
			if strings.HasPrefix(t.text, "#") {
				return fmt.Sprintf("operator %s at line %d, column %d", t.text, t.line, t.col), nil
			}
		}
	}
	return "", nil
}
