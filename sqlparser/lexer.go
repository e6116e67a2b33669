package sqlparser

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokQuotedIdent
	tokString
	tokNumber
	tokPlaceholder
	tokOp
)

// token is one lexical unit. For words, upper holds the upper-cased text used for
// keyword matching while text keeps what the caller wrote.
type token struct {
	kind  tokenKind
	text  string
	upper string
	quote rune
	line  int
	col   int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "EOF"
	case tokString:
		return "'" + t.text + "'"
	case tokQuotedIdent:
		return string(t.quote) + t.text + string(closingQuote(t.quote))
	default:
		return t.text
	}
}

func (t token) is(keyword string) bool {
	return t.kind == tokWord && t.upper == keyword
}

func (t token) isOp(op string) bool {
	return t.kind == tokOp && t.text == op
}

func closingQuote(q rune) rune {
	if q == '[' {
		return ']'
	}
	return q
}

// multi-character operators, longest first
var operators = []string{
	"->>", "#>>",
	"<=", ">=", "<>", "!=", "||", "::", "->", "#>", "@>", "<@", "~*", "!~",
	"=", "<", ">", "+", "-", "*", "/", "%", "(", ")", ",", ".", ";", "[", "]", "~", "^",
}

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
}

func tokenize(sql string) ([]token, error) {
	l := &lexer{src: []rune(sql), line: 1, col: 1}
	var out []token
	for {
		tok, err := l.next()
		if err != nil {
			return out, err
		}
		out = append(out, tok)
		if tok.kind == tokEOF {
			return out, nil
		}
	}
}

func (l *lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...) + fmt.Sprintf(" at Line: %d, Column: %d", line, col),
		Line:    line,
		Column:  col,
	}
}

func (l *lexer) skipSpaceAndComments() error {
	for l.pos < len(l.src) {
		r := l.peek(0)
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '-' && l.peek(1) == '-':
			for l.pos < len(l.src) && l.peek(0) != '\n' {
				l.advance()
			}
		case r == '/' && l.peek(1) == '*':
			line, col := l.line, l.col
			l.advance()
			l.advance()
			for {
				if l.pos >= len(l.src) {
					return l.errorf(line, col, "Unterminated multi-line comment")
				}
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) next() (token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token{}, err
	}

	line, col := l.line, l.col
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, line: line, col: col}, nil
	}

	r := l.peek(0)
	switch {
	case isIdentStart(r):
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(l.peek(0)) {
			l.advance()
		}
		text := string(l.src[start:l.pos])
		return token{kind: tokWord, text: text, upper: strings.ToUpper(text), line: line, col: col}, nil

	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peek(1))):
		return l.number(line, col), nil

	case r == '\'':
		s, err := l.quoted('\'', line, col)
		if err != nil {
			return token{}, err
		}
		return token{kind: tokString, text: s, line: line, col: col}, nil

	case r == '"' || r == '`':
		s, err := l.quoted(r, line, col)
		if err != nil {
			return token{}, err
		}
		return token{kind: tokQuotedIdent, text: s, quote: r, line: line, col: col}, nil

	case r == '$' && unicode.IsDigit(l.peek(1)):
		start := l.pos
		l.advance()
		for l.pos < len(l.src) && unicode.IsDigit(l.peek(0)) {
			l.advance()
		}
		return token{kind: tokPlaceholder, text: string(l.src[start:l.pos]), line: line, col: col}, nil

	case r == '?':
		l.advance()
		return token{kind: tokPlaceholder, text: "?", line: line, col: col}, nil
	}

	rest := string(l.src[l.pos:min(l.pos+3, len(l.src))])
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			for range []rune(op) {
				l.advance()
			}
			return token{kind: tokOp, text: op, line: line, col: col}, nil
		}
	}

	return token{}, l.errorf(line, col, "Unexpected character '%c'", r)
}

func (l *lexer) number(line, col int) token {
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek(0)) {
		l.advance()
	}
	if l.peek(0) == '.' && unicode.IsDigit(l.peek(1)) || l.peek(0) == '.' && l.pos > start {
		l.advance()
		for l.pos < len(l.src) && unicode.IsDigit(l.peek(0)) {
			l.advance()
		}
	}
	if e := l.peek(0); e == 'e' || e == 'E' {
		sign := l.peek(1)
		if unicode.IsDigit(sign) || (sign == '+' || sign == '-') && unicode.IsDigit(l.peek(2)) {
			l.advance()
			if sign == '+' || sign == '-' {
				l.advance()
			}
			for l.pos < len(l.src) && unicode.IsDigit(l.peek(0)) {
				l.advance()
			}
		}
	}
	return token{kind: tokNumber, text: string(l.src[start:l.pos]), line: line, col: col}
}

// quoted reads a quoted string or identifier; a doubled quote stands for itself.
func (l *lexer) quoted(q rune, line, col int) (string, error) {
	l.advance()
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			if q == '\'' {
				return "", l.errorf(line, col, "Unterminated string literal")
			}
			return "", l.errorf(line, col, "Expected close delimiter '%c' before EOF", q)
		}
		r := l.advance()
		if r == q {
			if l.peek(0) == q {
				l.advance()
				b.WriteRune(q)
				continue
			}
			return b.String(), nil
		}
		b.WriteRune(r)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '$'
}
