// Package sqlparser parses the read-only subset of SQL accepted from callers into an AST
// that can be inspected, rewritten and printed back as canonical SQL. Keywords are printed
// in upper case; identifiers, literals and function names are printed as written.
package sqlparser

import (
	"fmt"
	"strings"
)

// SyntaxError is returned for input that is not valid SQL. Message is the full text,
// including the position, e.g. "Expected: an SQL statement, found: foo at Line: 1, Column: 1".
type SyntaxError struct {
	Message string
	Line    int
	Column  int
}

func (e *SyntaxError) Error() string { return e.Message }

// words that can never be a bare identifier or an implicit alias
var reserved = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "GROUP": true, "HAVING": true, "ORDER": true,
	"BY": true, "LIMIT": true, "OFFSET": true, "AS": true, "ON": true, "JOIN": true, "INNER": true,
	"LEFT": true, "RIGHT": true, "FULL": true, "OUTER": true, "CROSS": true, "NATURAL": true,
	"USING": true, "UNION": true, "INTERSECT": true, "EXCEPT": true, "AND": true, "OR": true,
	"NOT": true, "IS": true, "NULL": true, "IN": true, "BETWEEN": true, "LIKE": true, "ILIKE": true,
	"CASE": true, "WHEN": true, "THEN": true, "ELSE": true, "END": true, "ALL": true,
	"DISTINCT": true, "TRUE": true, "FALSE": true, "FETCH": true, "WITH": true, "INTO": true,
	"EXISTS": true, "CAST": true, "ASC": true, "DESC": true, "WINDOW": true,
}

// leading keywords of statements that are recognised but never parsed further
var otherStatements = map[string]bool{
	"INSERT": true, "UPDATE": true, "DELETE": true, "MERGE": true, "UPSERT": true, "REPLACE": true,
	"CREATE": true, "DROP": true, "ALTER": true, "TRUNCATE": true, "RENAME": true, "COMMENT": true,
	"GRANT": true, "REVOKE": true, "COPY": true, "SET": true, "RESET": true, "SHOW": true,
	"EXPLAIN": true, "DESCRIBE": true, "DESC": true, "BEGIN": true, "START": true, "COMMIT": true,
	"ROLLBACK": true, "SAVEPOINT": true, "RELEASE": true, "VACUUM": true, "ANALYZE": true,
	"CALL": true, "DO": true, "LOCK": true, "REFRESH": true, "REINDEX": true, "CLUSTER": true,
	"DISCARD": true, "LISTEN": true, "NOTIFY": true, "UNLISTEN": true, "PREPARE": true,
	"EXECUTE": true, "DEALLOCATE": true, "DECLARE": true, "FETCH": true, "MOVE": true,
	"CLOSE": true, "WITH": true, "VALUES": true, "TABLE": true, "USE": true, "ATTACH": true,
	"DETACH": true, "PRAGMA": true, "KILL": true, "LOAD": true, "IMPORT": true, "EXPORT": true,
}

var typeContinuation = map[string]bool{
	"PRECISION": true, "VARYING": true, "WITH": true, "WITHOUT": true, "TIME": true, "ZONE": true,
}

var typedStringPrefixes = map[string]bool{
	"DATE": true, "TIME": true, "TIMESTAMP": true, "TIMESTAMPTZ": true, "INTERVAL": true,
}

// Parse splits sql into statements. Queries are parsed fully; any other statement is
// returned as an OtherStatement carrying only its leading keyword.
func Parse(sql string) ([]Statement, error) {
	toks, err := tokenize(sql)
	if err != nil {
		// an unterminated literal inside e.g. a DELETE is still a DELETE
		if len(toks) > 0 && toks[0].kind == tokWord && otherStatements[toks[0].upper] {
			return []Statement{&OtherStatement{Keyword: toks[0].upper}}, nil
		}
		return nil, err
	}

	p := &parser{toks: toks}
	var stmts []Statement
	expectSeparator := false
	for {
		for p.acceptOp(";") {
			expectSeparator = false
		}
		t := p.peek()
		if t.kind == tokEOF {
			return stmts, nil
		}
		if expectSeparator {
			return nil, p.expected("end of statement", t)
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		expectSeparator = true
	}
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+offset]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(keyword string) bool {
	if p.peek().is(keyword) {
		p.next()
		return true
	}
	return false
}

func (p *parser) acceptOp(op string) bool {
	if p.peek().isOp(op) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectKeyword(keyword string) error {
	if !p.accept(keyword) {
		return p.expected(keyword, p.peek())
	}
	return nil
}

func (p *parser) expectOp(op string) error {
	if !p.acceptOp(op) {
		return p.expected(op, p.peek())
	}
	return nil
}

func (p *parser) expected(what string, found token) error {
	if found.kind == tokEOF {
		return &SyntaxError{
			Message: fmt.Sprintf("Expected: %s, found: EOF", what),
			Line:    found.line,
			Column:  found.col,
		}
	}
	return &SyntaxError{
		Message: fmt.Sprintf("Expected: %s, found: %s at Line: %d, Column: %d", what, found, found.line, found.col),
		Line:    found.line,
		Column:  found.col,
	}
}

func (p *parser) parseStatement() (Statement, error) {
	t := p.peek()
	switch {
	case t.is("SELECT"), t.isOp("("):
		return p.parseQuery()
	case t.kind == tokWord && otherStatements[t.upper]:
		p.skipStatement()
		return &OtherStatement{Keyword: t.upper}, nil
	default:
		return nil, p.expected("an SQL statement", t)
	}
}

// skipStatement consumes tokens up to the next top-level semicolon.
func (p *parser) skipStatement() {
	depth := 0
	for {
		t := p.peek()
		switch {
		case t.kind == tokEOF:
			return
		case t.isOp("("):
			depth++
		case t.isOp(")"):
			depth--
		case t.isOp(";") && depth <= 0:
			return
		}
		p.next()
	}
}

func (p *parser) parseQuery() (*Query, error) {
	body, err := p.parseSetExpr()
	if err != nil {
		return nil, err
	}
	q := &Query{Body: body}

	if p.accept("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			item, err := p.parseOrderItem()
			if err != nil {
				return nil, err
			}
			q.OrderBy = append(q.OrderBy, item)
			if !p.acceptOp(",") {
				break
			}
		}
	}

	for {
		switch {
		case q.Limit == nil && p.accept("LIMIT"):
			if p.accept("ALL") {
				q.Limit = &KeywordLit{Keyword: "ALL"}
				continue
			}
			e, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			q.Limit = e
		case q.Offset == nil && p.accept("OFFSET"):
			e, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			q.Offset = &Offset{Value: e}
			if t := p.peek(); t.is("ROW") || t.is("ROWS") {
				q.Offset.Rows = p.next().upper
			}
		default:
			return q, nil
		}
	}
}

func (p *parser) parseOrderItem() (OrderItem, error) {
	e, err := p.parseExpr(0)
	if err != nil {
		return OrderItem{}, err
	}
	item := OrderItem{Expr: e}
	if t := p.peek(); t.is("ASC") || t.is("DESC") {
		item.Dir = p.next().upper
	}
	if p.accept("NULLS") {
		t := p.next()
		if !t.is("FIRST") && !t.is("LAST") {
			return OrderItem{}, p.expected("FIRST or LAST after NULLS", t)
		}
		item.Nulls = t.upper
	}
	return item, nil
}

func (p *parser) parseSetExpr() (SetExpr, error) {
	left, err := p.parseSetPrimary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if !t.is("UNION") && !t.is("INTERSECT") && !t.is("EXCEPT") {
			return left, nil
		}
		p.next()
		all := p.accept("ALL")
		if !all {
			p.accept("DISTINCT")
		}
		right, err := p.parseSetPrimary()
		if err != nil {
			return nil, err
		}
		left = &SetOperation{Op: t.upper, All: all, Left: left, Right: right}
	}
}

func (p *parser) parseSetPrimary() (SetExpr, error) {
	t := p.peek()
	switch {
	case t.is("SELECT"):
		return p.parseSelect()
	case t.isOp("("):
		p.next()
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &NestedQuery{Query: q}, nil
	default:
		return nil, p.expected("SELECT, VALUES, or a subquery in the query body", t)
	}
}

func (p *parser) parseSelect() (*Select, error) {
	p.next()
	s := &Select{}
	if p.accept("DISTINCT") {
		s.Distinct = true
	} else {
		p.accept("ALL")
	}

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
		if !p.acceptOp(",") {
			break
		}
	}

	if p.accept("FROM") {
		for {
			t, err := p.parseTableWithJoins()
			if err != nil {
				return nil, err
			}
			s.From = append(s.From, t)
			if !p.acceptOp(",") {
				break
			}
		}
	}

	if p.accept("WHERE") {
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		s.Where = e
	}

	if p.accept("GROUP") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		list, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		s.GroupBy = list
	}

	if p.accept("HAVING") {
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		s.Having = e
	}

	return s, nil
}

func (p *parser) parseSelectItem() (SelectItem, error) {
	if p.acceptOp("*") {
		return SelectItem{Expr: &Wildcard{}}, nil
	}
	e, err := p.parseExpr(0)
	if err != nil {
		return SelectItem{}, err
	}
	if _, ok := e.(*Wildcard); ok {
		return SelectItem{Expr: e}, nil
	}
	alias, err := p.parseAlias()
	if err != nil {
		return SelectItem{}, err
	}
	return SelectItem{Expr: e, Alias: alias}, nil
}

func (p *parser) parseAlias() (*Ident, error) {
	if p.accept("AS") {
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	t := p.peek()
	if t.kind == tokQuotedIdent || t.kind == tokWord && !reserved[t.upper] {
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	return nil, nil
}

func (p *parser) parseIdent() (Ident, error) {
	t := p.peek()
	switch {
	case t.kind == tokQuotedIdent:
		p.next()
		return Ident{Value: t.text, Quote: t.quote}, nil
	case t.kind == tokWord && !reserved[t.upper]:
		p.next()
		return Ident{Value: t.text}, nil
	default:
		return Ident{}, p.expected("identifier", t)
	}
}

func (p *parser) parseObjectName() (ObjectName, error) {
	id, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	name := ObjectName{id}
	for p.acceptOp(".") {
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		name = append(name, id)
	}
	return name, nil
}

func (p *parser) parseTableWithJoins() (TableWithJoins, error) {
	rel, err := p.parseTableFactor()
	if err != nil {
		return TableWithJoins{}, err
	}
	twj := TableWithJoins{Relation: rel}

	for {
		kind, ok, err := p.parseJoinKind()
		if err != nil {
			return TableWithJoins{}, err
		}
		if !ok {
			return twj, nil
		}

		factor, err := p.parseTableFactor()
		if err != nil {
			return TableWithJoins{}, err
		}
		j := Join{Kind: kind, Relation: factor}

		switch {
		case p.accept("ON"):
			e, err := p.parseExpr(0)
			if err != nil {
				return TableWithJoins{}, err
			}
			j.On = e
		case p.accept("USING"):
			if err := p.expectOp("("); err != nil {
				return TableWithJoins{}, err
			}
			for {
				id, err := p.parseIdent()
				if err != nil {
					return TableWithJoins{}, err
				}
				j.Using = append(j.Using, id)
				if !p.acceptOp(",") {
					break
				}
			}
			if err := p.expectOp(")"); err != nil {
				return TableWithJoins{}, err
			}
		case strings.HasPrefix(kind, "CROSS"), strings.HasPrefix(kind, "NATURAL"):
		default:
			return TableWithJoins{}, p.expected("ON, or USING after JOIN", p.peek())
		}
		twj.Joins = append(twj.Joins, j)
	}
}

var joinWords = map[string]bool{
	"NATURAL": true, "INNER": true, "LEFT": true, "RIGHT": true, "FULL": true, "OUTER": true, "CROSS": true,
}

func (p *parser) parseJoinKind() (string, bool, error) {
	var words []string
	for t := p.peek(); t.kind == tokWord && joinWords[t.upper]; t = p.peek() {
		words = append(words, p.next().upper)
	}
	if !p.accept("JOIN") {
		if len(words) == 0 {
			return "", false, nil
		}
		return "", false, p.expected("JOIN", p.peek())
	}
	return strings.Join(append(words, "JOIN"), " "), true, nil
}

func (p *parser) parseTableFactor() (TableFactor, error) {
	if p.acceptOp("(") {
		if t := p.peek(); !t.is("SELECT") && !t.isOp("(") {
			return nil, p.expected("SELECT or a subquery", t)
		}
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		alias, err := p.parseAlias()
		if err != nil {
			return nil, err
		}
		return &DerivedTable{Subquery: q, Alias: alias}, nil
	}

	name, err := p.parseObjectName()
	if err != nil {
		return nil, err
	}
	if p.peek().isOp("(") {
		call, err := p.parseFunction(name)
		if err != nil {
			return nil, err
		}
		alias, err := p.parseAlias()
		if err != nil {
			return nil, err
		}
		return &TableFunction{Call: call, Alias: alias}, nil
	}
	alias, err := p.parseAlias()
	if err != nil {
		return nil, err
	}
	return &TableRef{Name: name, Alias: alias}, nil
}

func (p *parser) parseExprList() ([]Expr, error) {
	var list []Expr
	for {
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if !p.acceptOp(",") {
			return list, nil
		}
	}
}

// parseDataType reads a type name such as int, numeric(10,2), timestamp with time zone
// or text[].
func (p *parser) parseDataType() (string, error) {
	t := p.next()
	if t.kind != tokWord && t.kind != tokQuotedIdent {
		return "", p.expected("a data type name", t)
	}
	parts := []string{t.text}
	for n := p.peek(); n.kind == tokWord && typeContinuation[n.upper]; n = p.peek() {
		parts = append(parts, p.next().text)
	}
	s := strings.Join(parts, " ")

	if p.acceptOp("(") {
		var args []string
		for {
			n := p.next()
			if n.kind != tokNumber {
				return "", p.expected("a type modifier", n)
			}
			args = append(args, n.text)
			if !p.acceptOp(",") {
				break
			}
		}
		if err := p.expectOp(")"); err != nil {
			return "", err
		}
		s += "(" + strings.Join(args, ", ") + ")"
	}
	for p.acceptOp("[") {
		if err := p.expectOp("]"); err != nil {
			return "", err
		}
		s += "[]"
	}
	return s, nil
}
