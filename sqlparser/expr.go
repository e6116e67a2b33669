package sqlparser

import (
	"strings"
)

// Expr is any scalar expression.
type Expr interface {
	String() string
	expr()
}

type (
	// Identifier is a column reference, possibly qualified.
	Identifier struct {
		Name ObjectName
	}

	// Wildcard is * or qualifier.*.
	Wildcard struct {
		Qualifier ObjectName
	}

	NumberLit struct {
		Text string
	}

	StringLit struct {
		Value string
	}

	// KeywordLit is NULL, TRUE, FALSE or ALL (as in LIMIT ALL).
	KeywordLit struct {
		Keyword string
	}

	Placeholder struct {
		Text string
	}

	// TypedString is a literal prefixed by its type, e.g. DATE '2017-08-15'.
	TypedString struct {
		Type  string
		Value string
	}

	Unary struct {
		Op   string
		Expr Expr
	}

	Binary struct {
		Left  Expr
		Op    string
		Right Expr
	}

	// IsCheck is expr IS [NOT] NULL|TRUE|FALSE.
	IsCheck struct {
		Expr Expr
		Not  bool
		What string
	}

	InList struct {
		Expr Expr
		Not  bool
		List []Expr
	}

	InSubquery struct {
		Expr     Expr
		Not      bool
		Subquery *Query
	}

	Between struct {
		Expr      Expr
		Not       bool
		Low, High Expr
	}

	Like struct {
		Expr    Expr
		Not     bool
		Op      string
		Pattern Expr
	}

	Nested struct {
		Expr Expr
	}

	Tuple struct {
		Exprs []Expr
	}

	Subquery struct {
		Query *Query
	}

	Exists struct {
		Subquery *Query
	}

	Function struct {
		Name     ObjectName
		Distinct bool
		Args     []Expr
	}

	Cast struct {
		Expr Expr
		Type string
	}

	// PostgresCast is the expr::type form.
	PostgresCast struct {
		Expr Expr
		Type string
	}

	Subscript struct {
		Expr  Expr
		Index Expr
	}

	Case struct {
		Operand Expr
		Whens   []When
		Else    Expr
	}

	When struct {
		Cond   Expr
		Result Expr
	}
)

func (*Identifier) expr()   {}
func (*Wildcard) expr()     {}
func (*NumberLit) expr()    {}
func (*StringLit) expr()    {}
func (*KeywordLit) expr()   {}
func (*Placeholder) expr()  {}
func (*TypedString) expr()  {}
func (*Unary) expr()        {}
func (*Binary) expr()       {}
func (*IsCheck) expr()      {}
func (*InList) expr()       {}
func (*InSubquery) expr()   {}
func (*Between) expr()      {}
func (*Like) expr()         {}
func (*Nested) expr()       {}
func (*Tuple) expr()        {}
func (*Subquery) expr()     {}
func (*Exists) expr()       {}
func (*Function) expr()     {}
func (*Cast) expr()         {}
func (*PostgresCast) expr() {}
func (*Subscript) expr()    {}
func (*Case) expr()         {}

func (e *Identifier) String() string { return e.Name.String() }

func (e *Wildcard) String() string {
	if len(e.Qualifier) == 0 {
		return "*"
	}
	return e.Qualifier.String() + ".*"
}

func (e *NumberLit) String() string   { return e.Text }
func (e *StringLit) String() string   { return quoteString(e.Value) }
func (e *KeywordLit) String() string  { return e.Keyword }
func (e *Placeholder) String() string { return e.Text }

func (e *TypedString) String() string { return e.Type + " " + quoteString(e.Value) }

func (e *Unary) String() string {
	inner := e.Expr.String()
	if e.Op == "NOT" {
		return "NOT " + inner
	}
	// keep "- -1" from turning into a line comment
	if strings.HasPrefix(inner, "-") {
		return e.Op + " " + inner
	}
	return e.Op + inner
}

func (e *Binary) String() string {
	return e.Left.String() + " " + e.Op + " " + e.Right.String()
}

func (e *IsCheck) String() string {
	if e.Not {
		return e.Expr.String() + " IS NOT " + e.What
	}
	return e.Expr.String() + " IS " + e.What
}

func (e *InList) String() string {
	return e.Expr.String() + not(e.Not) + " IN (" + joinExprs(e.List) + ")"
}

func (e *InSubquery) String() string {
	return e.Expr.String() + not(e.Not) + " IN (" + e.Subquery.String() + ")"
}

func (e *Between) String() string {
	return e.Expr.String() + not(e.Not) + " BETWEEN " + e.Low.String() + " AND " + e.High.String()
}

func (e *Like) String() string {
	return e.Expr.String() + not(e.Not) + " " + e.Op + " " + e.Pattern.String()
}

func (e *Nested) String() string   { return "(" + e.Expr.String() + ")" }
func (e *Tuple) String() string    { return "(" + joinExprs(e.Exprs) + ")" }
func (e *Subquery) String() string { return "(" + e.Query.String() + ")" }
func (e *Exists) String() string   { return "EXISTS (" + e.Subquery.String() + ")" }

func (e *Function) String() string {
	var b strings.Builder
	b.WriteString(e.Name.String())
	b.WriteByte('(')
	if e.Distinct {
		b.WriteString("DISTINCT ")
	}
	b.WriteString(joinExprs(e.Args))
	b.WriteByte(')')
	return b.String()
}

func (e *Cast) String() string { return "CAST(" + e.Expr.String() + " AS " + e.Type + ")" }

func (e *PostgresCast) String() string { return e.Expr.String() + "::" + e.Type }

func (e *Subscript) String() string { return e.Expr.String() + "[" + e.Index.String() + "]" }

func (e *Case) String() string {
	var b strings.Builder
	b.WriteString("CASE")
	if e.Operand != nil {
		b.WriteString(" " + e.Operand.String())
	}
	for _, w := range e.Whens {
		b.WriteString(" WHEN " + w.Cond.String() + " THEN " + w.Result.String())
	}
	if e.Else != nil {
		b.WriteString(" ELSE " + e.Else.String())
	}
	b.WriteString(" END")
	return b.String()
}

func not(n bool) string {
	if n {
		return " NOT"
	}
	return ""
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
