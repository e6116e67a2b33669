package sqlparser

import (
	"strings"
)

// Statement is one parsed SQL statement.
type Statement interface {
	String() string
	statement()
}

// Query is a SELECT (possibly a set operation) with its trailing ORDER BY / LIMIT / OFFSET.
type Query struct {
	Body    SetExpr
	OrderBy []OrderItem
	Limit   Expr
	Offset  *Offset
}

// Offset keeps whether the caller wrote ROW or ROWS after the value.
type Offset struct {
	Value Expr
	Rows  string
}

// OtherStatement is any statement that is not a query. Only its leading keyword is kept;
// the rest of it is skipped unparsed.
type OtherStatement struct {
	Keyword string
}

func (*Query) statement()          {}
func (*OtherStatement) statement() {}

func (s *OtherStatement) String() string { return s.Keyword + " ..." }

func (q *Query) String() string {
	var b strings.Builder
	b.WriteString(q.Body.String())
	if len(q.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range q.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(o.String())
		}
	}
	if q.Limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(q.Limit.String())
	}
	if q.Offset != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(q.Offset.Value.String())
		if q.Offset.Rows != "" {
			b.WriteString(" " + q.Offset.Rows)
		}
	}
	return b.String()
}

// SetExpr is the body of a query: a SELECT, a parenthesised query or a set operation.
type SetExpr interface {
	String() string
	setExpr()
}

type Select struct {
	Distinct bool
	Items    []SelectItem
	From     []TableWithJoins
	Where    Expr
	GroupBy  []Expr
	Having   Expr
}

type SetOperation struct {
	Op    string
	All   bool
	Left  SetExpr
	Right SetExpr
}

type NestedQuery struct {
	Query *Query
}

func (*Select) setExpr()       {}
func (*SetOperation) setExpr() {}
func (*NestedQuery) setExpr()  {}

func (s *Select) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}
	for i, it := range s.Items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(it.String())
	}
	if len(s.From) > 0 {
		b.WriteString(" FROM ")
		for i, f := range s.From {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.String())
		}
	}
	if s.Where != nil {
		b.WriteString(" WHERE " + s.Where.String())
	}
	if len(s.GroupBy) > 0 {
		b.WriteString(" GROUP BY " + joinExprs(s.GroupBy))
	}
	if s.Having != nil {
		b.WriteString(" HAVING " + s.Having.String())
	}
	return b.String()
}

func (s *SetOperation) String() string {
	op := s.Op
	if s.All {
		op += " ALL"
	}
	return s.Left.String() + " " + op + " " + s.Right.String()
}

func (n *NestedQuery) String() string { return "(" + n.Query.String() + ")" }

type SelectItem struct {
	Expr  Expr
	Alias *Ident
}

func (s SelectItem) String() string {
	if s.Alias != nil {
		return s.Expr.String() + " AS " + s.Alias.String()
	}
	return s.Expr.String()
}

type OrderItem struct {
	Expr  Expr
	Dir   string
	Nulls string
}

func (o OrderItem) String() string {
	s := o.Expr.String()
	if o.Dir != "" {
		s += " " + o.Dir
	}
	if o.Nulls != "" {
		s += " NULLS " + o.Nulls
	}
	return s
}

type TableWithJoins struct {
	Relation TableFactor
	Joins    []Join
}

func (t TableWithJoins) String() string {
	var b strings.Builder
	b.WriteString(t.Relation.String())
	for _, j := range t.Joins {
		b.WriteString(" " + j.String())
	}
	return b.String()
}

// TableFactor is one source in a FROM list.
type TableFactor interface {
	String() string
	tableFactor()
}

type TableRef struct {
	Name  ObjectName
	Alias *Ident
}

type DerivedTable struct {
	Subquery *Query
	Alias    *Ident
}

type TableFunction struct {
	Call  *Function
	Alias *Ident
}

func (*TableRef) tableFactor()      {}
func (*DerivedTable) tableFactor()  {}
func (*TableFunction) tableFactor() {}

func (t *TableRef) String() string { return t.Name.String() + aliasString(t.Alias) }

func (t *DerivedTable) String() string {
	return "(" + t.Subquery.String() + ")" + aliasString(t.Alias)
}

func (t *TableFunction) String() string { return t.Call.String() + aliasString(t.Alias) }

func aliasString(a *Ident) string {
	if a == nil {
		return ""
	}
	return " AS " + a.String()
}

type Join struct {
	Kind     string
	Relation TableFactor
	On       Expr
	Using    []Ident
}

func (j Join) String() string {
	s := j.Kind + " " + j.Relation.String()
	if j.On != nil {
		s += " ON " + j.On.String()
	}
	if len(j.Using) > 0 {
		parts := make([]string, len(j.Using))
		for i, id := range j.Using {
			parts[i] = id.String()
		}
		s += " USING (" + strings.Join(parts, ", ") + ")"
	}
	return s
}

// Ident is a single identifier. Quote is zero for bare identifiers.
type Ident struct {
	Value string
	Quote rune
}

func (i Ident) String() string {
	if i.Quote == 0 {
		return i.Value
	}
	end := closingQuote(i.Quote)
	return string(i.Quote) + strings.ReplaceAll(i.Value, string(end), string(end)+string(end)) + string(end)
}

// Normalized folds a bare identifier to lower case the way the store resolves it;
// quoted identifiers are kept exactly.
func (i Ident) Normalized() string {
	if i.Quote == 0 {
		return strings.ToLower(i.Value)
	}
	return i.Value
}

// ObjectName is a possibly qualified name such as bookings.flights.
type ObjectName []Ident

func (n ObjectName) String() string {
	parts := make([]string, len(n))
	for i, id := range n {
		parts[i] = id.String()
	}
	return strings.Join(parts, ".")
}

// Base is the last, unqualified part of the name.
func (n ObjectName) Base() Ident {
	return n[len(n)-1]
}
