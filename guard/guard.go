// Package guard makes caller SQL safe to run against the store. It parses the text,
// accepts only a single SELECT over one whitelisted table, bounds the number of rows the
// statement can return and prints it back as canonical SQL.
package guard

import (
	"errors"
	"strconv"

	"github.com/melkeydev/demodb-query/sqlparser"
)

// DefaultMaxRows is the row cap used when none is configured.
const DefaultMaxRows uint32 = 10

// Whitelist reports whether a table may be queried. *catalog.Catalog satisfies it.
type Whitelist interface {
	Has(name string) bool
}

// Dialect names the SQL dialect of the store the guarded statements are sent to.
type Dialect string

// DialectMySQL rejects statements whose canonical text MySQL would read differently.
const DialectMySQL Dialect = "mysql"

type Guard struct {
	tables  Whitelist
	maxRows uint32
	clamp   bool
	dialect Dialect
}

type Option func(*Guard)

// WithDialect sets the dialect of the store. Any value other than DialectMySQL leaves
// the canonical output unchecked.
func WithDialect(d Dialect) Option {
	return func(g *Guard) {
		g.dialect = d
	}
}

// WithClampLimit makes the guard replace an explicit LIMIT that exceeds the row cap, or
// that is not a plain number, with the cap. By default an explicit LIMIT is kept as written.
func WithClampLimit(clamp bool) Option {
	return func(g *Guard) {
		g.clamp = clamp
	}
}

func New(tables Whitelist, maxRows uint32, opts ...Option) *Guard {
	if maxRows == 0 {
		maxRows = DefaultMaxRows
	}
	g := &Guard{tables: tables, maxRows: maxRows}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) MaxRows() uint32 { return g.maxRows }

// Bounded is a validated, row-capped statement and the table it reads from.
type Bounded struct {
	SQL   string
	Table string
}

// ValidateAndBound validates sql against tables and returns it in canonical form with a
// row cap of maxRows injected when it has no LIMIT.
func ValidateAndBound(sql string, tables Whitelist, maxRows uint32) (string, error) {
	return New(tables, maxRows).ValidateAndBound(sql)
}

func (g *Guard) ValidateAndBound(sql string) (string, error) {
	b, err := g.Bound(sql)
	if err != nil {
		return "", err
	}
	return b.SQL, nil
}

// Bound is ValidateAndBound that also reports which table the statement reads from.
func (g *Guard) Bound(sql string) (*Bounded, error) {
	stmts, err := sqlparser.Parse(sql)
	if err != nil {
		var syn *sqlparser.SyntaxError
		if errors.As(err, &syn) {
			return nil, syntaxError(syn.Message)
		}
		return nil, syntaxError(err.Error())
	}

	switch len(stmts) {
	case 0:
		return nil, unsupported("empty statement")
	case 1:
	default:
		return nil, unsupported("expected a single statement, got %d", len(stmts))
	}

	q, ok := stmts[0].(*sqlparser.Query)
	if !ok {
		return nil, unsupported("%s statements are not allowed", stmts[0].(*sqlparser.OtherStatement).Keyword)
	}

	table, err := g.checkQuery(q)
	if err != nil {
		return nil, err
	}

	g.bound(q)
	out := q.String()
	if g.dialect == DialectMySQL {
		hazard, err := sqlparser.MySQLHazard(out)
		if err != nil {
			return nil, syntaxError(err.Error())
		}
		if hazard != "" {
			return nil, unsupported("%s is not allowed on mysql", hazard)
		}
	}
	return &Bounded{SQL: out, Table: table}, nil
}

// Default returns the statement that reads the first rows of table.
func (g *Guard) Default(table string) (*Bounded, error) {
	if !g.tables.Has(table) {
		return nil, unknownTable("%s", table)
	}
	q := &sqlparser.Query{
		Body: &sqlparser.Select{
			Items: []sqlparser.SelectItem{{Expr: &sqlparser.Wildcard{}}},
			From: []sqlparser.TableWithJoins{{
				Relation: &sqlparser.TableRef{Name: sqlparser.ObjectName{{Value: table}}},
			}},
		},
	}
	g.bound(q)
	return &Bounded{SQL: q.String(), Table: table}, nil
}

// checkQuery accepts a plain single-table SELECT whose nested subqueries are plain
// single-table SELECTs as well, and returns the table it reads from.
func (g *Guard) checkQuery(q *sqlparser.Query) (string, error) {
	sel, ok := q.Body.(*sqlparser.Select)
	if !ok {
		return "", unknownTable("query body is not a plain SELECT")
	}
	if len(sel.From) != 1 {
		if len(sel.From) == 0 {
			return "", unknownTable("query has no FROM clause")
		}
		return "", unknownTable("query reads from %d sources", len(sel.From))
	}
	from := sel.From[0]
	if len(from.Joins) > 0 {
		return "", unknownTable("joins are not supported")
	}
	ref, ok := from.Relation.(*sqlparser.TableRef)
	if !ok {
		return "", unknownTable("FROM %s is not a table", from.Relation)
	}

	table := ref.Name.Base().Normalized()
	if !g.tables.Has(table) {
		return "", unknownTable("%s", ref.Name)
	}

	for _, sub := range sqlparser.Subqueries(q) {
		if _, err := g.checkQuery(sub); err != nil {
			return "", err
		}
	}
	return table, nil
}

// bound injects the row cap at the top level only. LIMIT ALL and LIMIT NULL count as no
// limit. With clamping on, any limit that is not a plain number within the cap is
// replaced by the cap.
func (g *Guard) bound(q *sqlparser.Query) {
	rowCap := &sqlparser.NumberLit{Text: strconv.FormatUint(uint64(g.maxRows), 10)}
	if unlimited(q.Limit) {
		q.Limit = rowCap
		return
	}
	if g.clamp && !withinCap(q.Limit, g.maxRows) {
		q.Limit = rowCap
	}
}

func unlimited(limit sqlparser.Expr) bool {
	switch limit := limit.(type) {
	case nil:
		return true
	case *sqlparser.KeywordLit:
		return limit.Keyword == "ALL" || limit.Keyword == "NULL"
	}
	return false
}

// withinCap reports whether limit is a numeric literal no larger than maxRows. Literals
// too large for a uint64 are over the cap.
func withinCap(limit sqlparser.Expr, maxRows uint32) bool {
	n, ok := limit.(*sqlparser.NumberLit)
	if !ok {
		return false
	}
	v, err := strconv.ParseUint(n.Text, 10, 64)
	return err == nil && v <= uint64(maxRows)
}
