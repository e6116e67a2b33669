package sqlparser

// Subqueries returns the queries nested directly inside the expressions of q: scalar
// subqueries, IN (SELECT ...) and EXISTS. Queries nested inside those are not included;
// call Subqueries on each result to descend further.
func Subqueries(q *Query) []*Query {
	var out []*Query
	var visit func(Expr)
	visit = func(e Expr) {
		walkExpr(e, func(n Expr) bool {
			switch n := n.(type) {
			case *Subquery:
				out = append(out, n.Query)
				return false
			case *Exists:
				out = append(out, n.Subquery)
				return false
			case *InSubquery:
				visit(n.Expr)
				out = append(out, n.Subquery)
				return false
			}
			return true
		})
	}

	visitSetExpr(q.Body, visit)
	for _, o := range q.OrderBy {
		visit(o.Expr)
	}
	visit(q.Limit)
	if q.Offset != nil {
		visit(q.Offset.Value)
	}
	return out
}

func visitSetExpr(s SetExpr, visit func(Expr)) {
	switch s := s.(type) {
	case *Select:
		for _, it := range s.Items {
			visit(it.Expr)
		}
		for _, f := range s.From {
			visitFactor(f.Relation, visit)
			for _, j := range f.Joins {
				visitFactor(j.Relation, visit)
				visit(j.On)
			}
		}
		visit(s.Where)
		for _, g := range s.GroupBy {
			visit(g)
		}
		visit(s.Having)
	case *SetOperation:
		visitSetExpr(s.Left, visit)
		visitSetExpr(s.Right, visit)
	case *NestedQuery:
		visit(&Subquery{Query: s.Query})
	}
}

func visitFactor(f TableFactor, visit func(Expr)) {
	switch f := f.(type) {
	case *DerivedTable:
		visit(&Subquery{Query: f.Subquery})
	case *TableFunction:
		visit(f.Call)
	}
}

// walkExpr calls fn for e and, while fn returns true, for each of its children.
func walkExpr(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	switch e := e.(type) {
	case *Unary:
		walkExpr(e.Expr, fn)
	case *Binary:
		walkExpr(e.Left, fn)
		walkExpr(e.Right, fn)
	case *IsCheck:
		walkExpr(e.Expr, fn)
	case *InList:
		walkExpr(e.Expr, fn)
		for _, x := range e.List {
			walkExpr(x, fn)
		}
	case *InSubquery:
		walkExpr(e.Expr, fn)
	case *Between:
		walkExpr(e.Expr, fn)
		walkExpr(e.Low, fn)
		walkExpr(e.High, fn)
	case *Like:
		walkExpr(e.Expr, fn)
		walkExpr(e.Pattern, fn)
	case *Nested:
		walkExpr(e.Expr, fn)
	case *Tuple:
		for _, x := range e.Exprs {
			walkExpr(x, fn)
		}
	case *Function:
		for _, x := range e.Args {
			walkExpr(x, fn)
		}
	case *Cast:
		walkExpr(e.Expr, fn)
	case *PostgresCast:
		walkExpr(e.Expr, fn)
	case *Subscript:
		walkExpr(e.Expr, fn)
		walkExpr(e.Index, fn)
	case *Case:
		walkExpr(e.Operand, fn)
		for _, w := range e.Whens {
			walkExpr(w.Cond, fn)
			walkExpr(w.Result, fn)
		}
		walkExpr(e.Else, fn)
	}
}
