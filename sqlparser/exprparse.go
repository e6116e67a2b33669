package sqlparser

const (
	precOr        = 5
	precAnd       = 10
	precNot       = 15
	precIs        = 17
	precLike      = 19
	precCmp       = 20
	precOther     = 25
	precAdd       = 30
	precMul       = 40
	precPow       = 45
	precUnary     = 50
	precCast      = 60
	precSubscript = 70
)

var infixOps = map[string]int{
	"=": precCmp, "<>": precCmp, "!=": precCmp, "<": precCmp, ">": precCmp, "<=": precCmp, ">=": precCmp,
	"||": precOther, "->": precOther, "->>": precOther, "#>": precOther, "#>>": precOther,
	"@>": precOther, "<@": precOther, "~": precOther, "~*": precOther, "!~": precOther,
	"+": precAdd, "-": precAdd,
	"*": precMul, "/": precMul, "%": precMul,
	"^":  precPow,
	"::": precCast,
	"[":  precSubscript,
}

// parseExpr parses an expression whose operators all bind tighter than minPrec.
func (p *parser) parseExpr(minPrec int) (Expr, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		prec := p.infixPrecedence()
		if prec <= minPrec {
			return left, nil
		}
		left, err = p.parseInfix(left, prec)
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) infixPrecedence() int {
	t := p.peek()
	switch t.kind {
	case tokOp:
		return infixOps[t.text]
	case tokWord:
		switch t.upper {
		case "OR":
			return precOr
		case "AND":
			return precAnd
		case "IS":
			return precIs
		case "IN", "BETWEEN", "LIKE", "ILIKE":
			return precLike
		case "NOT":
			switch p.peekAt(1).upper {
			case "IN", "BETWEEN", "LIKE", "ILIKE":
				return precLike
			}
		}
	}
	return 0
}

func (p *parser) parseInfix(left Expr, prec int) (Expr, error) {
	t := p.next()
	switch {
	case t.is("OR"), t.is("AND"):
		right, err := p.parseExpr(prec)
		if err != nil {
			return nil, err
		}
		return &Binary{Left: left, Op: t.upper, Right: right}, nil

	case t.is("IS"):
		return p.parseIs(left)

	case t.is("NOT"):
		return p.parseNegatable(left, true, p.next())

	case t.kind == tokWord:
		return p.parseNegatable(left, false, t)

	case t.isOp("::"):
		typ, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		return &PostgresCast{Expr: left, Type: typ}, nil

	case t.isOp("["):
		idx, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectOp("]"); err != nil {
			return nil, err
		}
		return &Subscript{Expr: left, Index: idx}, nil

	default:
		right, err := p.parseExpr(prec)
		if err != nil {
			return nil, err
		}
		return &Binary{Left: left, Op: t.text, Right: right}, nil
	}
}

func (p *parser) parseIs(left Expr) (Expr, error) {
	not := p.accept("NOT")
	t := p.peek()
	switch {
	case t.is("NULL"), t.is("TRUE"), t.is("FALSE"):
		p.next()
		return &IsCheck{Expr: left, Not: not, What: t.upper}, nil
	case t.is("DISTINCT"):
		p.next()
		if err := p.expectKeyword("FROM"); err != nil {
			return nil, err
		}
		right, err := p.parseExpr(precIs)
		if err != nil {
			return nil, err
		}
		op := "IS DISTINCT FROM"
		if not {
			op = "IS NOT DISTINCT FROM"
		}
		return &Binary{Left: left, Op: op, Right: right}, nil
	default:
		return nil, p.expected("[NOT] NULL or TRUE|FALSE or [NOT] DISTINCT FROM after IS", t)
	}
}

func (p *parser) parseNegatable(left Expr, not bool, kw token) (Expr, error) {
	switch {
	case kw.is("IN"):
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		if p.peek().is("SELECT") {
			q, err := p.parseQuery()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return &InSubquery{Expr: left, Not: not, Subquery: q}, nil
		}
		list, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &InList{Expr: left, Not: not, List: list}, nil

	case kw.is("BETWEEN"):
		low, err := p.parseExpr(precLike)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("AND"); err != nil {
			return nil, err
		}
		high, err := p.parseExpr(precLike)
		if err != nil {
			return nil, err
		}
		return &Between{Expr: left, Not: not, Low: low, High: high}, nil

	case kw.is("LIKE"), kw.is("ILIKE"):
		pattern, err := p.parseExpr(precLike)
		if err != nil {
			return nil, err
		}
		return &Like{Expr: left, Not: not, Op: kw.upper, Pattern: pattern}, nil

	default:
		return nil, p.expected("IN, BETWEEN, LIKE or ILIKE", kw)
	}
}

func (p *parser) parsePrefix() (Expr, error) {
	t := p.peek()
	switch {
	case t.kind == tokNumber:
		p.next()
		return &NumberLit{Text: t.text}, nil

	case t.kind == tokString:
		p.next()
		return &StringLit{Value: t.text}, nil

	case t.kind == tokPlaceholder:
		p.next()
		return &Placeholder{Text: t.text}, nil

	case t.is("NULL"), t.is("TRUE"), t.is("FALSE"):
		p.next()
		return &KeywordLit{Keyword: t.upper}, nil

	case t.is("NOT"):
		p.next()
		e, err := p.parseExpr(precNot)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "NOT", Expr: e}, nil

	case t.isOp("-"), t.isOp("+"):
		p.next()
		e, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: t.text, Expr: e}, nil

	case t.isOp("*"):
		p.next()
		return &Wildcard{}, nil

	case t.isOp("("):
		return p.parseParenthesized()

	case t.is("EXISTS"):
		p.next()
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &Exists{Subquery: q}, nil

	case t.is("CASE"):
		return p.parseCase()

	case t.is("CAST"):
		p.next()
		if err := p.expectOp("("); err != nil {
			return nil, err
		}
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("AS"); err != nil {
			return nil, err
		}
		typ, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &Cast{Expr: e, Type: typ}, nil

	case t.kind == tokWord && typedStringPrefixes[t.upper] && p.peekAt(1).kind == tokString:
		p.next()
		s := p.next()
		return &TypedString{Type: t.upper, Value: s.text}, nil

	case t.kind == tokQuotedIdent, t.kind == tokWord && !reserved[t.upper]:
		return p.parseIdentOrFunction()

	default:
		return nil, p.expected("an expression", t)
	}
}

func (p *parser) parseParenthesized() (Expr, error) {
	p.next()
	if p.peek().is("SELECT") {
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return &Subquery{Query: q}, nil
	}

	list, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	if len(list) == 1 {
		return &Nested{Expr: list[0]}, nil
	}
	return &Tuple{Exprs: list}, nil
}

func (p *parser) parseIdentOrFunction() (Expr, error) {
	id, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	name := ObjectName{id}
	for p.acceptOp(".") {
		if p.acceptOp("*") {
			return &Wildcard{Qualifier: name}, nil
		}
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		name = append(name, id)
	}
	if p.peek().isOp("(") {
		return p.parseFunction(name)
	}
	return &Identifier{Name: name}, nil
}

func (p *parser) parseFunction(name ObjectName) (*Function, error) {
	p.next()
	f := &Function{Name: name}
	if p.acceptOp(")") {
		return f, nil
	}
	f.Distinct = p.accept("DISTINCT")
	args, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	f.Args = args
	return f, nil
}

func (p *parser) parseCase() (Expr, error) {
	p.next()
	c := &Case{}
	if !p.peek().is("WHEN") {
		operand, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		c.Operand = operand
	}
	for p.accept("WHEN") {
		cond, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("THEN"); err != nil {
			return nil, err
		}
		result, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, When{Cond: cond, Result: result})
	}
	if len(c.Whens) == 0 {
		return nil, p.expected("WHEN", p.peek())
	}
	if p.accept("ELSE") {
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		c.Else = e
	}
	if err := p.expectKeyword("END"); err != nil {
		return nil, err
	}
	return c, nil
}
