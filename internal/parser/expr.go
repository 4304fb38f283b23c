package parser

import (
	"strconv"

	"slc/internal/ast"
	"slc/internal/errs"
	"slc/internal/lexer"
)

func toInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Wrap(err, "parsing integer literal %q", s)
	}
	return v, nil
}

// expr parses an additive expression: term {('+'|'-') term}.
func (p *parser) expr() (ast.Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		pos := p.here()
		op := ast.OpAdd
		if p.cur().Type == lexer.MINUS {
			op = ast.OpSub
		}
		p.advance()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &ast.BinExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

// term parses a multiplicative expression: factor {('*'|'/'|'%') factor}.
func (p *parser) term() (ast.Expr, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.STAR) || p.at(lexer.SLASH) || p.at(lexer.PERCENT) {
		pos := p.here()
		var op ast.BinOp
		switch p.cur().Type {
		case lexer.STAR:
			op = ast.OpMul
		case lexer.SLASH:
			op = ast.OpDiv
		case lexer.PERCENT:
			op = ast.OpMod
		}
		p.advance()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinExpr{Pos: pos, Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) factor() (ast.Expr, error) {
	pos := p.here()
	switch p.cur().Type {
	case lexer.NUMBER:
		tok := p.advance()
		v, err := toInt(tok.Val)
		if err != nil {
			return nil, err
		}
		return &ast.Num{Pos: pos, Value: v}, nil
	case lexer.LPAREN:
		p.advance()
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case lexer.IDENT:
		id, err := p.identifier()
		if err != nil {
			return nil, err
		}
		return &ast.IdentExpr{Pos: pos, Id: id}, nil
	default:
		return nil, errs.New(errs.Syntax, p.line(), 0, "expected expression, got %q", p.cur().Val)
	}
}

// condition parses expr relop expr.
func (p *parser) condition() (ast.Condition, error) {
	pos := p.here()
	left, err := p.expr()
	if err != nil {
		return ast.Condition{}, err
	}
	var op ast.RelOp
	switch p.cur().Type {
	case lexer.EQ:
		op = ast.OpEq
	case lexer.NEQ:
		op = ast.OpNeq
	case lexer.LT:
		op = ast.OpLt
	case lexer.GT:
		op = ast.OpGt
	case lexer.LE:
		op = ast.OpLe
	case lexer.GE:
		op = ast.OpGe
	default:
		return ast.Condition{}, errs.New(errs.Syntax, p.line(), 0, "expected relational operator, got %q", p.cur().Val)
	}
	p.advance()
	right, err := p.expr()
	if err != nil {
		return ast.Condition{}, err
	}
	return ast.Condition{Pos: pos, Op: op, Left: left, Right: right}, nil
}
