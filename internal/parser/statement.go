package parser

import (
	"slc/internal/ast"
	"slc/internal/errs"
	"slc/internal/lexer"
)

func (p *parser) commands() ([]ast.Command, error) {
	var cmds []ast.Command
	for p.startsCommand() {
		c, err := p.command()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

func (p *parser) startsCommand() bool {
	switch p.cur().Type {
	case lexer.IDENT, lexer.IF, lexer.WHILE, lexer.REPEAT, lexer.FOR, lexer.READ, lexer.WRITE:
		return true
	default:
		return false
	}
}

func (p *parser) command() (ast.Command, error) {
	switch p.cur().Type {
	case lexer.IF:
		return p.ifCmd()
	case lexer.WHILE:
		return p.whileCmd()
	case lexer.REPEAT:
		return p.repeatCmd()
	case lexer.FOR:
		return p.forCmd()
	case lexer.READ:
		return p.readCmd()
	case lexer.WRITE:
		return p.writeCmd()
	case lexer.IDENT:
		return p.assignOrCall()
	default:
		return nil, errs.New(errs.Syntax, p.line(), 0, "unexpected token %q", p.cur().Val)
	}
}

func (p *parser) ifCmd() (ast.Command, error) {
	pos := p.here()
	p.advance() // IF
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.THEN, "THEN"); err != nil {
		return nil, err
	}
	then, err := p.commands()
	if err != nil {
		return nil, err
	}
	var els []ast.Command
	if p.at(lexer.ELSE) {
		p.advance()
		els, err = p.commands()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.ENDIF, "ENDIF"); err != nil {
		return nil, err
	}
	return &ast.If{Pos: pos, Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) whileCmd() (ast.Command, error) {
	pos := p.here()
	p.advance() // WHILE
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DO, "DO"); err != nil {
		return nil, err
	}
	body, err := p.commands()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ENDWHILE, "ENDWHILE"); err != nil {
		return nil, err
	}
	return &ast.While{Pos: pos, Cond: cond, Body: body}, nil
}

func (p *parser) repeatCmd() (ast.Command, error) {
	pos := p.here()
	p.advance() // REPEAT
	body, err := p.commands()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.UNTIL, "UNTIL"); err != nil {
		return nil, err
	}
	cond, err := p.condition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	return &ast.Repeat{Pos: pos, Body: body, Cond: cond}, nil
}

func (p *parser) forCmd() (ast.Command, error) {
	pos := p.here()
	p.advance() // FOR
	varName, err := p.expect(lexer.IDENT, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.FROM, "FROM"); err != nil {
		return nil, err
	}
	from, err := p.expr()
	if err != nil {
		return nil, err
	}
	down := false
	switch p.cur().Type {
	case lexer.TO:
		p.advance()
	case lexer.DOWNTO:
		down = true
		p.advance()
	default:
		return nil, errs.New(errs.Syntax, p.line(), 0, "expected TO or DOWNTO, got %q", p.cur().Val)
	}
	to, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.DO, "DO"); err != nil {
		return nil, err
	}
	body, err := p.commands()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ENDFOR, "ENDFOR"); err != nil {
		return nil, err
	}
	if down {
		return &ast.ForDownto{Pos: pos, Var: varName.Val, From: from, To: to, Body: body, IterCell: -1, LimitCell: -1}, nil
	}
	return &ast.ForTo{Pos: pos, Var: varName.Val, From: from, To: to, Body: body, IterCell: -1, LimitCell: -1}, nil
}

func (p *parser) readCmd() (ast.Command, error) {
	pos := p.here()
	p.advance() // READ
	target, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	return &ast.Read{Pos: pos, Target: target}, nil
}

func (p *parser) writeCmd() (ast.Command, error) {
	pos := p.here()
	p.advance() // WRITE
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	return &ast.Write{Pos: pos, Value: value}, nil
}

// assignOrCall disambiguates `name := expr ;` from `name ( actuals ) ;` by
// looking one token past the identifier: SL has no expression-statements,
// so IDENT is always the start of exactly one of those two forms.
func (p *parser) assignOrCall() (ast.Command, error) {
	pos := p.here()
	name := p.cur().Val
	if p.peekType(1) == lexer.LPAREN {
		p.advance() // name
		p.advance() // (
		var actuals []string
		for !p.at(lexer.RPAREN) {
			a, err := p.expect(lexer.IDENT, "actual parameter")
			if err != nil {
				return nil, err
			}
			actuals = append(actuals, a.Val)
			if p.at(lexer.COMMA) {
				p.advance()
			} else {
				break
			}
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
			return nil, err
		}
		return &ast.Call{Pos: pos, Name: name, Actuals: actuals}, nil
	}

	target, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ASSIGN, "':='"); err != nil {
		return nil, err
	}
	value, err := p.expr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SEMI, "';'"); err != nil {
		return nil, err
	}
	return &ast.Assign{Pos: pos, Target: target, Value: value}, nil
}

// peekType looks ahead n tokens without consuming any.
func (p *parser) peekType(n int) lexer.TokenType {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return lexer.EOF
	}
	return p.toks[idx].Type
}

// identifier parses a scalar or indexed identifier reference.
func (p *parser) identifier() (ast.Identifier, error) {
	pos := p.here()
	name, err := p.expect(lexer.IDENT, "identifier")
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.LBRACK) {
		return &ast.Scalar{Pos: pos, Name: name.Val}, nil
	}
	p.advance() // [
	if p.at(lexer.NUMBER) {
		idxTok := p.advance()
		if _, err := p.expect(lexer.RBRACK, "']'"); err != nil {
			return nil, err
		}
		idx, err := toInt(idxTok.Val)
		if err != nil {
			return nil, err
		}
		return &ast.IndexedByConst{Pos: pos, Array: name.Val, Index: idx}, nil
	}
	idxName, err := p.expect(lexer.IDENT, "array index")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACK, "']'"); err != nil {
		return nil, err
	}
	return &ast.IndexedByVar{Pos: pos, Array: name.Val, IndexVar: idxName.Val}, nil
}
