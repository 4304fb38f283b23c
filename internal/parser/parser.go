// Package parser builds an *ast.Program from a scanned SL token stream: a
// hand-written recursive-descent parser over the grammar spec §6 implies
// (keywords, parameter markers, expression/condition operators).
//
// The teacher generates its parser with goyacc from a typed grammar file
// (frontend/parser-typed.y); that's the right call for VSL's larger,
// operator-precedence-heavy grammar. SL's grammar is small and entirely
// LL(1) once expressions are precedence-climbed by hand (the usual
// expr/term/factor ladder), so a direct recursive-descent parser gets the
// same typed-AST-on-success contract without a code-generation step.
package parser

import (
	"strconv"

	"slc/internal/ast"
	"slc/internal/errs"
	"slc/internal/lexer"
)

type parser struct {
	toks []lexer.Token
	pos  int
	ids  ast.IDGen
}

// Parse lexes and parses src into a complete *ast.Program.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.Scan(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

func (p *parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *parser) line() int         { return p.cur().Line }
func (p *parser) here() ast.Pos     { return ast.Pos{Line: p.line(), ID: p.ids.NewID()} }
func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(typ lexer.TokenType) bool { return p.cur().Type == typ }

func (p *parser) expect(typ lexer.TokenType, what string) (lexer.Token, error) {
	if !p.at(typ) {
		return lexer.Token{}, errs.New(errs.Syntax, p.line(), 0, "expected %s, got %q", what, p.cur().Val)
	}
	return p.advance(), nil
}

func (p *parser) program() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.at(lexer.PROCEDURE) {
		proc, err := p.procedure()
		if err != nil {
			return nil, err
		}
		prog.Procedures = append(prog.Procedures, proc)
	}
	main, err := p.main()
	if err != nil {
		return nil, err
	}
	prog.Main = main
	return prog, nil
}

func (p *parser) procedure() (*ast.Procedure, error) {
	pos := p.here()
	if _, err := p.expect(lexer.PROCEDURE, "PROCEDURE"); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.IDENT, "procedure name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var formals []ast.Formal
	for !p.at(lexer.RPAREN) {
		f, err := p.formal()
		if err != nil {
			return nil, err
		}
		formals = append(formals, f)
		if p.at(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IS, "IS"); err != nil {
		return nil, err
	}
	decls, err := p.declarations()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN, "IN"); err != nil {
		return nil, err
	}
	body, err := p.commands()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "END"); err != nil {
		return nil, err
	}
	return &ast.Procedure{Pos: pos, Name: name.Val, Formals: formals, Decls: decls, Body: body}, nil
}

// formal parses one formal parameter: an optional kind marker (i, o or t
// for input, output and array; a bare name is an in-out scalar reference)
// followed by its name. The markers are the lowercase identifiers i, o and
// t in this grammar's token stream, recognized by lexeme, not by a
// dedicated token type; they count as a marker only when another
// identifier follows. Uppercase I, O and T are not accepted: the lexer
// rejects them as unknown keywords.
func (p *parser) formal() (ast.Formal, error) {
	pos := p.here()
	marker := ""
	if p.at(lexer.IDENT) && len(p.cur().Val) == 1 && p.peekType(1) == lexer.IDENT {
		switch p.cur().Val {
		case "i", "o", "t":
			marker = p.cur().Val
			p.advance()
		}
	}
	name, err := p.expect(lexer.IDENT, "formal parameter name")
	if err != nil {
		return nil, err
	}
	switch marker {
	case "i":
		return &ast.InputFormal{Pos: pos, Name: name.Val}, nil
	case "o":
		return &ast.OutputFormal{Pos: pos, Name: name.Val}, nil
	case "t":
		return &ast.ArrayFormal{Pos: pos, Name: name.Val}, nil
	default:
		return &ast.ScalarFormal{Pos: pos, Name: name.Val}, nil
	}
}

func (p *parser) main() (*ast.Main, error) {
	if _, err := p.expect(lexer.PROGRAM, "PROGRAM"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IS, "IS"); err != nil {
		return nil, err
	}
	decls, err := p.declarations()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.IN, "IN"); err != nil {
		return nil, err
	}
	body, err := p.commands()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.END, "END"); err != nil {
		return nil, err
	}
	return &ast.Main{Decls: decls, Body: body}, nil
}

// declarations parses a comma-separated declaration list; absent entirely
// when the next token opens the following IN/block. Array declarations
// carry an explicit [lo:hi] range.
func (p *parser) declarations() ([]ast.Declaration, error) {
	var decls []ast.Declaration
	if p.at(lexer.IN) {
		return decls, nil
	}
	for {
		pos := p.here()
		name, err := p.expect(lexer.IDENT, "declaration name")
		if err != nil {
			return nil, err
		}
		if p.at(lexer.LBRACK) {
			p.advance()
			lo, err := p.expect(lexer.NUMBER, "array low bound")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.COLON, "':'"); err != nil {
				return nil, err
			}
			hi, err := p.expect(lexer.NUMBER, "array high bound")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACK, "']'"); err != nil {
				return nil, err
			}
			loVal, err := strconv.Atoi(lo.Val)
			if err != nil {
				return nil, errs.Wrap(err, "array low bound")
			}
			hiVal, err := strconv.Atoi(hi.Val)
			if err != nil {
				return nil, errs.Wrap(err, "array high bound")
			}
			decls = append(decls, &ast.ArrayDecl{Pos: pos, Name: name.Val, Lo: loVal, Hi: hiVal})
		} else {
			decls = append(decls, &ast.VarDecl{Pos: pos, Name: name.Val})
		}
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return decls, nil
}
