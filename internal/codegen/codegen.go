// Package codegen lowers a type-checked ast.Program into a symbolic
// instr.Program: one VM instruction (or label definition) per emitted line,
// jump targets still spelled as label names for internal/resolve to fix up.
//
// Every algorithm here is grounded on the original compiler's code
// generator (constant synthesis via shift/increment, Russian-peasant
// multiplication, shift-and-subtract division/modulo, saturating address
// arithmetic for array and reference parameters): only the host language
// and the source of resolved symbols changed — codegen reads the
// sema-populated Entry/IterCell/LimitCell/ActualEntries fields instead of
// re-resolving names against a scope dictionary.
package codegen

import (
	"fmt"

	"slc/internal/ast"
	"slc/internal/instr"
	"slc/internal/symtab"
)

// Generator accumulates the symbolic instruction stream for one
// compilation. The zero value is not useful; Generate constructs one with
// its symbol context.
type Generator struct {
	ctx   *symtab.Context
	lines instr.Program
}

// Generate lowers prog to a symbolic instruction stream. ctx must be the
// context sema.Analyze returned for the same tree.
func Generate(prog *ast.Program, ctx *symtab.Context) instr.Program {
	g := &Generator{ctx: ctx}
	g.emitJump(instr.JUMP, "main_start")
	for _, proc := range prog.Procedures {
		g.genProcedure(proc)
	}
	g.label("main_start")
	g.genCommands(prog.Main.Body)
	g.emitBare(instr.HALT)
	return g.lines
}

func (g *Generator) genProcedure(proc *ast.Procedure) {
	g.label(proc.Name)
	procSym := g.ctx.Procedures[proc.Name]
	g.emitCell(instr.STORE, procSym.ReturnAddrCell)
	g.genCommands(proc.Body)
	g.emitCell(instr.LOAD, procSym.ReturnAddrCell)
	g.emitBare(instr.RTRN)
}

func (g *Generator) genCommands(cmds []ast.Command) {
	for _, c := range cmds {
		g.genCommand(c)
	}
}

func (g *Generator) genCommand(cmd ast.Command) {
	switch c := cmd.(type) {
	case *ast.Assign:
		g.genExpr(c.Value)
		g.storeValue(c.Target)
	case *ast.Read:
		g.emitBare(instr.READ)
		g.storeValue(c.Target)
	case *ast.Write:
		g.genExpr(c.Value)
		g.emitBare(instr.WRITE)
	case *ast.If:
		g.genIf(c)
	case *ast.While:
		g.genWhile(c)
	case *ast.Repeat:
		g.genRepeat(c)
	case *ast.ForTo:
		g.genFor(c.ID, c.From, c.To, c.Body, c.IterCell, c.LimitCell, false)
	case *ast.ForDownto:
		g.genFor(c.ID, c.From, c.To, c.Body, c.IterCell, c.LimitCell, true)
	case *ast.Call:
		g.genCall(c)
	default:
		panic(fmt.Sprintf("codegen: unhandled command node %T", cmd))
	}
}

// --- emission helpers ---

func (g *Generator) label(name string) {
	g.lines = append(g.lines, instr.Line{Label: name})
}

func (g *Generator) emitBare(op instr.Op) {
	g.lines = append(g.lines, instr.Line{Instr: instr.Bare(op)})
}

func (g *Generator) emitReg(op instr.Op, reg string) {
	g.lines = append(g.lines, instr.Line{Instr: instr.Reg(op, reg)})
}

func (g *Generator) emitCell(op instr.Op, cell int) {
	g.lines = append(g.lines, instr.Line{Instr: instr.Cell(op, cell)})
}

func (g *Generator) emitJump(op instr.Op, label string) {
	g.lines = append(g.lines, instr.Line{Instr: instr.Jump(op, label)})
}
