package codegen

import (
	"fmt"

	"slc/internal/ast"
	"slc/internal/instr"
)

func (g *Generator) genIf(n *ast.If) {
	falseLabel := fmt.Sprintf("else_%d", n.ID)
	endLabel := fmt.Sprintf("endif_%d", n.ID)

	g.genCondition(n.Cond, falseLabel)
	g.genCommands(n.Then)

	hasElse := len(n.Else) > 0
	if hasElse {
		g.emitJump(instr.JUMP, endLabel)
	}
	g.label(falseLabel)
	if hasElse {
		g.genCommands(n.Else)
		g.label(endLabel)
	}
}

func (g *Generator) genWhile(n *ast.While) {
	start := fmt.Sprintf("while_start_%d", n.ID)
	end := fmt.Sprintf("while_end_%d", n.ID)

	g.label(start)
	g.genCondition(n.Cond, end)
	g.genCommands(n.Body)
	g.emitJump(instr.JUMP, start)
	g.label(end)
}

func (g *Generator) genRepeat(n *ast.Repeat) {
	start := fmt.Sprintf("repeat_start_%d", n.ID)

	g.label(start)
	g.genCommands(n.Body)
	g.genCondition(n.Cond, start)
}

// genFor emits a counted loop. The iterator and limit cells were already
// allocated by the semantic analyzer (ast.ForTo/ForDownto.IterCell/
// LimitCell); codegen only ever reads them.
//
// DOWNTO must stop as soon as iter == limit, before decrementing: limit may
// legitimately be 0, and DEC on a zero register would saturate rather than
// underflow, turning the loop into an infinite one (spec §9's noted
// DOWNTO/zero-limit hazard).
func (g *Generator) genFor(id int, from, to ast.Expr, body []ast.Command, iterCell, limitCell int, down bool) {
	start := fmt.Sprintf("for_start_%d", id)
	end := fmt.Sprintf("for_end_%d", id)

	g.genExpr(from)
	g.emitCell(instr.STORE, iterCell)
	g.genExpr(to)
	g.emitCell(instr.STORE, limitCell)

	g.label(start)
	g.emitCell(instr.LOAD, iterCell)
	g.emitReg(instr.SWP, "b")
	g.emitCell(instr.LOAD, limitCell) // a = limit, b = iter
	if down {
		// Stop once limit > iter.
		g.emitReg(instr.SUB, "b")
		g.emitJump(instr.JPOS, end)
	} else {
		g.emitReg(instr.SWP, "b") // a = iter, b = limit
		g.emitReg(instr.SUB, "b")
		g.emitJump(instr.JPOS, end)
	}

	g.genCommands(body)

	g.emitCell(instr.LOAD, iterCell)
	if down {
		g.emitReg(instr.SWP, "b")
		g.emitCell(instr.LOAD, limitCell)
		g.emitReg(instr.SWP, "b")
		g.emitReg(instr.SUB, "b")
		g.emitJump(instr.JZERO, end)
		g.emitCell(instr.LOAD, iterCell)
		g.emitReg(instr.DEC, "a")
	} else {
		g.emitReg(instr.INC, "a")
	}
	g.emitCell(instr.STORE, iterCell)
	g.emitJump(instr.JUMP, start)
	g.label(end)
}

// genCondition evaluates cond and emits a jump to falseLabel when it does
// not hold; control falls through when it does.
func (g *Generator) genCondition(cond ast.Condition, falseLabel string) {
	// cond.Right may itself recurse through genMulGeneral/genDivMod, which
	// use registers c/d internally, so the LHS is spilled to memory rather
	// than stashed straight into one of those registers (same hazard as
	// genAdd/genSub/genMulGeneral/genDivMod — see spillLeft).
	cell := g.spillLeft(cond.Left)
	g.genExpr(cond.Right)
	g.emitReg(instr.SWP, "d")
	g.emitCell(instr.LOAD, cell)
	g.emitReg(instr.SWP, "c")
	// c = LHS, d = RHS.

	checkDiff := func(x, y string) {
		g.emitReg(instr.RST, "a")
		g.emitReg(instr.ADD, x)
		g.emitReg(instr.SUB, y) // a = max(x-y, 0)
	}

	switch cond.Op {
	case ast.OpEq:
		// False unless c == d on both sides.
		checkDiff("c", "d")
		g.emitJump(instr.JPOS, falseLabel)
		checkDiff("d", "c")
		g.emitJump(instr.JPOS, falseLabel)

	case ast.OpNeq:
		trueLabel := fmt.Sprintf("cond_true_%d", cond.ID)
		checkDiff("c", "d")
		g.emitJump(instr.JPOS, trueLabel)
		checkDiff("d", "c")
		g.emitJump(instr.JPOS, trueLabel)
		g.emitJump(instr.JUMP, falseLabel)
		g.label(trueLabel)

	case ast.OpLt:
		checkDiff("d", "c")
		g.emitJump(instr.JZERO, falseLabel)

	case ast.OpGt:
		checkDiff("c", "d")
		g.emitJump(instr.JZERO, falseLabel)

	case ast.OpLe:
		checkDiff("c", "d")
		g.emitJump(instr.JPOS, falseLabel)

	case ast.OpGe:
		checkDiff("d", "c")
		g.emitJump(instr.JPOS, falseLabel)
	}
}
