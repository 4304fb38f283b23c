package codegen

import (
	"fmt"

	"slc/internal/ast"
	"slc/internal/instr"
)

// genMulGeneral multiplies two non-constant operands via Russian-peasant
// multiplication: the VM has no hardware multiplier, so the product is
// built from repeated doubling of the multiplicand (d) and halving of the
// multiplier (c), adding d into the accumulator (e) whenever c is odd.
func (g *Generator) genMulGeneral(n *ast.BinExpr) {
	cell := g.spillLeft(n.Left)
	g.genExpr(n.Right)
	g.emitReg(instr.SWP, "d")    // d = multiplicand (right)
	g.emitCell(instr.LOAD, cell) // a = left
	g.emitReg(instr.SWP, "c")    // c = multiplier (left)
	g.emitReg(instr.RST, "e")    // e = accumulator

	start := fmt.Sprintf("mul_start_%d", n.ID)
	end := fmt.Sprintf("mul_end_%d", n.ID)
	skip := fmt.Sprintf("mul_skip_%d", n.ID)

	g.label(start)
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "c")
	g.emitJump(instr.JZERO, end)

	// c odd? c - (c/2)*2 != 0.
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "c")
	g.emitReg(instr.SHR, "a")
	g.emitReg(instr.SHL, "a")
	g.emitReg(instr.SWP, "b")
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "c")
	g.emitReg(instr.SUB, "b")
	g.emitJump(instr.JZERO, skip)

	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "e")
	g.emitReg(instr.ADD, "d")
	g.emitReg(instr.SWP, "e")

	g.label(skip)
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "d")
	g.emitReg(instr.SHL, "a")
	g.emitReg(instr.SWP, "d")

	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "c")
	g.emitReg(instr.SHR, "a")
	g.emitReg(instr.SWP, "c")
	g.emitJump(instr.JUMP, start)

	g.label(end)
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "e")
}

// genDivMod computes floor(left/right) (quotient=true) or left mod right
// (quotient=false) via shift-and-subtract: repeatedly find the largest
// doubling of the divisor (f) that still fits under the remaining dividend
// (c), subtract it, and accumulate the matching power of two (g) into the
// quotient (e). Division by zero yields 0 for both quotient and remainder,
// matching the VM's total (non-trapping) arithmetic.
func (g *Generator) genDivMod(n *ast.BinExpr, quotient bool) {
	cell := g.spillLeft(n.Left)
	g.genExpr(n.Right)
	g.emitReg(instr.SWP, "d")    // d = divisor (right)
	g.emitCell(instr.LOAD, cell) // a = left
	g.emitReg(instr.SWP, "c")    // c = dividend (left)

	finalLbl := fmt.Sprintf("dm_end_%d", n.ID)
	divZero := fmt.Sprintf("div_zero_%d", n.ID)
	loop := fmt.Sprintf("dm_loop_%d", n.ID)
	grow := fmt.Sprintf("dm_grow_%d", n.ID)
	loopSub := loop + "_sub"

	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "d")
	g.emitJump(instr.JZERO, divZero)

	g.emitReg(instr.RST, "e") // e = quotient accumulator

	g.label(loop)
	// Remaining? d - c > 0 means d > c, i.e. division is complete.
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "d")
	g.emitReg(instr.SUB, "c")
	g.emitJump(instr.JPOS, finalLbl)

	// Grow f = d * 2^k (stopping once doubling again would exceed c).
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "d")
	g.emitReg(instr.SWP, "f") // f = current divisor multiple
	g.emitReg(instr.RST, "g")
	g.emitReg(instr.INC, "g") // g = matching power of two

	g.label(grow)
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "f")
	g.emitReg(instr.SHL, "a")
	g.emitReg(instr.SWP, "b") // b = f*2
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "b")
	g.emitReg(instr.SUB, "c")
	g.emitJump(instr.JPOS, loopSub)

	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "b")
	g.emitReg(instr.SWP, "f")
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "g")
	g.emitReg(instr.SHL, "a")
	g.emitReg(instr.SWP, "g")
	g.emitJump(instr.JUMP, grow)

	g.label(loopSub)
	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "c")
	g.emitReg(instr.SUB, "f")
	g.emitReg(instr.SWP, "c")

	g.emitReg(instr.RST, "a")
	g.emitReg(instr.ADD, "e")
	g.emitReg(instr.ADD, "g")
	g.emitReg(instr.SWP, "e")
	g.emitJump(instr.JUMP, loop)

	g.label(divZero)
	g.emitReg(instr.RST, "e")
	g.emitReg(instr.RST, "c")
	g.emitJump(instr.JUMP, finalLbl)

	g.label(finalLbl)
	g.emitReg(instr.RST, "a")
	if quotient {
		g.emitReg(instr.ADD, "e")
	} else {
		g.emitReg(instr.ADD, "c")
	}
}
