package codegen

import (
	"fmt"
	"math/bits"
	"strconv"

	"slc/internal/ast"
	"slc/internal/instr"
)

// genExpr evaluates e, leaving its value in register a.
func (g *Generator) genExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Num:
		g.genConstant(n.Value, "a")
	case *ast.IdentExpr:
		g.loadValue(n.Id)
	case *ast.BinExpr:
		switch n.Op {
		case ast.OpAdd:
			g.genAdd(n)
		case ast.OpSub:
			g.genSub(n)
		case ast.OpMul:
			g.genMul(n)
		case ast.OpDiv:
			g.genDiv(n)
		case ast.OpMod:
			g.genMod(n)
		}
	default:
		panic(fmt.Sprintf("codegen: unhandled expression node %T", e))
	}
}

// genConstant synthesizes value into reg from zero using shift-and-increment
// (the VM has no immediate-load instruction): RST clears the register, then
// each bit of value's binary expansion is folded in high-to-low via SHL/INC.
func (g *Generator) genConstant(value int, reg string) {
	g.emitReg(instr.RST, reg)
	if value == 0 {
		return
	}
	for _, bit := range strconv.FormatInt(int64(value), 2) {
		g.emitReg(instr.SHL, reg)
		if bit == '1' {
			g.emitReg(instr.INC, reg)
		}
	}
}

// spillLeft evaluates left (leaving its value in a) and saves it to a fresh
// memory cell, so the caller can safely evaluate a right operand of the same
// register family afterwards without the recursive genExpr call clobbering
// it. Each call gets its own cell (monotonic allocation, as with the FOR
// loop's hidden cells) rather than one shared scratch register, because
// parenthesised expressions let the right operand recurse through the same
// genAdd/genSub/genMulGeneral/genDivMod machinery the caller is already
// inside of.
func (g *Generator) spillLeft(left ast.Expr) int {
	g.genExpr(left)
	cell := g.ctx.AllocCell()
	g.emitCell(instr.STORE, cell)
	return cell
}

func asNum(e ast.Expr) (int, bool) {
	if n, ok := e.(*ast.Num); ok {
		return n.Value, true
	}
	return 0, false
}

func isPowerOfTwo(v int) bool { return v > 0 && v&(v-1) == 0 }

func powerOfTwoShift(v int) int { return bits.Len(uint(v)) - 1 }

func satSub(a, b int) int {
	if a-b < 0 {
		return 0
	}
	return a - b
}

func (g *Generator) genAdd(n *ast.BinExpr) {
	lv, lok := asNum(n.Left)
	rv, rok := asNum(n.Right)
	switch {
	case lok && rok:
		g.genConstant(lv+rv, "a")
	case lok && lv == 0:
		g.genExpr(n.Right)
	case rok && rv == 0:
		g.genExpr(n.Left)
	default:
		cell := g.spillLeft(n.Left)
		g.genExpr(n.Right)
		g.emitReg(instr.SWP, "h")    // h = right
		g.emitCell(instr.LOAD, cell) // a = left
		g.emitReg(instr.ADD, "h")    // a = left + right
	}
}

func (g *Generator) genSub(n *ast.BinExpr) {
	lv, lok := asNum(n.Left)
	rv, rok := asNum(n.Right)
	switch {
	case lok && rok:
		g.genConstant(satSub(lv, rv), "a")
	case rok && rv == 0:
		g.genExpr(n.Left)
	default:
		// max(left - right, 0); the VM's SUB instruction saturates itself,
		// the constant-folded case above just mirrors that at compile time.
		cell := g.spillLeft(n.Left)
		g.genExpr(n.Right)
		g.emitReg(instr.SWP, "h")    // h = right
		g.emitCell(instr.LOAD, cell) // a = left
		g.emitReg(instr.SUB, "h")    // a = left - right
	}
}

func (g *Generator) genMul(n *ast.BinExpr) {
	lv, lok := asNum(n.Left)
	rv, rok := asNum(n.Right)
	switch {
	case (lok && lv == 0) || (rok && rv == 0):
		g.genConstant(0, "a")
	case lok && lv == 1:
		g.genExpr(n.Right)
	case rok && rv == 1:
		g.genExpr(n.Left)
	case lok && rok:
		g.genConstant(lv*rv, "a")
	case rok && isPowerOfTwo(rv):
		g.genExpr(n.Left)
		for i := 0; i < powerOfTwoShift(rv); i++ {
			g.emitReg(instr.SHL, "a")
		}
	default:
		g.genMulGeneral(n)
	}
}

func (g *Generator) genDiv(n *ast.BinExpr) {
	lv, lok := asNum(n.Left)
	rv, rok := asNum(n.Right)
	switch {
	case lok && rok:
		if rv == 0 {
			g.genConstant(0, "a")
		} else {
			g.genConstant(lv/rv, "a")
		}
	case rok && rv == 1:
		g.genExpr(n.Left)
	case rok && isPowerOfTwo(rv):
		g.genExpr(n.Left)
		for i := 0; i < powerOfTwoShift(rv); i++ {
			g.emitReg(instr.SHR, "a")
		}
	default:
		g.genDivMod(n, true)
	}
}

func (g *Generator) genMod(n *ast.BinExpr) {
	lv, lok := asNum(n.Left)
	rv, rok := asNum(n.Right)
	switch {
	case lok && rok:
		if rv == 0 {
			g.genConstant(0, "a")
		} else {
			g.genConstant(lv%rv, "a")
		}
	case rok && rv == 1:
		g.genConstant(0, "a")
	case rok && isPowerOfTwo(rv):
		shift := powerOfTwoShift(rv)
		g.genExpr(n.Left)
		g.emitReg(instr.SWP, "b")
		g.emitReg(instr.RST, "a")
		g.emitReg(instr.ADD, "b")
		for i := 0; i < shift; i++ {
			g.emitReg(instr.SHR, "a")
		}
		for i := 0; i < shift; i++ {
			g.emitReg(instr.SHL, "a")
		}
		g.emitReg(instr.SWP, "c")
		g.emitReg(instr.RST, "a")
		g.emitReg(instr.ADD, "b")
		g.emitReg(instr.SUB, "c")
	default:
		g.genDivMod(n, false)
	}
}
