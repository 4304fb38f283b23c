package codegen

import (
	"fmt"

	"slc/internal/ast"
	"slc/internal/instr"
	"slc/internal/symtab"
)

// loadValue evaluates identifier id and leaves its value in register a.
func (g *Generator) loadValue(id ast.Identifier) {
	switch n := id.(type) {
	case *ast.Scalar:
		g.loadScalar(n.Entry.(*symtab.Scalar))

	case *ast.IndexedByConst:
		arr := n.Entry.(*symtab.Array)
		g.genConstant(n.Index, "a")
		g.arrayAddressToB(arr)
		g.emitReg(instr.RLOAD, "b")

	case *ast.IndexedByVar:
		arr := n.Entry.(*symtab.Array)
		g.loadScalar(n.IndexEntry.(*symtab.Scalar))
		g.arrayAddressToB(arr)
		g.emitReg(instr.RLOAD, "b")

	default:
		panic(fmt.Sprintf("codegen: unhandled identifier node %T", id))
	}
}

// loadScalar loads sym's value into a, indirecting through its cell first
// when sym is a reference parameter (its cell holds the absolute address
// of the caller's datum, not the value itself).
func (g *Generator) loadScalar(sym *symtab.Scalar) {
	if sym.IsReference {
		g.emitCell(instr.LOAD, sym.Cell)
		g.emitReg(instr.SWP, "b")
		g.emitReg(instr.RLOAD, "b")
		return
	}
	g.emitCell(instr.LOAD, sym.Cell)
}

// storeValue stores the value currently in register a into identifier id.
func (g *Generator) storeValue(id ast.Identifier) {
	g.emitReg(instr.SWP, "d") // park the value in d

	switch n := id.(type) {
	case *ast.Scalar:
		sym := n.Entry.(*symtab.Scalar)
		if sym.IsReference {
			g.emitCell(instr.LOAD, sym.Cell) // a = address
			g.emitReg(instr.SWP, "b")
			g.emitReg(instr.SWP, "d") // a = value
			g.emitReg(instr.RSTORE, "b")
		} else {
			g.emitReg(instr.SWP, "d") // a = value
			g.emitCell(instr.STORE, sym.Cell)
		}

	case *ast.IndexedByConst:
		arr := n.Entry.(*symtab.Array)
		g.emitReg(instr.SWP, "d")
		g.emitReg(instr.SWP, "e") // value parked in e
		g.genConstant(n.Index, "a")
		g.arrayAddressToB(arr)
		g.emitReg(instr.SWP, "e") // a = value
		g.emitReg(instr.RSTORE, "b")

	case *ast.IndexedByVar:
		arr := n.Entry.(*symtab.Array)
		g.emitReg(instr.SWP, "d")
		g.emitReg(instr.SWP, "e") // value parked in e
		g.loadScalar(n.IndexEntry.(*symtab.Scalar))
		g.arrayAddressToB(arr)
		g.emitReg(instr.SWP, "e") // a = value
		g.emitReg(instr.RSTORE, "b")

	default:
		panic(fmt.Sprintf("codegen: unhandled identifier node %T", id))
	}
}

// arrayAddressToB turns an index value sitting in register a into an
// absolute cell address, left in b: it subtracts the array's low bound (own
// arrays fold it in as a constant, reference arrays carry it in a second
// parameter cell, spec §9) and adds the array's base address (likewise
// constant for an own array, loaded for a reference).
func (g *Generator) arrayAddressToB(arr *symtab.Array) {
	needSub := arr.IsReference || arr.Lo != 0
	if needSub {
		g.emitReg(instr.SWP, "b")
		if arr.IsReference {
			g.emitCell(instr.LOAD, arr.LoCell)
		} else {
			g.genConstant(arr.Lo, "a")
		}
		g.emitReg(instr.SWP, "b")
		g.emitReg(instr.SUB, "b")
	}
	g.emitReg(instr.SWP, "b")
	if arr.IsReference {
		g.emitCell(instr.LOAD, arr.BaseCell)
	} else {
		g.genConstant(arr.BaseCell, "a")
	}
	g.emitReg(instr.ADD, "b")
	g.emitReg(instr.SWP, "b")
}
