package codegen

import (
	"fmt"

	"slc/internal/ast"
	"slc/internal/instr"
	"slc/internal/symtab"
)

// genCall populates the callee's parameter cells from the caller's actuals
// and transfers control. Input parameters copy a value; scalar and array
// reference parameters pass an address (loaded from the actual's own cell
// when the actual is itself a reference, synthesized as a constant
// otherwise); an array reference additionally forwards the actual's low
// bound through a second parameter cell (spec §9).
func (g *Generator) genCall(call *ast.Call) {
	proc := g.ctx.Procedures[call.Name]

	for i, kind := range proc.Formals {
		cells := proc.ParamCells[i]
		actual := call.ActualEntries[i]

		switch kind {
		case symtab.KindInput:
			g.loadScalar(actual.(*symtab.Scalar))
			g.emitCell(instr.STORE, cells.Base)

		case symtab.KindScalarRef:
			sc := actual.(*symtab.Scalar)
			if sc.IsReference {
				g.emitCell(instr.LOAD, sc.Cell)
			} else {
				g.genConstant(sc.Cell, "a")
			}
			g.emitCell(instr.STORE, cells.Base)

		case symtab.KindArrayRef:
			arr := actual.(*symtab.Array)
			if arr.IsReference {
				g.emitCell(instr.LOAD, arr.BaseCell)
			} else {
				g.genConstant(arr.BaseCell, "a")
			}
			g.emitCell(instr.STORE, cells.Base)

			if cells.Lo >= 0 {
				if arr.IsReference {
					g.emitCell(instr.LOAD, arr.LoCell)
				} else {
					g.genConstant(arr.Lo, "a")
				}
				g.emitCell(instr.STORE, cells.Lo)
			}

		default:
			panic(fmt.Sprintf("codegen: unhandled formal kind %v", kind))
		}
	}

	g.emitJump(instr.CALL, call.Name)
}
