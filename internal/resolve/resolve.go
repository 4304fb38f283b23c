// Package resolve performs the two-pass label resolution described in
// spec §4.4: assign each label definition the index of the instruction that
// follows it, then rewrite every JUMP/JZERO/JPOS/CALL argument from a
// symbolic label to that absolute index, dropping the label-definition
// lines entirely.
package resolve

import (
	"strconv"

	"slc/internal/errs"
	"slc/internal/instr"
)

// Resolve lowers prog's symbolic labels to absolute instruction indices and
// strips label-definition lines, returning a flat instruction stream ready
// for peephole optimization or execution.
func Resolve(prog instr.Program) ([]instr.Instruction, error) {
	labels := make(map[string]int, len(prog))
	index := 0
	for _, line := range prog {
		if line.IsLabel() {
			labels[line.Label] = index
		} else {
			index++
		}
	}

	out := make([]instr.Instruction, 0, index)
	for _, line := range prog {
		if line.IsLabel() {
			continue
		}
		ins := line.Instr
		if instr.JumpOps[ins.Op] {
			target, ok := labels[ins.Arg]
			if !ok {
				return nil, errs.New(errs.Semantic, 0, 0, "undefined label '%s'", ins.Arg)
			}
			ins = instr.Instruction{Op: ins.Op, Arg: strconv.Itoa(target)}
		}
		out = append(out, ins)
	}
	return out, nil
}
