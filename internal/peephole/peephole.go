// Package peephole implements the local rewrite pass described in spec
// §4.5: a fixed set of short, purely local instruction-sequence rewrites,
// iterated to a fixed point (or a small iteration cap), with jump targets
// remapped after every pass since rewrites shift instruction indices.
//
// Every rule here is grounded on the original peephole optimizer: redundant
// RST+ADD-same-register pairs, self-cancelling SWP pairs, a dead
// store-after-load when the loaded value is never read again, cancelling
// SHL/SHR pairs, and JUMP-to-next-instruction removal.
package peephole

import (
	"strconv"

	"slc/internal/instr"
)

const maxIterations = 3

var jumpOps = instr.JumpOps

var readsA = map[instr.Op]bool{
	instr.WRITE: true, instr.STORE: true, instr.RSTORE: true,
	instr.ADD: true, instr.SUB: true, instr.SWP: true,
	instr.JPOS: true, instr.JZERO: true, instr.RTRN: true,
}

var writesA = map[instr.Op]bool{
	instr.READ: true, instr.LOAD: true, instr.RLOAD: true,
	instr.ADD: true, instr.SUB: true, instr.SWP: true,
	instr.CALL: true, instr.RST: true,
}

func regReads(ins instr.Instruction) map[string]bool {
	out := map[string]bool{}
	if readsA[ins.Op] {
		out["a"] = true
	}
	switch ins.Op {
	case instr.RLOAD, instr.RSTORE, instr.ADD, instr.SUB, instr.SWP, instr.INC, instr.DEC, instr.SHL, instr.SHR:
		if ins.Arg != "" {
			out[ins.Arg] = true
		}
	}
	return out
}

func regWrites(ins instr.Instruction) map[string]bool {
	out := map[string]bool{}
	if writesA[ins.Op] {
		out["a"] = true
	}
	switch ins.Op {
	case instr.SWP, instr.RST, instr.INC, instr.DEC, instr.SHL, instr.SHR:
		if ins.Arg != "" {
			out[ins.Arg] = true
		}
	}
	return out
}

// tagged pairs a post-resolve instruction with the index it held before
// this pass, so jump targets can be remapped afterward.
type tagged struct {
	ins    instr.Instruction
	srcIdx int
}

// Optimize runs up to maxIterations peephole passes over prog, remapping
// jump targets after each pass, and returns the fixed (or capped) result.
func Optimize(prog []instr.Instruction) []instr.Instruction {
	current := tag(prog)
	for i := 0; i < maxIterations; i++ {
		optimized := pass(current)
		oldToNew := buildRemap(len(current), optimized)
		remapped := remapJumps(optimized, oldToNew)
		if sameText(remapped, current) {
			current = remapped
			break
		}
		current = tag(untag(remapped))
	}
	return untag(current)
}

func tag(prog []instr.Instruction) []tagged {
	out := make([]tagged, len(prog))
	for i, ins := range prog {
		out[i] = tagged{ins: ins, srcIdx: i}
	}
	return out
}

func untag(t []tagged) []instr.Instruction {
	out := make([]instr.Instruction, len(t))
	for i, x := range t {
		out[i] = x.ins
	}
	return out
}

func sameText(a, b []tagged) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ins != b[i].ins {
			return false
		}
	}
	return true
}

// pass applies every rewrite rule once, left to right, consuming two or
// three instructions at a time when a rule matches.
func pass(in []tagged) []tagged {
	out := make([]tagged, 0, len(in))
	i := 0
	for i < len(in) {
		cur := in[i]
		var next, next2 *tagged
		if i+1 < len(in) {
			next = &in[i+1]
		}
		if i+2 < len(in) {
			next2 = &in[i+2]
		}

		// RST x; ADD x => RST x (adding a just-cleared register to a is a
		// no-op).
		if cur.ins.Op == instr.RST && next != nil && next.ins.Op == instr.ADD && cur.ins.Arg == next.ins.Arg {
			out = append(out, cur)
			i += 2
			continue
		}

		// SWP x; SWP x => nothing (self-cancelling).
		if cur.ins.Op == instr.SWP && next != nil && next.ins.Op == instr.SWP && cur.ins.Arg == next.ins.Arg {
			i += 2
			continue
		}

		// RST a; ADD x; SWP x => RST a; ADD x (after RST a; ADD x,
		// register a already equals x, so the SWP exchanges two equal
		// values).
		if cur.ins.Op == instr.RST && cur.ins.Arg == "a" && next != nil && next.ins.Op == instr.ADD &&
			next2 != nil && next2.ins.Op == instr.SWP && next2.ins.Arg == next.ins.Arg {
			out = append(out, cur, *next)
			i += 3
			continue
		}

		// LOAD n; STORE n => nothing, when the following instruction
		// neither reads nor needs register a from this round-trip (a
		// dead store-then-reload of the same cell).
		if cur.ins.Op == instr.LOAD && next != nil && next.ins.Op == instr.STORE && next.ins.Arg == cur.ins.Arg {
			if i+2 < len(in) {
				following := in[i+2].ins
				if !regReads(following)["a"] && regWrites(following)["a"] {
					i += 2
					continue
				}
			}
		}

		// SHL x; SHR x => nothing (cancelling shifts).
		if cur.ins.Op == instr.SHL && next != nil && next.ins.Op == instr.SHR && cur.ins.Arg == next.ins.Arg {
			i += 2
			continue
		}

		// JUMP to the very next instruction is a no-op.
		if cur.ins.Op == instr.JUMP && cur.ins.Arg != "" {
			if target, err := strconv.Atoi(cur.ins.Arg); err == nil && target == i+1 {
				i++
				continue
			}
		}

		out = append(out, cur)
		i++
	}
	return out
}

// buildRemap maps each pre-pass instruction index to its post-pass index,
// so that a jump argument pointing at a dropped instruction lands on
// whatever replaced it (or, failing that, the nearest surviving successor).
func buildRemap(oldLen int, optimized []tagged) []int {
	oldToNew := make([]int, oldLen)
	known := make([]bool, oldLen)
	for newIdx, t := range optimized {
		oldToNew[t.srcIdx] = newIdx
		known[t.srcIdx] = true
	}

	nextKnown := -1
	haveNext := false
	for idx := oldLen - 1; idx >= 0; idx-- {
		if !known[idx] {
			if !haveNext {
				oldToNew[idx] = len(optimized) - 1
			} else {
				oldToNew[idx] = nextKnown
			}
		} else {
			nextKnown = oldToNew[idx]
			haveNext = true
		}
	}
	return oldToNew
}

func remapJumps(in []tagged, oldToNew []int) []tagged {
	out := make([]tagged, len(in))
	for i, t := range in {
		if jumpOps[t.ins.Op] && t.ins.Arg != "" {
			if target, err := strconv.Atoi(t.ins.Arg); err == nil && target >= 0 && target < len(oldToNew) {
				out[i] = tagged{ins: instr.Instruction{Op: t.ins.Op, Arg: strconv.Itoa(oldToNew[target])}, srcIdx: t.srcIdx}
				continue
			}
		}
		out[i] = t
	}
	return out
}
