package peephole

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"slc/internal/instr"
)

func TestRstAddSameRegisterCancels(t *testing.T) {
	in := []instr.Instruction{
		instr.Reg(instr.RST, "b"),
		instr.Reg(instr.ADD, "b"),
		instr.Bare(instr.HALT),
	}
	out := Optimize(in)
	assert.Equal(t, []instr.Instruction{instr.Reg(instr.RST, "b"), instr.Bare(instr.HALT)}, out)
}

func TestSwpSwpSameRegisterCancels(t *testing.T) {
	in := []instr.Instruction{
		instr.Reg(instr.SWP, "c"),
		instr.Reg(instr.SWP, "c"),
		instr.Bare(instr.HALT),
	}
	out := Optimize(in)
	assert.Equal(t, []instr.Instruction{instr.Bare(instr.HALT)}, out)
}

func TestShlShrSameRegisterCancels(t *testing.T) {
	in := []instr.Instruction{
		instr.Reg(instr.SHL, "a"),
		instr.Reg(instr.SHR, "a"),
		instr.Bare(instr.HALT),
	}
	out := Optimize(in)
	assert.Equal(t, []instr.Instruction{instr.Bare(instr.HALT)}, out)
}

func TestJumpToNextInstructionRemoved(t *testing.T) {
	in := []instr.Instruction{
		{Op: instr.JUMP, Arg: "1"},
		instr.Bare(instr.HALT),
	}
	out := Optimize(in)
	assert.Equal(t, []instr.Instruction{instr.Bare(instr.HALT)}, out)
}

func TestDeadStoreThenReload(t *testing.T) {
	in := []instr.Instruction{
		instr.Cell(instr.LOAD, 4),
		instr.Cell(instr.STORE, 4),
		instr.Reg(instr.RST, "a"),
		instr.Bare(instr.HALT),
	}
	out := Optimize(in)
	assert.Equal(t, []instr.Instruction{instr.Reg(instr.RST, "a"), instr.Bare(instr.HALT)}, out)
}

// JUMP 3; NOOP; NOOP; HALT with both NOOPs (here SWP b; SWP b, a
// self-cancelling pair) removed retargets the jump onto HALT's new index 1;
// that jump now targets the next instruction, so the following pass drops
// it and only HALT remains.
func TestJumpRetargetAfterRemoval(t *testing.T) {
	in := []instr.Instruction{
		{Op: instr.JUMP, Arg: "3"},
		instr.Reg(instr.SWP, "b"),
		instr.Reg(instr.SWP, "b"),
		instr.Bare(instr.HALT),
	}
	out := Optimize(in)
	want := []instr.Instruction{
		instr.Bare(instr.HALT),
	}
	assert.Equal(t, want, out)
}

func TestOptimizeIteratesToFixedPoint(t *testing.T) {
	// A cancelling SHL/SHR pair nested inside a SWP pair: the first pass
	// removes only the inner pair, which makes the SWPs adjacent, so a
	// second pass is needed to fold them.
	in := []instr.Instruction{
		instr.Reg(instr.SWP, "c"),
		instr.Reg(instr.SHL, "a"),
		instr.Reg(instr.SHR, "a"),
		instr.Reg(instr.SWP, "c"),
		instr.Bare(instr.HALT),
	}
	out := Optimize(in)
	assert.Equal(t, []instr.Instruction{instr.Bare(instr.HALT)}, out)
}
