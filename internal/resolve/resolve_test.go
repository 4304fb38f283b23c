package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slc/internal/instr"
)

func TestResolveAssignsLabelToFollowingInstruction(t *testing.T) {
	prog := instr.Program{
		{Instr: instr.Reg(instr.RST, "a")},
		{Label: "loop"},
		{Instr: instr.Reg(instr.INC, "a")},
		{Instr: instr.Jump(instr.JUMP, "loop")},
		{Instr: instr.Bare(instr.HALT)},
	}
	out, err := Resolve(prog)
	require.NoError(t, err)
	require.Len(t, out, 4)
	assert.Equal(t, "1", out[2].Arg) // JUMP loop -> index of INC a
	assert.Equal(t, instr.JUMP, out[2].Op)
}

func TestResolveDropsLabelLines(t *testing.T) {
	prog := instr.Program{
		{Label: "start"},
		{Instr: instr.Bare(instr.HALT)},
	}
	out, err := Resolve(prog)
	require.NoError(t, err)
	assert.Equal(t, []instr.Instruction{instr.Bare(instr.HALT)}, out)
}

func TestResolveUndefinedLabelErrors(t *testing.T) {
	prog := instr.Program{
		{Instr: instr.Jump(instr.JUMP, "nowhere")},
	}
	_, err := Resolve(prog)
	assert.Error(t, err)
}

func TestResolveCallAndConditionalJumps(t *testing.T) {
	prog := instr.Program{
		{Instr: instr.Jump(instr.CALL, "proc")},
		{Instr: instr.Bare(instr.HALT)},
		{Label: "proc"},
		{Instr: instr.Jump(instr.JZERO, "proc")},
		{Instr: instr.Jump(instr.JPOS, "proc")},
		{Instr: instr.Bare(instr.RTRN)},
	}
	out, err := Resolve(prog)
	require.NoError(t, err)
	for _, ins := range []instr.Instruction{out[0], out[2], out[3]} {
		assert.Equal(t, "2", ins.Arg)
	}
}
