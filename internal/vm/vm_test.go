package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slc/internal/instr"
)

func TestConstantSynthesis(t *testing.T) {
	// RST a; SHL a; INC a; SHL a; SHL a; INC a => 0,0,1,2,4,5 => binary 101 = 5
	program := []instr.Instruction{
		instr.Reg(instr.RST, "a"),
		instr.Reg(instr.SHL, "a"),
		instr.Reg(instr.INC, "a"),
		instr.Reg(instr.SHL, "a"),
		instr.Reg(instr.SHL, "a"),
		instr.Reg(instr.INC, "a"),
		instr.Bare(instr.HALT),
	}
	i := New(program)
	require.NoError(t, i.Run())
	a, ok := i.Register("a")
	require.True(t, ok)
	assert.EqualValues(t, 5, a)
}

func TestSaturatingSubtraction(t *testing.T) {
	program := []instr.Instruction{
		instr.Reg(instr.RST, "a"),
		instr.Reg(instr.RST, "b"),
		instr.Reg(instr.INC, "b"),
		instr.Reg(instr.INC, "b"),
		instr.Reg(instr.SUB, "b"), // a = max(0-2, 0) = 0
		instr.Bare(instr.HALT),
	}
	i := New(program)
	require.NoError(t, i.Run())
	a, _ := i.Register("a")
	assert.EqualValues(t, 0, a)
}

func TestSaturatingDecrement(t *testing.T) {
	program := []instr.Instruction{
		instr.Reg(instr.RST, "a"),
		instr.Reg(instr.DEC, "a"),
		instr.Bare(instr.HALT),
	}
	i := New(program)
	require.NoError(t, i.Run())
	a, _ := i.Register("a")
	assert.EqualValues(t, 0, a)
}

func TestReadWriteRoundTrip(t *testing.T) {
	program := []instr.Instruction{
		instr.Bare(instr.READ),
		instr.Bare(instr.WRITE),
		instr.Bare(instr.HALT),
	}
	var out bytes.Buffer
	i := New(program, Input(strings.NewReader("42")), Output(&out))
	require.NoError(t, i.Run())
	assert.Equal(t, "42\n", out.String())
}

func TestMemoryRoundTrip(t *testing.T) {
	program := []instr.Instruction{
		instr.Reg(instr.RST, "a"),
		instr.Reg(instr.INC, "a"),
		instr.Reg(instr.INC, "a"),
		instr.Cell(instr.STORE, 3),
		instr.Reg(instr.RST, "a"),
		instr.Cell(instr.LOAD, 3),
		instr.Bare(instr.HALT),
	}
	i := New(program)
	require.NoError(t, i.Run())
	a, _ := i.Register("a")
	assert.EqualValues(t, 2, a)
	assert.EqualValues(t, 2, i.Memory(3))
}

func TestJumpControlFlow(t *testing.T) {
	// a = 3; while a != 0 { a = a - 1 }; HALT
	program := []instr.Instruction{
		instr.Reg(instr.RST, "a"),                     // 0
		instr.Reg(instr.INC, "a"),                     // 1
		instr.Reg(instr.INC, "a"),                     // 2
		instr.Reg(instr.INC, "a"),                     // 3: a=3
		{Op: instr.JZERO, Arg: "7"},                    // 4: loop test
		instr.Reg(instr.DEC, "a"),                     // 5: loop body
		{Op: instr.JUMP, Arg: "4"},                     // 6: back to test
		instr.Bare(instr.HALT),                        // 7
	}
	i := New(program)
	require.NoError(t, i.Run())
	a, _ := i.Register("a")
	assert.EqualValues(t, 0, a)
}

func TestCallReturnUsesAccumulator(t *testing.T) {
	// main: CALL 2 (proc at index 2); HALT
	// proc:  INC b; RTRN
	program := []instr.Instruction{
		{Op: instr.CALL, Arg: "2"}, // 0: a = 1 (return addr), jump to 2
		instr.Bare(instr.HALT),     // 1: return lands here
		instr.Reg(instr.INC, "b"), // 2
		instr.Bare(instr.RTRN),    // 3: jumps to addr in a (=1)
	}
	i := New(program)
	require.NoError(t, i.Run())
	b, _ := i.Register("b")
	assert.EqualValues(t, 1, b)
}

func TestNegativeInputRejected(t *testing.T) {
	program := []instr.Instruction{instr.Bare(instr.READ), instr.Bare(instr.HALT)}
	i := New(program, Input(strings.NewReader("-1")))
	assert.Error(t, i.Run())
}
