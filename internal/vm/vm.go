// Package vm is an in-process interpreter for the register machine spec §4.3
// assumes: eight saturating registers (a-h), flat indirectly-addressable
// memory, and CALL/RTRN that carry the return address through the
// accumulator instead of a runtime stack. It exists to give the compiler an
// executable oracle — compiled output can be run and checked, not just
// inspected — the same role an external VM binary played for the original
// implementation's runtime test suite (original_source/tests/helpers.py
// shells out to one and scrapes stdout).
//
// Grounded on db47h-ngaro's vm package: a Cell element type, functional
// Options for construction, and an Instance.Run loop dispatching on opcode.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"slc/internal/instr"
)

// Cell is the raw value stored in a register or memory location. The
// language has no negative numbers (spec §2) so Cell is unsigned in
// spirit; saturating subtraction is enforced in the interpreter rather than
// relied upon from the type.
type Cell int64

const numRegisters = 8

func regIndex(name string) (int, bool) {
	if len(name) != 1 || name[0] < 'a' || name[0] > 'h' {
		return 0, false
	}
	return int(name[0] - 'a'), true
}

// Option configures an Instance at construction time.
type Option func(*Instance)

// MemorySize sets the number of addressable memory cells. Defaults to 1024.
func MemorySize(size int) Option {
	return func(i *Instance) { i.memory = make([]Cell, size) }
}

// Input sets the stream READ consumes whitespace-separated integers from.
func Input(r io.Reader) Option {
	return func(i *Instance) { i.input = bufio.NewReader(r) }
}

// Output sets the stream WRITE prints values to, one per line.
func Output(w io.Writer) Option {
	return func(i *Instance) { i.output = w }
}

// Instance is one runnable instance of a compiled program.
type Instance struct {
	PC       int
	regs     [numRegisters]Cell
	memory   []Cell
	program  []instr.Instruction
	input    *bufio.Reader
	output   io.Writer
	halted   bool
	insCount int64
}

// New constructs an Instance ready to execute program.
func New(program []instr.Instruction, opts ...Option) *Instance {
	i := &Instance{program: program}
	for _, opt := range opts {
		opt(i)
	}
	if i.memory == nil {
		i.memory = make([]Cell, 1024)
	}
	if i.input == nil {
		i.input = bufio.NewReader(strings.NewReader(""))
	}
	return i
}

// Register returns the current value of register name ("a".."h").
func (i *Instance) Register(name string) (Cell, bool) {
	idx, ok := regIndex(name)
	if !ok {
		return 0, false
	}
	return i.regs[idx], true
}

// Memory returns the cell at addr, or 0 when addr is outside the backing
// store (which is never grown).
func (i *Instance) Memory(addr int) Cell {
	if addr < 0 || addr >= len(i.memory) {
		return 0
	}
	return i.memory[addr]
}

// InstructionsExecuted is the running instruction-count counter, surfaced
// for the "koszt" cost instrumentation the original test harness expected.
func (i *Instance) InstructionsExecuted() int64 {
	return i.insCount
}

func satSub(a, b Cell) Cell {
	if a-b < 0 {
		return 0
	}
	return a - b
}

func (i *Instance) cellAtAddr(addr int) (*Cell, error) {
	if addr < 0 || addr >= len(i.memory) {
		return nil, errors.Errorf("memory address %d out of range [0,%d)", addr, len(i.memory))
	}
	return &i.memory[addr], nil
}

func (i *Instance) cellAt(idxStr string) (*Cell, error) {
	addr, err := strconv.Atoi(idxStr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid memory operand %q", idxStr)
	}
	return i.cellAtAddr(addr)
}

// Run executes the program until HALT or the instruction stream runs out.
func (i *Instance) Run() error {
	for i.PC < len(i.program) && !i.halted {
		if err := i.step(); err != nil {
			return errors.Wrapf(err, "at pc=%d", i.PC)
		}
	}
	return nil
}

func (i *Instance) step() error {
	ins := i.program[i.PC]
	a := &i.regs[0]

	switch ins.Op {
	case instr.RST:
		idx, ok := regIndex(ins.Arg)
		if !ok {
			return errors.Errorf("RST: bad register %q", ins.Arg)
		}
		i.regs[idx] = 0
		i.PC++

	case instr.INC:
		idx, ok := regIndex(ins.Arg)
		if !ok {
			return errors.Errorf("INC: bad register %q", ins.Arg)
		}
		i.regs[idx]++
		i.PC++

	case instr.DEC:
		idx, ok := regIndex(ins.Arg)
		if !ok {
			return errors.Errorf("DEC: bad register %q", ins.Arg)
		}
		i.regs[idx] = satSub(i.regs[idx], 1)
		i.PC++

	case instr.SHL:
		idx, ok := regIndex(ins.Arg)
		if !ok {
			return errors.Errorf("SHL: bad register %q", ins.Arg)
		}
		i.regs[idx] <<= 1
		i.PC++

	case instr.SHR:
		idx, ok := regIndex(ins.Arg)
		if !ok {
			return errors.Errorf("SHR: bad register %q", ins.Arg)
		}
		i.regs[idx] >>= 1
		i.PC++

	case instr.ADD:
		idx, ok := regIndex(ins.Arg)
		if !ok {
			return errors.Errorf("ADD: bad register %q", ins.Arg)
		}
		*a += i.regs[idx]
		i.PC++

	case instr.SUB:
		idx, ok := regIndex(ins.Arg)
		if !ok {
			return errors.Errorf("SUB: bad register %q", ins.Arg)
		}
		*a = satSub(*a, i.regs[idx])
		i.PC++

	case instr.SWP:
		idx, ok := regIndex(ins.Arg)
		if !ok {
			return errors.Errorf("SWP: bad register %q", ins.Arg)
		}
		*a, i.regs[idx] = i.regs[idx], *a
		i.PC++

	case instr.LOAD:
		cell, err := i.cellAt(ins.Arg)
		if err != nil {
			return err
		}
		*a = *cell
		i.PC++

	case instr.STORE:
		cell, err := i.cellAt(ins.Arg)
		if err != nil {
			return err
		}
		*cell = *a
		i.PC++

	case instr.RLOAD:
		idx, ok := regIndex(ins.Arg)
		if !ok {
			return errors.Errorf("RLOAD: bad register %q", ins.Arg)
		}
		cell, err := i.cellAtAddr(int(i.regs[idx]))
		if err != nil {
			return err
		}
		*a = *cell
		i.PC++

	case instr.RSTORE:
		idx, ok := regIndex(ins.Arg)
		if !ok {
			return errors.Errorf("RSTORE: bad register %q", ins.Arg)
		}
		cell, err := i.cellAtAddr(int(i.regs[idx]))
		if err != nil {
			return err
		}
		*cell = *a
		i.PC++

	case instr.READ:
		v, err := i.readInt()
		if err != nil {
			return err
		}
		*a = v
		i.PC++

	case instr.WRITE:
		if i.output != nil {
			fmt.Fprintln(i.output, int64(*a))
		}
		i.PC++

	case instr.JUMP:
		target, err := strconv.Atoi(ins.Arg)
		if err != nil {
			return err
		}
		i.PC = target

	case instr.JZERO:
		target, err := strconv.Atoi(ins.Arg)
		if err != nil {
			return err
		}
		if *a == 0 {
			i.PC = target
		} else {
			i.PC++
		}

	case instr.JPOS:
		target, err := strconv.Atoi(ins.Arg)
		if err != nil {
			return err
		}
		if *a > 0 {
			i.PC = target
		} else {
			i.PC++
		}

	case instr.CALL:
		target, err := strconv.Atoi(ins.Arg)
		if err != nil {
			return err
		}
		*a = Cell(i.PC + 1)
		i.PC = target

	case instr.RTRN:
		i.PC = int(*a)

	case instr.HALT:
		i.halted = true

	default:
		return errors.Errorf("unknown opcode %q", ins.Op)
	}

	i.insCount++
	return nil
}

func (i *Instance) readInt() (Cell, error) {
	var v int64
	if _, err := fmt.Fscan(i.input, &v); err != nil {
		return 0, errors.Wrap(err, "READ: no more input")
	}
	if v < 0 {
		return 0, errors.Errorf("READ: negative input %d is not representable", v)
	}
	return Cell(v), nil
}

