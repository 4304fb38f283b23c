package pipeline

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"

	"slc/internal/instr"
)

// ParseProgram reads the textual instruction listing format Render
// produces (one "OP" or "OP ARG" per line, blank lines and "#"-prefixed
// comments ignored) back into an instruction stream runnable by the VM.
func ParseProgram(r io.Reader) ([]instr.Instruction, error) {
	var out []instr.Instruction
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		ins := instr.Instruction{Op: instr.Op(fields[0])}
		if len(fields) > 1 {
			ins.Arg = fields[1]
		}
		if len(fields) > 2 {
			return nil, errors.Errorf("line %d: too many fields in %q", lineNo, line)
		}
		out = append(out, ins)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading instruction listing")
	}
	return out, nil
}
