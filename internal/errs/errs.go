// Package errs provides the structured error kinds reported by every
// compiler stage: lexical, syntax, semantic and I/O errors carry a source
// location where one applies, so the CLI can print "line L: Kind: message".
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind distinguishes the category of a compile error. The categories are
// the ones a caller needs to branch on; they are not Go types because every
// stage past the frontend reports through the same CompileError shape.
type Kind int

const (
	Lexical Kind = iota
	Syntax
	Semantic
	IO
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "Lexical"
	case Syntax:
		return "Syntax"
	case Semantic:
		return "Semantic"
	case IO:
		return "IO"
	default:
		return "Unknown"
	}
}

// CompileError is the structured error reported by every pass after the
// frontend. Line is 0 when no source position applies (e.g. IO errors).
type CompileError struct {
	Kind    Kind
	Message string
	Line    int
	Col     int
}

func (e *CompileError) Error() string {
	if e.Line > 0 && e.Col > 0 {
		return fmt.Sprintf("line %d, col %d: %s: %s", e.Line, e.Col, e.Kind, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a CompileError at the given source line (col 0 means unknown).
func New(kind Kind, line, col int, format string, args ...interface{}) error {
	return &CompileError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Col:     col,
	}
}

// Wrap attaches a stack trace to err via github.com/pkg/errors so that the
// full cause chain can be printed with %+v. The structured Kind
// of the innermost CompileError, if any, is preserved by callers inspecting
// errors.Cause(err).
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// Cause unwraps to the innermost error, mirroring errors.Cause.
func Cause(err error) error {
	return errors.Cause(err)
}
