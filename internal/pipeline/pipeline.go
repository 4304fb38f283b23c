// Package pipeline wires the compiler stages into the single entry point a
// driver (cmd/slc, or a test) calls: semantic analysis, code generation,
// label resolution and peephole optimization, run strictly in that order
// and aborting on the first error (spec §5 and §7 — compilation is
// single-threaded and synchronous, with no recovery).
//
// Turning SL source text into the *ast.Program that Compile consumes is
// internal/lexer and internal/parser's job; this package starts one stage
// later, from an already-typed tree, so tests can build one by hand
// without going through source text at all.
package pipeline

import (
	"slc/internal/ast"
	"slc/internal/codegen"
	"slc/internal/instr"
	"slc/internal/peephole"
	"slc/internal/resolve"
	"slc/internal/sema"
	"slc/internal/symtab"
)

// Result carries every intermediate artifact a verbose driver may want to
// report, alongside the final instruction listing.
type Result struct {
	Context  *symtab.Context
	Symbolic instr.Program
	Resolved []instr.Instruction
	Final    []instr.Instruction
}

// Compile runs the full pipeline over prog and returns every stage's
// output. On error, whichever fields were already produced are still
// populated, to support -v diagnostics on a failed compile.
func Compile(prog *ast.Program) (Result, error) {
	var res Result

	ctx, err := sema.Analyze(prog)
	res.Context = ctx
	if err != nil {
		return res, err
	}

	res.Symbolic = codegen.Generate(prog, ctx)

	resolved, err := resolve.Resolve(res.Symbolic)
	res.Resolved = resolved
	if err != nil {
		return res, err
	}

	res.Final = peephole.Optimize(resolved)
	return res, nil
}

// Render converts a resolved instruction stream into the textual listing
// format spec §6 defines: one instruction per line, "OP" or "OP ARG".
func Render(program []instr.Instruction) []string {
	lines := make([]string, len(program))
	for i, ins := range program {
		lines[i] = ins.String()
	}
	return lines
}
