package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slc/internal/ast"
	"slc/internal/parser"
	"slc/internal/vm"
)

// scalar builds a fresh *ast.Scalar reference to name, as a parser would
// emit one at each use site.
func scalar(ids *ast.IDGen, line int, name string) *ast.Scalar {
	return &ast.Scalar{Pos: ast.Pos{Line: line, ID: ids.NewID()}, Name: name}
}

func identExpr(ids *ast.IDGen, line int, name string) ast.Expr {
	return &ast.IdentExpr{Pos: ast.Pos{Line: line, ID: ids.NewID()}, Id: scalar(ids, line, name)}
}

func binExpr(ids *ast.IDGen, line int, op ast.BinOp, left, right ast.Expr) ast.Expr {
	return &ast.BinExpr{Pos: ast.Pos{Line: line, ID: ids.NewID()}, Op: op, Left: left, Right: right}
}

// buildModDivAddSub constructs scenario 1 from spec §8: reads a,b, writes
// a%b, a/b, a+b, a-b.
func buildModDivAddSub() *ast.Program {
	ids := &ast.IDGen{}
	pos := func() ast.Pos { return ast.Pos{Line: 1, ID: ids.NewID()} }

	write := func(op ast.BinOp) ast.Command {
		return &ast.Write{
			Pos:   pos(),
			Value: binExpr(ids, 1, op, identExpr(ids, 1, "a"), identExpr(ids, 1, "b")),
		}
	}

	return &ast.Program{
		Main: &ast.Main{
			Decls: []ast.Declaration{
				&ast.VarDecl{Pos: pos(), Name: "a"},
				&ast.VarDecl{Pos: pos(), Name: "b"},
			},
			Body: []ast.Command{
				&ast.Read{Pos: pos(), Target: scalar(ids, 1, "a")},
				&ast.Read{Pos: pos(), Target: scalar(ids, 1, "b")},
				write(ast.OpMod),
				write(ast.OpDiv),
				write(ast.OpAdd),
				write(ast.OpSub),
			},
		},
	}
}

func compileAndRun(t *testing.T, prog *ast.Program, input string) string {
	t.Helper()
	res, err := Compile(prog)
	require.NoError(t, err)

	var out bytes.Buffer
	instance := vm.New(res.Final, vm.Input(strings.NewReader(input)), vm.Output(&out))
	require.NoError(t, instance.Run())
	return out.String()
}

func TestScenarioModDivAddSub(t *testing.T) {
	got := compileAndRun(t, buildModDivAddSub(), "12 8")
	assert.Equal(t, "4\n1\n20\n4\n", got)
}

func TestScenarioDivisionByZero(t *testing.T) {
	got := compileAndRun(t, buildModDivAddSub(), "10 0")
	assert.Equal(t, "0\n0\n10\n10\n", got)
}

func TestScenarioForLoopAccumulate(t *testing.T) {
	// FOR i FROM 0 TO (n-1) DO sum := sum + i; reads n, writes sum.
	ids := &ast.IDGen{}
	pos := func() ast.Pos { return ast.Pos{Line: 1, ID: ids.NewID()} }

	prog := &ast.Program{
		Main: &ast.Main{
			Decls: []ast.Declaration{
				&ast.VarDecl{Pos: pos(), Name: "n"},
				&ast.VarDecl{Pos: pos(), Name: "sum"},
				&ast.VarDecl{Pos: pos(), Name: "i"},
			},
			Body: []ast.Command{
				&ast.Read{Pos: pos(), Target: scalar(ids, 1, "n")},
				&ast.Assign{Pos: pos(), Target: scalar(ids, 1, "sum"), Value: &ast.Num{Pos: pos(), Value: 0}},
				&ast.ForTo{
					Pos:  pos(),
					Var:  "i",
					From: &ast.Num{Pos: pos(), Value: 0},
					To:   binExpr(ids, 1, ast.OpSub, identExpr(ids, 1, "n"), &ast.Num{Pos: pos(), Value: 1}),
					Body: []ast.Command{
						&ast.Assign{
							Pos:    pos(),
							Target: scalar(ids, 1, "sum"),
							Value:  binExpr(ids, 1, ast.OpAdd, identExpr(ids, 1, "sum"), identExpr(ids, 1, "i")),
						},
					},
				},
				&ast.Write{Pos: pos(), Value: identExpr(ids, 1, "sum")},
			},
		},
	}

	got := compileAndRun(t, prog, "10")
	assert.Equal(t, "45\n", got)
}

// compileAndRunSource parses src with the real frontend and runs it,
// exercising codegen through parenthesised expressions exactly as a user
// program would produce them (the recursive-descent grammar lets a
// parenthesised right operand recurse through the same family of helper
// routines the outer operator is already using).
func compileAndRunSource(t *testing.T, src, input string) string {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	return compileAndRun(t, prog, input)
}

func TestNestedAddDoesNotClobberLeftOperand(t *testing.T) {
	got := compileAndRunSource(t, `
PROGRAM IS
	a, b, c
IN
	a := 1; b := 2; c := 3;
	WRITE a + (b + c);
END
`, "")
	assert.Equal(t, "6\n", got)
}

func TestNestedSubDoesNotClobberLeftOperand(t *testing.T) {
	got := compileAndRunSource(t, `
PROGRAM IS
	a, b, c
IN
	a := 10; b := 7; c := 2;
	WRITE a - (b - c);
END
`, "")
	assert.Equal(t, "5\n", got)
}

func TestNestedMulDoesNotClobberLeftOperand(t *testing.T) {
	// b*c is itself non-constant, so it recurses through genMulGeneral,
	// which is exactly the family of registers (c/d/e) the outer
	// multiplication is using for its own left operand.
	got := compileAndRunSource(t, `
PROGRAM IS
	a, b, c
IN
	a := 2; b := 3; c := 4;
	WRITE a * (b * c);
END
`, "")
	assert.Equal(t, "24\n", got)
}

func TestNestedDivModDoNotClobberLeftOperand(t *testing.T) {
	// b/c is non-constant, recursing through genDivMod just like the outer
	// division/modulo — the same register family (c/d/e/f/g) clash that
	// genMulGeneral above exercises for multiplication.
	got := compileAndRunSource(t, `
PROGRAM IS
	a, b, c
IN
	a := 23; b := 20; c := 2;
	WRITE a / (b / c);
	WRITE a % (b / c);
END
`, "")
	assert.Equal(t, "2\n3\n", got)
}

func TestNestedConditionDoesNotClobberLeftOperand(t *testing.T) {
	// genCondition stashes cond.Left before evaluating cond.Right; b*c
	// recurses through genMulGeneral, which shares registers c/d with
	// genCondition's own c/d bookkeeping.
	got := compileAndRunSource(t, `
PROGRAM IS
	a, b, c
IN
	a := 10; b := 3; c := 4;
	IF a < (b * c) THEN
		WRITE 1;
	ELSE
		WRITE 0;
	ENDIF
END
`, "")
	assert.Equal(t, "1\n", got)
}

func TestRenderRoundTripsThroughParseProgram(t *testing.T) {
	res, err := Compile(buildModDivAddSub())
	require.NoError(t, err)

	lines := Render(res.Final)
	reparsed, err := ParseProgram(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	assert.Equal(t, res.Final, reparsed)
}
