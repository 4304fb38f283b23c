package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slc/internal/ast"
)

func TestParseMainWithDeclarationsAndAssign(t *testing.T) {
	prog, err := Parse(`
PROGRAM IS
	a, b[0:9]
IN
	a := 1 + 2 * 3;
	b[0] := a;
END
`)
	require.NoError(t, err)
	require.Empty(t, prog.Procedures)
	require.Len(t, prog.Main.Decls, 2)

	assert.IsType(t, &ast.VarDecl{}, prog.Main.Decls[0])
	arr, ok := prog.Main.Decls[1].(*ast.ArrayDecl)
	require.True(t, ok)
	assert.Equal(t, 0, arr.Lo)
	assert.Equal(t, 9, arr.Hi)

	require.Len(t, prog.Main.Body, 2)
	assign, ok := prog.Main.Body[0].(*ast.Assign)
	require.True(t, ok)
	bin, ok := assign.Value.(*ast.BinExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)
}

func TestParseIfWhileRepeatFor(t *testing.T) {
	prog, err := Parse(`
PROGRAM IS
	a, b, i
IN
	IF a < b THEN
		a := b;
	ELSE
		b := a;
	ENDIF
	WHILE a < b DO
		a := a + 1;
	ENDWHILE
	REPEAT
		a := a - 1;
	UNTIL a = 0;
	FOR i FROM 0 TO 9 DO
		WRITE i;
	ENDFOR
END
`)
	require.NoError(t, err)
	require.Len(t, prog.Main.Body, 4)

	ifCmd, ok := prog.Main.Body[0].(*ast.If)
	require.True(t, ok)
	assert.Len(t, ifCmd.Then, 1)
	assert.Len(t, ifCmd.Else, 1)

	assert.IsType(t, &ast.While{}, prog.Main.Body[1])
	assert.IsType(t, &ast.Repeat{}, prog.Main.Body[2])

	forCmd, ok := prog.Main.Body[3].(*ast.ForTo)
	require.True(t, ok)
	assert.Equal(t, "i", forCmd.Var)
}

func TestParseForDowntoVariant(t *testing.T) {
	prog, err := Parse(`
PROGRAM IS
	i
IN
	FOR i FROM 9 DOWNTO 0 DO
		WRITE i;
	ENDFOR
END
`)
	require.NoError(t, err)
	require.Len(t, prog.Main.Body, 1)
	assert.IsType(t, &ast.ForDownto{}, prog.Main.Body[0])
}

func TestParseProcedureWithFormalMarkers(t *testing.T) {
	prog, err := Parse(`
PROCEDURE add(i x, i y, o z) IS
IN
	z := x + y;
END
PROGRAM IS
	a, b, c
IN
	add(a, b, c);
END
`)
	require.NoError(t, err)
	require.Len(t, prog.Procedures, 1)
	proc := prog.Procedures[0]
	assert.Equal(t, "add", proc.Name)
	require.Len(t, proc.Formals, 3)
	assert.IsType(t, &ast.InputFormal{}, proc.Formals[0])
	assert.IsType(t, &ast.InputFormal{}, proc.Formals[1])
	assert.IsType(t, &ast.OutputFormal{}, proc.Formals[2])

	call, ok := prog.Main.Body[0].(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "add", call.Name)
	assert.Equal(t, []string{"a", "b", "c"}, call.Actuals)
}

func TestParseArrayIndexingByConstAndVariable(t *testing.T) {
	prog, err := Parse(`
PROGRAM IS
	a[0:9], i
IN
	a[0] := 1;
	a[i] := 2;
END
`)
	require.NoError(t, err)
	require.Len(t, prog.Main.Body, 2)

	assign0 := prog.Main.Body[0].(*ast.Assign)
	_, ok := assign0.Target.(*ast.IndexedByConst)
	require.True(t, ok)

	assign1 := prog.Main.Body[1].(*ast.Assign)
	_, ok = assign1.Target.(*ast.IndexedByVar)
	require.True(t, ok)
}

func TestParseRejectsSyntaxError(t *testing.T) {
	_, err := Parse(`PROGRAM IS IN a := ; END`)
	assert.Error(t, err)
}

func TestParseRejectsLexicalError(t *testing.T) {
	_, err := Parse(`PROGRAM IS IN a := 1 $ 2; END`)
	assert.Error(t, err)
}
