// Package sema implements the semantic analyzer (spec §4.2): one pass over
// procedures then main, checking declarations, initialization, parameter
// compatibility and iterator-const enforcement, while populating the
// symtab.Context that codegen consumes and annotating every identifier
// occurrence with its resolved symbol (ast.Scalar.Entry and friends) so
// codegen never has to re-run scope resolution.
//
// The analyzer aborts on the first error (spec §7): there is no local
// recovery and no warnings.
package sema

import (
	"slc/internal/ast"
	"slc/internal/errs"
	"slc/internal/symtab"
)

// Analyze type-checks prog and returns the populated symbol table context.
func Analyze(prog *ast.Program) (*symtab.Context, error) {
	ctx := symtab.NewContext()

	// Each procedure is declared and its body checked in source order, so
	// a call resolves only to the calling procedure itself or one defined
	// before it; recursion is rejected separately (checkNoRecursion).
	for _, proc := range prog.Procedures {
		if err := analyzeProcedure(ctx, proc); err != nil {
			return ctx, err
		}
	}

	if err := checkNoRecursion(prog); err != nil {
		return ctx, err
	}

	ctx.EnterScope("global")
	for _, decl := range prog.Main.Decls {
		if err := declare(ctx, decl); err != nil {
			return ctx, err
		}
	}
	for _, cmd := range prog.Main.Body {
		if err := analyzeCommand(ctx, cmd); err != nil {
			return ctx, err
		}
	}
	ctx.ExitScope()

	return ctx, nil
}

func declare(ctx *symtab.Context, decl ast.Declaration) error {
	switch d := decl.(type) {
	case *ast.VarDecl:
		_, err := ctx.DeclareScalar(d.Name, d.Line)
		return err
	case *ast.ArrayDecl:
		_, err := ctx.DeclareArray(d.Name, d.Lo, d.Hi, d.Line)
		return err
	default:
		return errs.New(errs.Semantic, 0, 0, "unknown declaration node %T", decl)
	}
}

func analyzeProcedure(ctx *symtab.Context, proc *ast.Procedure) error {
	procSym, err := ctx.DeclareProcedure(proc.Name, proc.Line)
	if err != nil {
		return err
	}
	ctx.EnterScope(proc.Name)

	for _, formal := range proc.Formals {
		switch f := formal.(type) {
		case *ast.InputFormal:
			s, err := ctx.DeclareScalarParam(f.Name, true, f.Line)
			if err != nil {
				return err
			}
			procSym.Formals = append(procSym.Formals, symtab.KindInput)
			procSym.ParamCells = append(procSym.ParamCells, symtab.ParamCells{Base: s.Cell, Lo: -1})
		case *ast.ScalarFormal:
			s, err := ctx.DeclareScalarParam(f.Name, false, f.Line)
			if err != nil {
				return err
			}
			procSym.Formals = append(procSym.Formals, symtab.KindScalarRef)
			procSym.ParamCells = append(procSym.ParamCells, symtab.ParamCells{Base: s.Cell, Lo: -1})
		case *ast.OutputFormal:
			s, err := ctx.DeclareScalarParam(f.Name, false, f.Line)
			if err != nil {
				return err
			}
			procSym.Formals = append(procSym.Formals, symtab.KindScalarRef)
			procSym.ParamCells = append(procSym.ParamCells, symtab.ParamCells{Base: s.Cell, Lo: -1})
		case *ast.ArrayFormal:
			a, err := ctx.DeclareArrayParam(f.Name, f.Line)
			if err != nil {
				return err
			}
			procSym.Formals = append(procSym.Formals, symtab.KindArrayRef)
			procSym.ParamCells = append(procSym.ParamCells, symtab.ParamCells{Base: a.BaseCell, Lo: a.LoCell})
		default:
			return errs.New(errs.Semantic, proc.Line, 0, "unknown formal node %T", formal)
		}
	}

	retSym := ctx.DeclareHiddenCell("_retaddr_" + proc.Name)
	procSym.ReturnAddrCell = retSym.Cell

	for _, decl := range proc.Decls {
		if err := declare(ctx, decl); err != nil {
			return err
		}
	}
	for _, cmd := range proc.Body {
		if err := analyzeCommand(ctx, cmd); err != nil {
			return err
		}
	}

	ctx.ExitScope()
	return nil
}

func analyzeCommand(ctx *symtab.Context, cmd ast.Command) error {
	switch c := cmd.(type) {
	case *ast.Assign:
		sym, err := resolveWrite(ctx, c.Target)
		if err != nil {
			return err
		}
		if err := analyzeExpr(ctx, c.Value); err != nil {
			return err
		}
		markInitialized(sym)
		return nil

	case *ast.Read:
		sym, err := resolveWrite(ctx, c.Target)
		if err != nil {
			return err
		}
		markInitialized(sym)
		return nil

	case *ast.Write:
		return analyzeExpr(ctx, c.Value)

	case *ast.If:
		if err := analyzeCondition(ctx, c.Cond); err != nil {
			return err
		}
		if err := analyzeCommands(ctx, c.Then); err != nil {
			return err
		}
		return analyzeCommands(ctx, c.Else)

	case *ast.While:
		if err := analyzeCondition(ctx, c.Cond); err != nil {
			return err
		}
		return analyzeCommands(ctx, c.Body)

	case *ast.Repeat:
		if err := analyzeCommands(ctx, c.Body); err != nil {
			return err
		}
		return analyzeCondition(ctx, c.Cond)

	case *ast.ForTo:
		return analyzeFor(ctx, c.Var, c.From, c.To, c.Body, c.Line,
			func(iter, limit int) { c.IterCell, c.LimitCell = iter, limit })

	case *ast.ForDownto:
		return analyzeFor(ctx, c.Var, c.From, c.To, c.Body, c.Line,
			func(iter, limit int) { c.IterCell, c.LimitCell = iter, limit })

	case *ast.Call:
		return analyzeCall(ctx, c)

	default:
		return errs.New(errs.Semantic, 0, 0, "unknown command node %T", cmd)
	}
}

func analyzeCommands(ctx *symtab.Context, cmds []ast.Command) error {
	for _, c := range cmds {
		if err := analyzeCommand(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// analyzeFor evaluates the loop bounds in the enclosing scope, declares the
// iterator (const, initialized) and a hidden limit cell, walks the body,
// then undeclares both names — their cells stay allocated forever (spec §9:
// monotonic growth is the chosen strategy, nested loops always get
// distinct cells). setCells reports the allocated cells back to the
// ForTo/ForDownto node so codegen never has to re-derive them.
func analyzeFor(ctx *symtab.Context, iterName string, from, to ast.Expr, body []ast.Command, line int, setCells func(iter, limit int)) error {
	if err := analyzeExpr(ctx, from); err != nil {
		return err
	}
	if err := analyzeExpr(ctx, to); err != nil {
		return err
	}

	iterSym, err := ctx.DeclareScalar(iterName, line)
	if err != nil {
		return err
	}
	iterSym.IsConst = true
	iterSym.IsIterator = true
	iterSym.IsInitialized = true

	limitSym := ctx.DeclareHiddenCell("_for_limit_tmp")
	setCells(iterSym.Cell, limitSym.Cell)

	if err := analyzeCommands(ctx, body); err != nil {
		return err
	}

	ctx.Undeclare(iterName)
	ctx.Undeclare("_for_limit_tmp")
	return nil
}

func analyzeCall(ctx *symtab.Context, call *ast.Call) error {
	proc, ok := ctx.Procedures[call.Name]
	if !ok {
		return errs.New(errs.Semantic, call.Line, 0, "call to undefined procedure '%s'", call.Name)
	}
	if len(call.Actuals) != len(proc.Formals) {
		return errs.New(errs.Semantic, call.Line, 0,
			"procedure '%s' expects %d arguments, got %d", call.Name, len(proc.Formals), len(call.Actuals))
	}
	call.ActualEntries = make([]symtab.Symbol, len(call.Actuals))
	for i, actualName := range call.Actuals {
		sym, err := ctx.Resolve(actualName, call.Line)
		if err != nil {
			return err
		}
		wantArray := proc.Formals[i] == symtab.KindArrayRef
		_, isArray := sym.(*symtab.Array)
		if wantArray && !isArray {
			return errs.New(errs.Semantic, call.Line, 0,
				"argument %d of '%s' expects an array, got scalar '%s'", i+1, call.Name, actualName)
		}
		if !wantArray && isArray {
			return errs.New(errs.Semantic, call.Line, 0,
				"argument %d of '%s' expects a scalar, got array '%s'", i+1, call.Name, actualName)
		}
		call.ActualEntries[i] = sym
	}
	return nil
}

func analyzeExpr(ctx *symtab.Context, expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.Num:
		return nil
	case *ast.IdentExpr:
		_, err := resolveUse(ctx, e.Id)
		return err
	case *ast.BinExpr:
		if err := analyzeExpr(ctx, e.Left); err != nil {
			return err
		}
		return analyzeExpr(ctx, e.Right)
	default:
		return errs.New(errs.Semantic, 0, 0, "unknown expression node %T", expr)
	}
}

func analyzeCondition(ctx *symtab.Context, cond ast.Condition) error {
	if err := analyzeExpr(ctx, cond.Left); err != nil {
		return err
	}
	return analyzeExpr(ctx, cond.Right)
}

// resolveUse resolves an identifier appearing in read position, enforcing
// scalar-initialization and array/scalar kind agreement, and stamps the
// resolved symbol(s) onto the node for codegen to read back later.
func resolveUse(ctx *symtab.Context, id ast.Identifier) (symtab.Symbol, error) {
	switch n := id.(type) {
	case *ast.Scalar:
		sym, err := ctx.Resolve(n.Name, n.Line)
		if err != nil {
			return nil, err
		}
		s, ok := sym.(*symtab.Scalar)
		if !ok {
			return nil, errs.New(errs.Semantic, n.Line, 0, "'%s' is an array, used without index", n.Name)
		}
		if !s.IsInitialized {
			return nil, errs.New(errs.Semantic, n.Line, 0, "use of uninitialized variable '%s'", n.Name)
		}
		n.Entry = s
		return s, nil

	case *ast.IndexedByConst:
		sym, err := ctx.Resolve(n.Array, n.Line)
		if err != nil {
			return nil, err
		}
		a, ok := sym.(*symtab.Array)
		if !ok {
			return nil, errs.New(errs.Semantic, n.Line, 0, "'%s' is a scalar, accessed as array", n.Array)
		}
		n.Entry = a
		return a, nil

	case *ast.IndexedByVar:
		sym, err := ctx.Resolve(n.Array, n.Line)
		if err != nil {
			return nil, err
		}
		a, ok := sym.(*symtab.Array)
		if !ok {
			return nil, errs.New(errs.Semantic, n.Line, 0, "'%s' is a scalar, accessed as array", n.Array)
		}
		idxSym, err := ctx.Resolve(n.IndexVar, n.Line)
		if err != nil {
			return nil, err
		}
		idx, ok := idxSym.(*symtab.Scalar)
		if !ok {
			return nil, errs.New(errs.Semantic, n.Line, 0, "array index '%s' is itself an array", n.IndexVar)
		}
		if !idx.IsInitialized {
			return nil, errs.New(errs.Semantic, n.Line, 0, "array index '%s' is uninitialized", n.IndexVar)
		}
		n.Entry = a
		n.IndexEntry = idx
		return a, nil

	default:
		return nil, errs.New(errs.Semantic, 0, 0, "unknown identifier node %T", id)
	}
}

// resolveWrite resolves an identifier in write position (ASSIGN/READ
// target), rejecting const/iterator targets. It shares resolveUse's kind
// checks and node annotation; the only divergence is that a scalar target
// need not already be initialized.
func resolveWrite(ctx *symtab.Context, id ast.Identifier) (symtab.Symbol, error) {
	switch n := id.(type) {
	case *ast.Scalar:
		sym, err := ctx.Resolve(n.Name, n.Line)
		if err != nil {
			return nil, err
		}
		s, ok := sym.(*symtab.Scalar)
		if !ok {
			return nil, errs.New(errs.Semantic, n.Line, 0, "'%s' is an array, used without index", n.Name)
		}
		if s.IsConst {
			return nil, errs.New(errs.Semantic, n.Line, 0, "cannot assign to constant or iterator '%s'", s.Name)
		}
		n.Entry = s
		return s, nil

	case *ast.IndexedByConst, *ast.IndexedByVar:
		return resolveUse(ctx, id)

	default:
		return nil, errs.New(errs.Semantic, 0, 0, "unknown identifier node %T", id)
	}
}

func markInitialized(sym symtab.Symbol) {
	if s, ok := sym.(*symtab.Scalar); ok {
		s.IsInitialized = true
	}
}

// checkNoRecursion rejects direct or indirect self-calls: the VM has one
// return-address cell per procedure (spec §9), so recursion would clobber
// it.
func checkNoRecursion(prog *ast.Program) error {
	graph := map[string][]string{}
	for _, proc := range prog.Procedures {
		graph[proc.Name] = callees(proc.Body)
	}
	for name := range graph {
		visited := map[string]bool{}
		if reaches(graph, name, name, visited) {
			return errs.New(errs.Semantic, 0, 0, "procedure '%s' is (directly or indirectly) recursive", name)
		}
	}
	return nil
}

func callees(cmds []ast.Command) []string {
	var out []string
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case *ast.Call:
			out = append(out, c.Name)
		case *ast.If:
			out = append(out, callees(c.Then)...)
			out = append(out, callees(c.Else)...)
		case *ast.While:
			out = append(out, callees(c.Body)...)
		case *ast.Repeat:
			out = append(out, callees(c.Body)...)
		case *ast.ForTo:
			out = append(out, callees(c.Body)...)
		case *ast.ForDownto:
			out = append(out, callees(c.Body)...)
		}
	}
	return out
}

// reaches reports whether target is reachable from start by following one
// or more call edges (so a direct self-call is caught on the first edge).
func reaches(graph map[string][]string, start, target string, visited map[string]bool) bool {
	for _, callee := range graph[start] {
		if callee == target {
			return true
		}
		if visited[callee] {
			continue
		}
		visited[callee] = true
		if reaches(graph, callee, target, visited) {
			return true
		}
	}
	return false
}
