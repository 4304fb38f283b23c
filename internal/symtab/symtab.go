// Package symtab implements the memory and symbol manager (spec §4.1): it
// allocates VM memory cells to scalars, arrays, parameter cells and hidden
// FOR bookkeeping cells, and resolves names against a two-level scope
// (global plus at most one active procedure scope).
//
// Allocation is deterministic and monotonic: once a cell is handed out it
// is never reused, so compilation is reproducible given declaration order
// (spec §8, property 1).
package symtab

import (
	"slc/internal/errs"
)

// Symbol is implemented by *Scalar, *Array and *Procedure.
type Symbol interface {
	symbolNode()
	SymbolName() string
}

// Scalar is a single-cell variable: a plain local, a FOR iterator, or a
// scalar/input/output parameter.
type Scalar struct {
	Name          string
	Scope         string
	Cell          int
	IsInitialized bool
	IsConst       bool
	IsIterator    bool
	IsParam       bool
	IsReference   bool
}

// Array is a 1-D array, own or reference. For a reference the bounds are
// not known statically: LoCell holds the address of the cell carrying the
// caller's low bound (spec §9, "array-parameter low bounds").
type Array struct {
	Name       string
	Scope      string
	BaseCell   int
	Lo, Hi     int
	IsParam    bool
	IsReference bool
	LoCell     int // valid only when IsReference
}

// Procedure records a declared procedure's signature and the callee-side
// cells codegen must populate before CALL.
type Procedure struct {
	Name             string
	Formals          []FormalKind
	ParamCells       []ParamCells
	ReturnAddrCell   int
}

// FormalKind classifies a formal parameter for call-site kind checking.
type FormalKind int

const (
	KindInput FormalKind = iota
	KindScalarRef
	KindArrayRef
)

// ParamCells gives the callee cell(s) to populate for one formal: Base for
// scalars/inputs and an array's base address; Lo is only meaningful for
// array formals (the low-bound cell, -1 otherwise).
type ParamCells struct {
	Base int
	Lo   int
}

func (*Scalar) symbolNode()    {}
func (*Array) symbolNode()     {}
func (*Procedure) symbolNode() {}

func (s *Scalar) SymbolName() string    { return s.Name }
func (a *Array) SymbolName() string     { return a.Name }
func (p *Procedure) SymbolName() string { return p.Name }

const globalScope = "global"

// Context owns all allocation and scoping state for one compilation. It
// replaces what the teacher's frontend/analyzer kept as ad-hoc global
// state (memory counter, proc table, scope dictionary) with a single value
// threaded explicitly through every pass.
type Context struct {
	memoryCounter int
	scopes        map[string]map[string]Symbol
	currentScope  string
	Procedures    map[string]*Procedure
}

// NewContext returns an empty Context with just the global scope.
func NewContext() *Context {
	return &Context{
		scopes:       map[string]map[string]Symbol{globalScope: {}},
		currentScope: globalScope,
		Procedures:   map[string]*Procedure{},
	}
}

// EnterScope switches the active scope to name, creating it if unseen.
// There is at most one non-global scope active at a time: the SL has no
// nested procedures, so a single active procedure scope plus the global
// scope is sufficient.
func (c *Context) EnterScope(name string) {
	if _, ok := c.scopes[name]; !ok {
		c.scopes[name] = map[string]Symbol{}
	}
	c.currentScope = name
}

// ExitScope returns to the global scope.
func (c *Context) ExitScope() {
	c.currentScope = globalScope
}

// CurrentScope returns the name of the scope currently active.
func (c *Context) CurrentScope() string {
	return c.currentScope
}

// DeclareScalar allocates one cell for a new scalar in the current scope.
func (c *Context) DeclareScalar(name string, line int) (*Scalar, error) {
	scope := c.scopes[c.currentScope]
	if _, exists := scope[name]; exists {
		return nil, errs.New(errs.Semantic, line, 0, "'%s' already declared in this scope", name)
	}
	sym := &Scalar{Name: name, Scope: c.currentScope, Cell: c.memoryCounter}
	c.memoryCounter++
	scope[name] = sym
	return sym, nil
}

// DeclareArray allocates hi-lo+1 cells for a new own array.
func (c *Context) DeclareArray(name string, lo, hi, line int) (*Array, error) {
	scope := c.scopes[c.currentScope]
	if _, exists := scope[name]; exists {
		return nil, errs.New(errs.Semantic, line, 0, "'%s' already declared in this scope", name)
	}
	if lo > hi {
		return nil, errs.New(errs.Semantic, line, 0, "invalid array range [%d:%d] for '%s'", lo, hi, name)
	}
	sym := &Array{Name: name, Scope: c.currentScope, BaseCell: c.memoryCounter, Lo: lo, Hi: hi}
	c.memoryCounter += hi - lo + 1
	scope[name] = sym
	return sym, nil
}

// DeclareScalarParam allocates a parameter cell: one cell always, marked
// const+initialized for Input, reference otherwise.
func (c *Context) DeclareScalarParam(name string, isInput bool, line int) (*Scalar, error) {
	sym, err := c.DeclareScalar(name, line)
	if err != nil {
		return nil, err
	}
	sym.IsParam = true
	if isInput {
		sym.IsConst = true
		sym.IsInitialized = true
	} else {
		sym.IsReference = true
	}
	return sym, nil
}

// DeclareArrayParam allocates a reference array parameter: one base-address
// cell plus one low-bound cell (spec §9).
func (c *Context) DeclareArrayParam(name string, line int) (*Array, error) {
	scope := c.scopes[c.currentScope]
	if _, exists := scope[name]; exists {
		return nil, errs.New(errs.Semantic, line, 0, "'%s' already declared in this scope", name)
	}
	sym := &Array{
		Name:        name,
		Scope:       c.currentScope,
		BaseCell:    c.memoryCounter,
		IsParam:     true,
		IsReference: true,
	}
	c.memoryCounter++
	sym.LoCell = c.memoryCounter
	c.memoryCounter++
	scope[name] = sym
	return sym, nil
}

// DeclareHiddenCell allocates a single unnamed cell (FOR limit, procedure
// return address) and binds it under name in the current scope so Undeclare
// can remove it again once the construct's lexical extent ends.
func (c *Context) DeclareHiddenCell(name string) *Scalar {
	scope := c.scopes[c.currentScope]
	sym := &Scalar{Name: name, Scope: c.currentScope, Cell: c.memoryCounter, IsInitialized: true}
	c.memoryCounter++
	scope[name] = sym
	return sym
}

// AllocCell hands out one unnamed memory cell, for codegen's own bookkeeping
// (e.g. spilling an expression's left operand across the code generated for
// its right operand). Unlike DeclareHiddenCell it is never bound into a
// scope: nothing ever looks it up by name, so there is nothing to Undeclare.
func (c *Context) AllocCell() int {
	cell := c.memoryCounter
	c.memoryCounter++
	return cell
}

// Undeclare removes name from the current scope without reclaiming its
// cell. Used by FOR to make the iterator/limit cells invisible once the
// loop body closes, while the cells themselves remain allocated forever
// (spec §9: monotonic growth is the chosen, safe strategy).
func (c *Context) Undeclare(name string) {
	delete(c.scopes[c.currentScope], name)
}

// Resolve looks up name in the current scope then the global scope.
func (c *Context) Resolve(name string, line int) (Symbol, error) {
	if sym, ok := c.scopes[c.currentScope][name]; ok {
		return sym, nil
	}
	if c.currentScope != globalScope {
		if sym, ok := c.scopes[globalScope][name]; ok {
			return sym, nil
		}
	}
	return nil, errs.New(errs.Semantic, line, 0, "'%s' is not declared", name)
}

// DeclareProcedure registers a procedure's signature. Must be called before
// any of its formals are declared into its own scope.
func (c *Context) DeclareProcedure(name string, line int) (*Procedure, error) {
	if _, exists := c.Procedures[name]; exists {
		return nil, errs.New(errs.Semantic, line, 0, "procedure '%s' already defined", name)
	}
	proc := &Procedure{Name: name}
	c.Procedures[name] = proc
	return proc, nil
}

// MemoryCells returns the number of distinct memory cells allocated so far,
// i.e. the VM memory size a running program needs at minimum.
func (c *Context) MemoryCells() int {
	return c.memoryCounter
}
