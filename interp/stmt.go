package interp

import "math"

// stmt is one node of the statement tree, mirroring exprNode's eval
// pattern: exec carries out spec.md 4.5's control-flow and declaration
// semantics, observing and setting Context.state for break/continue/
// return propagation.
type stmt interface {
	exec(c *Context)
}

// execStmt runs one statement unless the context is already unwinding
// from a break, continue, or return raised by a previous statement in
// the same block.
func (c *Context) execStmt(s stmt) {
	if c.state != stateRunning {
		return
	}
	s.exec(c)
}

type blockStmt struct{ body []stmt }

func (s *blockStmt) exec(c *Context) { execBlock(c, s.body) }

type exprStmt struct{ expr exprNode }

func (s *exprStmt) exec(c *Context) { s.expr.eval(c) }

type ifClause struct {
	cond exprNode
	body []stmt
}

type ifStmt struct {
	clauses  []ifClause
	elseBody []stmt
}

func (s *ifStmt) exec(c *Context) {
	for _, cl := range s.clauses {
		if cl.cond.eval(c).AsUint() != 0 {
			execBlock(c, cl.body)
			return
		}
	}
	execBlock(c, s.elseBody)
}

func execBlock(c *Context, body []stmt) {
	c.pushScope(scopeRegular)
	for _, st := range body {
		c.execStmt(st)
		if c.state != stateRunning {
			break
		}
	}
	c.popScope()
}

type whileStmt struct {
	cond exprNode
	body []stmt
}

func (s *whileStmt) exec(c *Context) {
	for s.cond.eval(c).AsUint() != 0 {
		c.pushScope(scopeBreakable)
		for _, st := range s.body {
			c.execStmt(st)
			if c.state != stateRunning {
				break
			}
		}
		c.popScope()
		switch c.state {
		case stateBreak:
			c.state = stateRunning
			return
		case stateContinue:
			c.state = stateRunning
		case stateReturn:
			return
		}
	}
}

// forStmt implements spec.md 4.5's `for <intT> name in (a,b) body`: the
// loop direction (ascending or descending) is decided once, by comparing
// the evaluated bounds, and each bracket independently chooses whether
// its own bound is inclusive or exclusive.
type forStmt struct {
	elemType          *Type
	name              string
	lo, hi            exprNode
	loInclusive       bool
	hiInclusive       bool
	body              []stmt
}

func (s *forStmt) exec(c *Context) {
	signed := !s.elemType.IsUnsigned
	lo := asSigned(convert(s.lo.eval(c), s.elemType).AsUint(), Sizeof(s.elemType), signed)
	hi := asSigned(convert(s.hi.eval(c), s.elemType).AsUint(), Sizeof(s.elemType), signed)

	direction := int64(0)
	if lo < hi {
		direction = 1
	} else if lo > hi {
		direction = -1
	}

	if direction == 0 && (!s.loInclusive || !s.hiInclusive) {
		return
	}

	from, to := lo, hi
	if !s.loInclusive {
		from += direction
	}
	if s.hiInclusive {
		to += direction
	}
	if direction == 0 {
		direction = 1
		to = from + 1
	}

	for i := from; i != to; i += direction {
		loop := c.pushScope(scopeBreakable)
		a, err := c.allocate(c.current, Sizeof(s.elemType), false, true)
		if err != nil {
			c.pushError(ErrKindMemory, Position{}, "allocation failure: %v", err)
			c.popScope()
			return
		}
		writeUint(a.Ptr, Sizeof(s.elemType), uint64(i))
		loop.vars = append(loop.vars, &Variable{Name: s.name, Type: s.elemType, Address: a.Ptr})

		for _, st := range s.body {
			c.execStmt(st)
			if c.state != stateRunning {
				break
			}
		}
		c.popScope()
		switch c.state {
		case stateBreak:
			c.state = stateRunning
			return
		case stateContinue:
			c.state = stateRunning
		case stateReturn:
			return
		}
	}
}

type returnStmt struct{ value exprNode }

func (s *returnStmt) exec(c *Context) {
	if s.value != nil {
		v := s.value.eval(c)
		if v.Type.Kind == KindFloat {
			c.returnSlot = math.Float64bits(v.AsFloat())
		} else {
			c.returnSlot = v.AsUint()
		}
	} else {
		c.returnSlot = 0
	}
	c.state = stateReturn
}

type breakStmt struct{}

func (s *breakStmt) exec(c *Context) { c.state = stateBreak }

type continueStmt struct{}

func (s *continueStmt) exec(c *Context) { c.state = stateContinue }

type includeStmt struct {
	path     string
	fromFile string // the including file, for relative path resolution
}

func (s *includeStmt) exec(c *Context) { c.includeFile(Position{File: s.fromFile}, s.path, s.fromFile) }

type varDecl struct {
	name   string
	init   exprNode
	fnType *Type    // set when this name was declared with a trailing (args) list
	body   []stmt   // set when the declaration carries its own function body
	params []string // parameter names parsed alongside body, in order
}

// declStmt covers both plain and extern variable declarations, per
// spec.md 4.5: `[extern] T name [= expr] (, name ...)? ;`. extern
// resolves each name against the host symbol table instead of
// allocating storage.
type declStmt struct {
	typ      *Type
	decls    []varDecl
	isExtern bool
}

func (s *declStmt) exec(c *Context) {
	for _, d := range s.decls {
		effType := s.typ
		if d.fnType != nil {
			effType = d.fnType
		}
		if s.isExtern {
			addr, ok := c.resolveSymbol(d.name)
			if !ok {
				c.pushError(ErrKindLinkage, Position{}, "extern %q: disallowed or unresolved", d.name)
				continue
			}
			c.declareVariable(Position{}, d.name, effType, addr, true)
			continue
		}
		if d.body != nil {
			// A function declaration's name binds directly to the
			// trampoline block's own address, with no separate storage
			// slot in between: a function identifier names the code, the
			// way a C function name decays to its own address rather than
			// denoting a variable that happens to hold a pointer. The
			// trampoline's backing allocation lives in the root scope,
			// matching an unscoped `new <Fn>{...}` literal, since a named
			// function declaration is meant to outlive the block it is
			// declared in.
			v := c.makeFunction(c.root, effType, d.body, d.params)
			c.declareVariable(Position{}, d.name, effType, uintptr(v.AsUint()), true)
			continue
		}
		a, err := c.allocate(c.current, Sizeof(effType), false, true)
		if err != nil {
			c.pushError(ErrKindMemory, Position{}, "allocation failure: %v", err)
			continue
		}
		c.declareVariable(Position{}, d.name, effType, a.Ptr, false)
		if d.init != nil {
			v := d.init.eval(c)
			StoreTo(a.Ptr, effType, v)
		}
	}
}

// typedefStmt registers a named type in the current runtime scope.
// Struct bodies and pointer stars were already resolved by the parser;
// this only makes the name visible to sizeof/infoof-style runtime
// lookups and to GetType, mirroring the parser's own compile-time table.
type typedefStmt struct {
	name string
	typ  *Type
}

func (s *typedefStmt) exec(c *Context) { c.declareTypedef(Position{}, s.name, s.typ) }
