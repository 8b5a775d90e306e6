package interp

import "github.com/pawscript-lang/pawscript/nativebridge"

// scopeKind distinguishes the three scope flavours from spec.md 3: a
// breakable scope is the body of a loop (break/continue land here), a
// function scope is a call frame (return lands here, and is also where
// variable lookup's function-boundary rule kicks in).
type scopeKind int

const (
	scopeRegular scopeKind = iota
	scopeBreakable
	scopeFunction
)

// Variable is (Type, address, no_alloc_flag) per spec.md 3. NoAlloc marks
// a view over memory owned elsewhere: a struct field, a parameter slot, or
// an externally supplied address.
type Variable struct {
	Name    string
	Type    *Type
	Address uintptr
	NoAlloc bool
}

// Allocation is (ptr, size, strict) per spec.md 3. Strict allocations back
// variable storage and free only with their owning scope; non-strict ones
// (from `new`) can be deleted early, adopted, or promoted.
type Allocation struct {
	Page   *nativebridge.Page
	Ptr    uintptr
	Size   int
	Strict bool
	freed  bool
}

// Scope is a lexical container: parent pointer, kind, and the variable /
// allocation / typedef lists owned at this level, per spec.md 3.
type Scope struct {
	parent *Scope
	kind   scopeKind
	depth  int

	vars        []*Variable
	allocations []*Allocation
	typedefs    map[string]*Type
}

func newScope(parent *Scope, kind scopeKind) *Scope {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &Scope{parent: parent, kind: kind, depth: depth, typedefs: map[string]*Type{}}
}

// pushScope enters a new nested scope of kind and makes it current.
func (c *Context) pushScope(kind scopeKind) *Scope {
	s := newScope(c.current, kind)
	c.current = s
	return s
}

// popScope frees everything the current scope owns — every strict
// variable allocation and every non-strict allocation still registered —
// then restores the parent as current, per spec.md 3's pop semantics.
func (c *Context) popScope() {
	s := c.current
	for _, a := range s.allocations {
		if !a.freed {
			freeAllocation(a)
		}
	}
	c.current = s.parent
}

func freeAllocation(a *Allocation) {
	if a.freed {
		return
	}
	a.freed = true
	a.Ptr = 0
	if a.Page != nil {
		a.Page.Free()
		a.Page = nil
	}
}

// declareVariable records name at address in the current scope. It does
// not allocate: the caller supplies the storage, and noAlloc marks an
// address borrowed from elsewhere. A name already used by a variable or
// typedef in the same scope queues a redeclaration error, and the new
// variable is still appended.
func (c *Context) declareVariable(pos Position, name string, t *Type, address uintptr, noAlloc bool) *Variable {
	if _, _, ok := c.current.findLocal(name); ok {
		c.pushError(ErrKindParse, pos, "redeclaration of %q in the same scope", name)
	}
	v := &Variable{Name: name, Type: t, Address: address, NoAlloc: noAlloc}
	c.current.vars = append(c.current.vars, v)
	return v
}

// allocate reserves a page-granular region in s's scope and registers it
// strict or non-strict, matching spec.md 4.3: the manager hands out whole
// pages, never reclaiming unused tail bytes.
func (c *Context) allocate(s *Scope, size int, exec, strict bool) (*Allocation, error) {
	page, err := nativebridge.NewPage(exec)
	if err != nil {
		return nil, err
	}
	a := &Allocation{Page: page, Ptr: addrOfSlice(page.Bytes()), Size: size, Strict: strict}
	s.allocations = append(s.allocations, a)
	return a, nil
}

func (s *Scope) findLocal(name string) (*Variable, bool, bool) {
	for _, v := range s.vars {
		if v.Name == name {
			return v, false, true
		}
	}
	if _, ok := s.typedefs[name]; ok {
		return nil, true, true
	}
	return nil, false, false
}

// lookupVariable walks the scope chain from current, applying the
// function-boundary rule from spec.md 3: crossing a function scope during
// the walk jumps straight to the root scope, so a function body only ever
// sees its own locals/params plus globals, never a caller's locals.
func (c *Context) lookupVariable(name string) (*Variable, bool) {
	return lookupVariableFrom(c.current, c.root, name)
}

func lookupVariableFrom(start, root *Scope, name string) (*Variable, bool) {
	s := start
	for s != nil {
		for _, v := range s.vars {
			if v.Name == name {
				return v, true
			}
		}
		if s.kind == scopeFunction && s.parent != nil {
			s = root
			continue
		}
		s = s.parent
	}
	return nil, false
}

func (c *Context) lookupTypedef(name string) (*Type, bool) {
	s := c.current
	for s != nil {
		if t, ok := s.typedefs[name]; ok {
			return t, true
		}
		if s.kind == scopeFunction && s.parent != nil {
			s = c.root
			continue
		}
		s = s.parent
	}
	return nil, false
}

// declareTypedef registers name in the current scope, overwriting an
// existing incomplete typedef of the same name (forward declaration being
// completed) but erroring on any other collision.
func (c *Context) declareTypedef(pos Position, name string, t *Type) {
	if existing, ok := c.current.typedefs[name]; ok && !existing.IsIncomplete {
		c.pushError(ErrKindParse, pos, "redeclaration of type %q in the same scope", name)
		return
	}
	c.current.typedefs[name] = t
}

// scopeDepth returns the depth of the scope that owns the allocation
// backing addr, used by infoof and scopeof(this)/scopeof(name).
func (c *Context) scopeDepth(addr uintptr) (int, bool) {
	for s := c.current; s != nil; s = s.parent {
		for _, a := range s.allocations {
			if !a.freed && addr >= a.Ptr && addr < a.Ptr+uintptr(a.Size) {
				return s.depth, true
			}
		}
	}
	return 0, false
}

// findAllocation returns the allocation (and owning scope) backing addr,
// searching outward from current.
func (c *Context) findAllocation(addr uintptr) (*Scope, *Allocation, bool) {
	for s := c.current; s != nil; s = s.parent {
		for _, a := range s.allocations {
			if !a.freed && addr >= a.Ptr && addr < a.Ptr+uintptr(a.Size) {
				return s, a, true
			}
		}
	}
	return nil, nil, false
}

// adoptAllocation moves a allocation's ownership from its current scope
// into the context's current scope: the old slot is nulled (kept for
// reuse, never re-handed-out) and a fresh slot is appended at the
// destination, per spec.md 4.3.
func (c *Context) adoptAllocation(a *Allocation) {
	if a.Strict {
		return
	}
	for _, s := range c.allScopes() {
		for i, other := range s.allocations {
			if other == a && s != c.current {
				s.allocations[i] = &Allocation{freed: true}
				c.current.allocations = append(c.current.allocations, a)
				return
			}
		}
	}
}

// promoteAllocation moves a into the scope levels steps outward from
// current, or to the global scope, or to an explicit depth. Crossing a
// function boundary during the walk jumps straight to global, matching
// the lookup rule and spec.md 4.4's promote semantics.
func (c *Context) promoteAllocation(a *Allocation, levels int, toGlobal bool, explicitDepth int, hasExplicit bool) {
	if a.Strict {
		return
	}
	target := c.root
	if !toGlobal {
		s := c.current
		for i := 0; i < levels && s.parent != nil; i++ {
			if s.kind == scopeFunction {
				s = c.root
				break
			}
			s = s.parent
		}
		target = s
		if hasExplicit {
			for t := c.current; t != nil; t = t.parent {
				if t.depth == explicitDepth {
					target = t
					break
				}
			}
		}
	}
	for _, s := range c.allScopes() {
		for i, other := range s.allocations {
			if other == a {
				s.allocations[i] = &Allocation{freed: true}
				target.allocations = append(target.allocations, a)
				return
			}
		}
	}
}

func (c *Context) allScopes() []*Scope {
	var out []*Scope
	for s := c.current; s != nil; s = s.parent {
		out = append(out, s)
	}
	return out
}
