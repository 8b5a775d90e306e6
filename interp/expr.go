package interp

import "math"

// exprNode is one node of the expression tree the parser builds via
// precedence climbing; eval carries out spec.md 4.4's polymorphic
// operator dispatch.
type exprNode interface {
	eval(c *Context) Value
}

type literalExpr struct{ value Value }

func (e *literalExpr) eval(c *Context) Value { return e.value }

type stringLitExpr struct{ str string }

func (e *stringLitExpr) eval(c *Context) Value {
	if c.dryRun > 0 {
		return zeroValue(pointerType(intType(1, false)))
	}
	bytes := append([]byte(e.str), 0)
	a, err := c.allocate(c.current, len(bytes), false, false)
	if err != nil {
		c.pushError(ErrKindMemory, Position{}, "allocation failure: %v", err)
		return rvalueInt(pointerType(intType(1, false)), 0)
	}
	writeBytes(a.Ptr, bytes)
	return rvalueInt(pointerType(intType(1, false)), uint64(a.Ptr))
}

type identExpr struct{ name string }

func (e *identExpr) eval(c *Context) Value {
	v, ok := c.lookupVariable(e.name)
	if !ok {
		c.pushError(ErrKindParse, Position{}, "unknown identifier %q", e.name)
		return rvalueInt(voidType(), 0)
	}
	return lvalue(v.Type, v.Address)
}

type assignExpr struct{ lhs, rhs exprNode }

func (e *assignExpr) eval(c *Context) Value {
	lv := e.lhs.eval(c)
	rv := e.rhs.eval(c)
	if c.dryRun > 0 {
		return zeroValue(lv.Type)
	}
	if !lv.IsLValue {
		c.pushError(ErrKindMemory, Position{}, "assignment target is not assignable")
		return lv
	}
	if lv.Type.IsConst {
		c.pushError(ErrKindMemory, Position{}, "cannot mutate constant")
		return lv
	}
	StoreTo(lv.Address, lv.Type, rv)
	return lvalue(lv.Type, lv.Address)
}

type binaryExpr struct {
	op          TokenKind
	left, right exprNode
}

func (e *binaryExpr) eval(c *Context) Value {
	if e.op == TokAndAnd {
		l := e.left.eval(c)
		if l.AsUint() == 0 {
			c.dryEval(e.right)
			return l
		}
		r := e.right.eval(c)
		return rvalueInt(intType(4, false), boolFrom(r.AsUint() != 0))
	}
	if e.op == TokOrOr {
		l := e.left.eval(c)
		if l.AsUint() != 0 {
			c.dryEval(e.right)
			return l
		}
		r := e.right.eval(c)
		return rvalueInt(intType(4, false), boolFrom(r.AsUint() != 0))
	}

	l := e.left.eval(c)
	r := e.right.eval(c)

	if l.Type.Kind == KindPointer && (e.op == TokPlus || e.op == TokMinus) && r.Type.Kind != KindPointer {
		elem := Sizeof(l.Type.Base)
		if elem == 0 {
			elem = 1
		}
		delta := int64(r.AsUint()) * int64(elem)
		base := int64(l.AsUint())
		if e.op == TokMinus {
			base -= delta
		} else {
			base += delta
		}
		return rvalueInt(l.Type, uint64(base))
	}

	switch e.op {
	case TokEq, TokNeq, TokLt, TokGt, TokLe, TokGe:
		return rvalueInt(intType(4, false), boolCompare(e.op, l, r))
	}

	result := promote(l.Type, r.Type)
	if result.Kind == KindFloat {
		lf, rf := convert(l, result).AsFloat(), convert(r, result).AsFloat()
		var out float64
		switch e.op {
		case TokPlus:
			out = lf + rf
		case TokMinus:
			out = lf - rf
		case TokStar:
			out = lf * rf
		case TokSlash:
			out = lf / rf
		case TokPow:
			out = powFloat(lf, rf)
		default:
			c.pushError(ErrKindType, Position{}, "no matching operator for float operands")
		}
		return rvalueFloat(result, out)
	}
	lu, ru := convert(l, result).AsUint(), convert(r, result).AsUint()
	var out uint64
	switch e.op {
	case TokPlus:
		out = lu + ru
	case TokMinus:
		out = lu - ru
	case TokStar:
		out = lu * ru
	case TokSlash:
		if ru != 0 {
			out = lu / ru
		}
	case TokPercent:
		if ru != 0 {
			out = lu % ru
		}
	case TokAmp:
		out = lu & ru
	case TokPipe:
		out = lu | ru
	case TokCaret:
		out = lu ^ ru
	case TokShl:
		out = lu << (ru & 63)
	case TokShr:
		out = lu >> (ru & 63)
	case TokPow:
		out = uint64(powFloat(float64(lu), float64(ru)))
	default:
		c.pushError(ErrKindType, Position{}, "no matching operator for operand types")
	}
	return rvalueInt(result, out)
}

func powFloat(a, b float64) float64 { return math.Pow(a, b) }

func boolCompare(op TokenKind, l, r Value) uint64 {
	if l.Type.Kind == KindFloat || r.Type.Kind == KindFloat {
		lf, rf := l.AsFloat(), r.AsFloat()
		return boolFrom(cmpFloat(op, lf, rf))
	}
	unsigned := (l.Type.Kind == KindInt && l.Type.IsUnsigned) || (r.Type.Kind == KindInt && r.Type.IsUnsigned) || l.Type.Kind == KindPointer || r.Type.Kind == KindPointer
	lu, ru := l.AsUint(), r.AsUint()
	if unsigned {
		return boolFrom(cmpUnsigned(op, lu, ru))
	}
	ls := asSigned(lu, Sizeof(l.Type), true)
	rs := asSigned(ru, Sizeof(r.Type), true)
	return boolFrom(cmpSigned(op, ls, rs))
}

func cmpFloat(op TokenKind, a, b float64) bool {
	switch op {
	case TokEq:
		return a == b
	case TokNeq:
		return a != b
	case TokLt:
		return a < b
	case TokGt:
		return a > b
	case TokLe:
		return a <= b
	case TokGe:
		return a >= b
	}
	return false
}

func cmpUnsigned(op TokenKind, a, b uint64) bool {
	switch op {
	case TokEq:
		return a == b
	case TokNeq:
		return a != b
	case TokLt:
		return a < b
	case TokGt:
		return a > b
	case TokLe:
		return a <= b
	case TokGe:
		return a >= b
	}
	return false
}

func cmpSigned(op TokenKind, a, b int64) bool {
	switch op {
	case TokEq:
		return a == b
	case TokNeq:
		return a != b
	case TokLt:
		return a < b
	case TokGt:
		return a > b
	case TokLe:
		return a <= b
	case TokGe:
		return a >= b
	}
	return false
}

func boolFrom(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

type unaryExpr struct {
	op      TokenKind
	operand exprNode
	prefix  bool
}

func (e *unaryExpr) eval(c *Context) Value {
	v := e.operand.eval(c)
	switch e.op {
	case TokPlus:
		return v
	case TokMinus:
		if v.Type.Kind == KindFloat {
			return rvalueFloat(v.Type, -v.AsFloat())
		}
		return rvalueInt(v.Type, uint64(-int64(v.AsUint())))
	case TokBang:
		return rvalueInt(intType(4, false), boolFrom(v.AsUint() == 0))
	case TokTilde:
		return rvalueInt(v.Type, ^v.AsUint())
	case TokAmp:
		if !v.IsLValue {
			c.pushError(ErrKindMemory, Position{}, "cannot take address of a non-lvalue")
			return v
		}
		return rvalueInt(pointerType(v.Type), uint64(v.Address))
	case TokStar:
		if v.Type.Kind != KindPointer {
			c.pushError(ErrKindType, Position{}, "cannot dereference a non-pointer")
			return v
		}
		return lvalue(v.Type.Base, uintptr(v.AsUint()))
	case TokIncrement, TokDecrement:
		if c.dryRun > 0 {
			return zeroValue(v.Type)
		}
		if !v.IsLValue {
			c.pushError(ErrKindMemory, Position{}, "increment/decrement target is not assignable")
			return v
		}
		if v.Type.IsConst {
			c.pushError(ErrKindMemory, Position{}, "cannot mutate constant")
			return v
		}
		before := Value{Type: v.Type, raw: v.AsUint()}
		delta := int64(1)
		if e.op == TokDecrement {
			delta = -1
		}
		var next Value
		if v.Type.Kind == KindFloat {
			next = rvalueFloat(v.Type, v.AsFloat()+float64(delta))
		} else {
			step := uint64(delta)
			if v.Type.Kind == KindPointer {
				step = uint64(delta) * uint64(Sizeof(v.Type.Base))
			}
			next = rvalueInt(v.Type, v.AsUint()+step)
		}
		StoreTo(v.Address, v.Type, next)
		if e.prefix {
			return lvalue(v.Type, v.Address)
		}
		return before
	}
	c.pushError(ErrKindType, Position{}, "unsupported unary operator")
	return v
}

type truthyExpr struct{ operand exprNode }

func (e *truthyExpr) eval(c *Context) Value {
	v := e.operand.eval(c)
	return rvalueInt(intType(4, false), boolFrom(v.AsUint() != 0))
}

type coalesceExpr struct{ lhs, rhs exprNode }

func (e *coalesceExpr) eval(c *Context) Value {
	l := e.lhs.eval(c)
	if l.Type.Kind == KindPointer && l.AsUint() != 0 {
		c.dryEval(e.rhs)
		return l
	}
	if l.Type.Kind != KindPointer && l.AsUint() != 0 {
		c.dryEval(e.rhs)
		return l
	}
	return e.rhs.eval(c)
}

type condExpr struct {
	cond, then, els exprNode
}

func (e *condExpr) eval(c *Context) Value {
	v := e.cond.eval(c)
	if v.AsUint() != 0 {
		if e.els != nil {
			c.dryEval(e.els)
		}
		if e.then != nil {
			return e.then.eval(c)
		}
		return rvalueInt(voidType(), 0)
	}
	if e.then != nil {
		c.dryEval(e.then)
	}
	if e.els != nil {
		return e.els.eval(c)
	}
	return rvalueInt(voidType(), 0)
}

// dryEval walks an expression without side effects, advancing nothing
// (the tree is already built) but suppressing allocation/assignment: used
// for the skipped arm of && / || / if-expr, matching spec.md's dry-run
// flag described in 4.4 and Design Notes 9.
func (c *Context) dryEval(e exprNode) {
	c.dryRun++
	defer func() { c.dryRun-- }()
	_ = safeDryEval(e, c)
}

func safeDryEval(e exprNode, c *Context) (v Value) {
	defer func() { recover() }()
	return e.eval(c)
}

type memberExpr struct {
	recv  exprNode
	field string
}

func (e *memberExpr) eval(c *Context) Value {
	v := e.recv.eval(c)
	base := v.Type
	addr := v.Address
	if base.Kind == KindPointer {
		addr = uintptr(v.AsUint())
		base = base.Base
	} else if !v.IsLValue {
		c.pushError(ErrKindMemory, Position{}, "member access on a non-addressable struct value")
		return v
	}
	if base.Kind != KindStruct {
		c.pushError(ErrKindType, Position{}, "member access on a non-struct type")
		return v
	}
	for _, f := range base.Fields {
		if f.Name == e.field {
			return lvalue(f.Type, addr+uintptr(f.Offset))
		}
	}
	c.pushError(ErrKindType, Position{}, "struct field %q not found", e.field)
	return v
}

type indexExpr struct {
	base, index exprNode
}

func (e *indexExpr) eval(c *Context) Value {
	// p[i] is rewritten as *(p + i), per spec.md 4.4.
	deref := &unaryExpr{op: TokStar, operand: &binaryExpr{op: TokPlus, left: e.base, right: e.index}}
	return deref.eval(c)
}

type callExpr struct {
	callee exprNode
	args   []exprNode
}

func (e *callExpr) eval(c *Context) Value {
	// A call through a member access (p.method(...)) preserves the
	// receiver as a hidden leading argument, per spec.md 4.4. The
	// receiver is evaluated as the member's own base, not the field
	// value, so recv stays the struct pointer even though member itself
	// resolved to the function-pointer field.
	var recv exprNode
	callee := e.callee
	if m, ok := callee.(*memberExpr); ok {
		recv = m.recv
	}

	fn := callee.eval(c)
	if fn.Type.Kind != KindPointer && fn.Type.Kind != KindFunction {
		c.pushError(ErrKindType, Position{}, "call target is not a function")
		return rvalueInt(voidType(), 0)
	}
	sig := fn.Type
	if sig.Kind == KindPointer {
		sig = sig.Base
	}
	addr := fn.AsUint()

	var args []Value
	if recv != nil {
		r := recv.eval(c)
		var thisAddr uint64
		if r.Type.Kind == KindPointer {
			thisAddr = r.AsUint()
		} else if r.IsLValue {
			thisAddr = uint64(r.Address)
		} else {
			c.pushError(ErrKindMemory, Position{}, "method receiver is not addressable")
			thisAddr = 0
		}
		args = append(args, rvalueInt(pointerType(r.Type), thisAddr))
	}
	for _, a := range e.args {
		args = append(args, a.eval(c))
	}
	if c.dryRun > 0 {
		if sig.Return != nil {
			return zeroValue(sig.Return)
		}
		return zeroValue(voidType())
	}
	return callNative(c, uintptr(addr), sig, args)
}

type sizeofExpr struct{ arg exprNode }

func (e *sizeofExpr) eval(c *Context) Value {
	t := c.resolveTypeOrExprType(e.arg)
	return rvalueInt(intType(8, true), uint64(Sizeof(t)))
}

type offsetofExpr struct {
	structType *Type
	field      string
}

func (e *offsetofExpr) eval(c *Context) Value {
	for _, f := range e.structType.Fields {
		if f.Name == e.field {
			return rvalueInt(intType(8, true), uint64(f.Offset))
		}
	}
	c.pushError(ErrKindType, Position{}, "struct field %q not found", e.field)
	return rvalueInt(intType(8, true), 0)
}

type scopeofExpr struct{ name string }

func (e *scopeofExpr) eval(c *Context) Value {
	if e.name == "this" {
		v, ok := c.lookupVariable("this")
		if !ok {
			return rvalueInt(intType(8, true), 0)
		}
		depth, _ := c.scopeDepth(v.Address)
		return rvalueInt(intType(8, true), uint64(depth))
	}
	v, ok := c.lookupVariable(e.name)
	if !ok {
		c.pushError(ErrKindParse, Position{}, "unknown identifier %q", e.name)
		return rvalueInt(intType(8, true), 0)
	}
	depth, _ := c.scopeDepth(v.Address)
	return rvalueInt(intType(8, true), uint64(depth))
}

type infoofExpr struct{ arg exprNode }

// infoofLayout mirrors spec.md 4.4's 8+8+8+4+1 byte allocation-info
// struct: base pointer, byte size, logical length, owning scope depth,
// validity flag.
var infoofLayout = &Type{Kind: KindStruct, Name: "__builtin_info", Fields: []Field{
	{Name: "base", Type: pointerType(voidType()), Offset: 0},
	{Name: "size", Type: intType(8, true), Offset: 8},
	{Name: "length", Type: intType(8, true), Offset: 16},
	{Name: "depth", Type: intType(4, false), Offset: 24},
	{Name: "valid", Type: intType(1, false), Offset: 28},
}}

func (e *infoofExpr) eval(c *Context) Value {
	p := e.arg.eval(c)
	if c.dryRun > 0 {
		return zeroValue(pointerType(infoofLayout))
	}
	addr := uintptr(p.AsUint())
	a, err := c.allocate(c.current, 29, false, false)
	if err != nil {
		c.pushError(ErrKindMemory, Position{}, "allocation failure: %v", err)
		return rvalueInt(pointerType(infoofLayout), 0)
	}
	elemSize := 1
	if p.Type.Kind == KindPointer {
		elemSize = Sizeof(p.Type.Base)
		if elemSize == 0 {
			elemSize = 1
		}
	}
	_, alloc, ok := c.findAllocation(addr)
	if !ok {
		writeUint(a.Ptr+28, 1, 0)
		return rvalueInt(pointerType(infoofLayout), uint64(a.Ptr))
	}
	depth, _ := c.scopeDepth(addr)
	writeUint(a.Ptr, 8, uint64(alloc.Ptr))
	writeUint(a.Ptr+8, 8, uint64(alloc.Size))
	writeUint(a.Ptr+16, 8, uint64(alloc.Size/elemSize))
	writeUint(a.Ptr+24, 4, uint64(depth))
	writeUint(a.Ptr+28, 1, 1)
	return rvalueInt(pointerType(infoofLayout), uint64(a.Ptr))
}

type deleteExpr struct{ arg exprNode }

func (e *deleteExpr) eval(c *Context) Value {
	p := e.arg.eval(c)
	addr := uintptr(p.AsUint())
	if s, a, ok := c.findAllocation(addr); ok {
		_ = s
		if !a.Strict {
			freeAllocation(a)
		}
	}
	return rvalueInt(voidType(), 0)
}

type adoptExpr struct{ arg exprNode }

func (e *adoptExpr) eval(c *Context) Value {
	p := e.arg.eval(c)
	addr := uintptr(p.AsUint())
	if _, a, ok := c.findAllocation(addr); ok {
		c.adoptAllocation(a)
	}
	return p
}

type promoteExpr struct {
	arg         exprNode
	levels      int
	toGlobal    bool
	depth       int
	hasDepth    bool
}

func (e *promoteExpr) eval(c *Context) Value {
	p := e.arg.eval(c)
	addr := uintptr(p.AsUint())
	if _, a, ok := c.findAllocation(addr); ok {
		c.promoteAllocation(a, e.levels, e.toGlobal, e.depth, e.hasDepth)
	}
	return p
}

type newExpr struct {
	elemType *Type
	count    exprNode // nil = single; non-nil = count
	rawBytes exprNode // set for untyped new(bytes)
	scoped   bool
	body     []stmt // set for new <Fn>{ body }
	fnType   *Type
}

func (e *newExpr) eval(c *Context) Value {
	target := c.current
	if !e.scoped {
		target = c.root
	}
	if e.body != nil {
		if c.dryRun > 0 {
			return zeroValue(pointerType(e.fnType))
		}
		return c.makeFunction(target, e.fnType, e.body, nil)
	}
	if e.rawBytes != nil {
		n := int(e.rawBytes.eval(c).AsUint())
		if c.dryRun > 0 {
			return zeroValue(pointerType(voidType()))
		}
		a, err := c.allocate(target, n, false, false)
		if err != nil {
			c.pushError(ErrKindMemory, Position{}, "allocation failure: %v", err)
			return rvalueInt(pointerType(voidType()), 0)
		}
		return rvalueInt(pointerType(voidType()), uint64(a.Ptr))
	}
	count := 1
	if e.count != nil {
		count = int(e.count.eval(c).AsUint())
	}
	if c.dryRun > 0 {
		return zeroValue(pointerType(e.elemType))
	}
	size := Sizeof(e.elemType) * count
	a, err := c.allocate(target, size, false, false)
	if err != nil {
		c.pushError(ErrKindMemory, Position{}, "allocation failure: %v", err)
		return rvalueInt(pointerType(e.elemType), 0)
	}
	return rvalueInt(pointerType(e.elemType), uint64(a.Ptr))
}

type castExpr struct {
	dstType *Type
	arg     exprNode
	bit     bool
}

func (e *castExpr) eval(c *Context) Value {
	v := e.arg.eval(c)
	if e.bit {
		return bitcastValue(v, e.dstType)
	}
	return convert(v, e.dstType)
}

// resolveTypeOrExprType supports sizeof(T) and sizeof(e): T is resolved as
// a typedef lookup first, falling back to evaluating e and using its type.
func (c *Context) resolveTypeOrExprType(e exprNode) *Type {
	if ie, ok := e.(*identExpr); ok {
		if t, ok := c.lookupTypedef(ie.name); ok {
			return t
		}
		if t, ok := builtinTypeByName(ie.name); ok {
			return t
		}
	}
	return e.eval(c).Type
}

func builtinTypeByName(name string) (*Type, bool) {
	switch name {
	case "void":
		return voidType(), true
	case "s8":
		return intType(1, false), true
	case "u8":
		return intType(1, true), true
	case "s16":
		return intType(2, false), true
	case "u16":
		return intType(2, true), true
	case "s32":
		return intType(4, false), true
	case "u32":
		return intType(4, true), true
	case "s64":
		return intType(8, false), true
	case "u64":
		return intType(8, true), true
	case "f32":
		return floatType(4), true
	case "f64":
		return floatType(8), true
	}
	return nil, false
}
