package interp

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/pawscript-lang/pawscript/nativebridge"
)

// Function is a heap block containing a 5-byte relative jump followed by
// a generated trampoline, per spec.md 3/4.7. Its Address is the address
// of the block itself: calling through it as a native pointer enters the
// jump, which lands in the trampoline.
type Function struct {
	ctx     *Context
	Type    *Type
	params  []string
	body    []stmt
	page    *nativebridge.Page
	Address uintptr
}

var (
	driverOnce sync.Once

	registryMu sync.Mutex
	functions  = map[uintptr]*Function{}
)

// installDriver wires nativebridge's single global driver callback to
// dispatchCall, the Go-side half of every script-to-native call. It only
// needs to run once per process: every Function's trampoline carries its
// own fn identity, so one shared driver can still tell calls apart.
func installDriver() {
	driverOnce.Do(func() {
		nativebridge.SetDriver(dispatchCall)
	})
}

// dispatchCall is invoked from driverEntry's assembly (by way of
// driverDispatch) for every script-to-native call, keyed by the fn
// identity baked into the calling trampoline.
func dispatchCall(ctxID, argsBlock, frameBase, fnID uintptr) (uint64, uint64) {
	registryMu.Lock()
	fn := functions[fnID]
	registryMu.Unlock()
	if fn == nil {
		return 0, 0
	}
	return fn.invoke(frameBase)
}

const functionJumpSize = 5
const functionMetaSize = 8 // stores the function's own identity, for infoof/debugging

// makeFunction builds a trampoline-backed Function value in the target
// scope and returns an rvalue function pointer to it. names supplies the
// parameter identifiers the body can refer to, in declaration order; a
// shorter-than-Args or nil names binds the remaining/all parameters
// positionally as arg0, arg1, .... A named `T f(T a, T b) { body }`
// declaration carries real names all the way from the parser; an
// anonymous `new <Fn>{ body }` literal has nothing but the function
// type's argument list to go on (a typedef'd signature has no
// parameter-name syntax), so it falls back to the positional form. This
// is a deliberate departure from the original interpreter, which named
// a callee's parameter after whatever variable name the caller's
// argument expression happened to have, a side effect of that
// implementation smuggling lvalue-ness through a shared name field on
// Type — a mechanism this port replaced with the explicit Value.IsLValue
// flag and so has nothing left to smuggle with.
func (c *Context) makeFunction(target *Scope, fnType *Type, body []stmt, names []string) Value {
	installDriver()

	sig := nativebridge.Signature{Variadic: fnType.Variadic}
	paramNames := make([]string, len(fnType.Args))
	for i, a := range fnType.Args {
		if a.Kind == KindFloat {
			sig.Args = append(sig.Args, nativebridge.ArgFloat)
		} else {
			sig.Args = append(sig.Args, nativebridge.ArgInt)
		}
		if i < len(names) {
			paramNames[i] = names[i]
		} else {
			paramNames[i] = fmt.Sprintf("arg%d", i)
		}
	}
	if fnType.Return != nil && fnType.Return.Kind == KindFloat {
		sig.Return = nativebridge.ArgFloat
	}

	descriptor := SerializeType(fnType)

	page, err := nativebridge.NewPage(true)
	if err != nil {
		c.pushError(ErrKindMemory, Position{}, "trampoline allocation failure: %v", err)
		return rvalueInt(pointerType(fnType), 0)
	}
	base := addrOfSlice(page.Bytes())

	fn := &Function{ctx: c, Type: fnType, params: paramNames, body: body, page: page, Address: base}
	identity := base // the block's own address doubles as its registry key

	ctxIdentity := uintptr(unsafe.Pointer(c))
	trampolineBytes, codeOffset := nativebridge.BuildTrampoline(base, sig, descriptor, ctxIdentity, identity)

	full := make([]byte, functionJumpSize+functionMetaSize+len(trampolineBytes))
	codeAddr := base + uintptr(functionJumpSize+functionMetaSize+codeOffset)
	rel := int32(int64(codeAddr) - int64(base+functionJumpSize))
	full[0] = 0xE9
	full[1] = byte(rel)
	full[2] = byte(rel >> 8)
	full[3] = byte(rel >> 16)
	full[4] = byte(rel >> 24)
	writeIdentityLE(full[functionJumpSize:functionJumpSize+functionMetaSize], uint64(identity))
	copy(full[functionJumpSize+functionMetaSize:], trampolineBytes)

	writeBytes(base, full)

	registryMu.Lock()
	functions[identity] = fn
	registryMu.Unlock()

	target.allocations = append(target.allocations, &Allocation{Page: page, Ptr: base, Size: len(full), Strict: false})

	return rvalueInt(pointerType(fnType), uint64(base))
}

func writeIdentityLE(b []byte, v uint64) {
	for i := range b {
		b[i] = byte(v)
		v >>= 8
	}
}

// invoke is the trampoline-side half of a script-to-native call: it
// reconstructs Variable views over the saved argument bytes (the
// trampoline stores argument i in the 8-byte cell at frameBase-(i+1)*8),
// runs the body under a fresh function scope, and returns both possible
// result registers, per spec.md 4.7.
func (f *Function) invoke(frameBase uintptr) (uint64, uint64) {
	c := f.ctx
	saved := c.current
	c.current = f.ctx.root
	scope := c.pushScope(scopeFunction)
	for i, name := range f.params {
		addr := frameBase - uintptr((i+1)*8)
		scope.vars = append(scope.vars, &Variable{Name: name, Type: f.Type.Args[i], Address: addr, NoAlloc: true})
	}
	// "this" is an alias for arg0, not a distinct binding: a function
	// called through p.method(...) receives its receiver as a normal
	// leading argument (callExpr threads it there), and the callee has
	// no way to tell that call shape apart from a plain call with the
	// same signature. Aliasing arg0 lets a method body write `this`
	// without the call site and the callee needing to agree on more
	// than argument order.
	if len(f.params) > 0 {
		scope.vars = append(scope.vars, &Variable{Name: "this", Type: f.Type.Args[0], Address: frameBase - 8, NoAlloc: true})
	}
	prevState := c.state
	c.state = stateRunning
	for _, s := range f.body {
		c.execStmt(s)
		if c.state == stateReturn {
			break
		}
	}
	intRet, fltRet := c.returnSlot, c.returnSlot
	c.state = prevState
	c.popScope()
	c.current = saved
	return intRet, fltRet
}

// callNative invokes a native function address through the FFI caller,
// per spec.md 4.6, marshalling args cast to the signature's argument
// types first.
func callNative(c *Context, addr uintptr, sig *Type, args []Value) Value {
	nbArgs := make([]nativebridge.Value, len(args))
	fixed := len(sig.Args)
	for i, a := range args {
		var t *Type
		if i < fixed {
			t = sig.Args[i]
		} else {
			t = a.Type
		}
		v := convert(a, t)
		switch t.Kind {
		case KindFloat:
			if t.ByteSize == 4 {
				nbArgs[i] = nativebridge.Float32Value(float32(v.AsFloat()))
			} else {
				nbArgs[i] = nativebridge.Float64Value(v.AsFloat())
			}
		default:
			kind := nativebridge.KindInt
			if t.Kind == KindPointer {
				kind = nativebridge.KindPointer
			}
			nbArgs[i] = nativebridge.IntValue(kind, v.AsUint())
		}
	}
	intRet, fltRet := nativebridge.Call(addr, nbArgs, fixed)
	if sig.Return != nil && sig.Return.Kind == KindFloat {
		return rvalueFloat(sig.Return, fltRet)
	}
	ret := sig.Return
	if ret == nil {
		ret = voidType()
	}
	return rvalueInt(ret, intRet)
}
