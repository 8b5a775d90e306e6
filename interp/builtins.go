package interp

import "os"

// installBuiltins declares the constant table spec.md 6 lists at root
// scope: platform, the six POSIX signal numbers, the standard stream
// handles, EOF, the three seek constants, and an errno snapshot taken at
// context creation. Names and values follow the original pawscript.c's
// pawscript_add_builtin call sequence.
func installBuiltins(c *Context) {
	addConst(c, "__builtin_PLATFORM", intType(4, false), uint64(platformConstant()))

	addConst(c, "__builtin_SIGABRT", intType(4, false), uint64(sigAbrt))
	addConst(c, "__builtin_SIGFPE", intType(4, false), uint64(sigFpe))
	addConst(c, "__builtin_SIGILL", intType(4, false), uint64(sigIll))
	addConst(c, "__builtin_SIGINT", intType(4, false), uint64(sigInt))
	addConst(c, "__builtin_SIGSEGV", intType(4, false), uint64(sigSegv))
	addConst(c, "__builtin_SIGTERM", intType(4, false), uint64(sigTerm))

	addConst(c, "__builtin_stdin", pointerType(voidType()), fileHandle(os.Stdin))
	addConst(c, "__builtin_stdout", pointerType(voidType()), fileHandle(os.Stdout))
	addConst(c, "__builtin_stderr", pointerType(voidType()), fileHandle(os.Stderr))

	addConst(c, "__builtin_EOF", intType(4, false), uint64(uint32(int32(-1))))
	addConst(c, "__builtin_SEEK_SET", intType(4, false), 0)
	addConst(c, "__builtin_SEEK_CUR", intType(4, false), 1)
	addConst(c, "__builtin_SEEK_END", intType(4, false), 2)

	// errno is a snapshot at context creation; Go's own runtime doesn't
	// thread libc's errno through ordinary syscalls, so there is nothing
	// meaningful to read here and the original's post-startup value of 0
	// is what a fresh process observes in practice.
	addConst(c, "__builtin_errno", intType(4, false), 0)
}

// addConst declares a strict, const-typed root-scope variable holding a
// fixed value: script code can read it, and the const checks in expr.go
// (assignExpr, and the ++/-- case of unaryExpr) reject any attempt to
// write it.
func addConst(c *Context, name string, t *Type, value uint64) {
	a, err := c.allocate(c.root, Sizeof(t), false, true)
	if err != nil {
		return
	}
	writeUint(a.Ptr, Sizeof(t), value)
	constType := CopyType(t)
	constType.IsConst = true
	saved := c.current
	c.current = c.root
	c.declareVariable(Position{}, name, constType, a.Ptr, false)
	c.current = saved
}

// fileHandle exposes a Go *os.File to scripts as its OS file descriptor
// number (0, 1 and 2 for the standard streams), stored in a pointer-typed
// constant. The value is a descriptor, not a C FILE* stream pointer.
func fileHandle(f *os.File) uint64 { return uint64(f.Fd()) }
