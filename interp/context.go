package interp

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// SymbolVisibility controls how extern declarations resolve against the
// host's dynamic symbol table, matching spec.md 6's BLACKLIST/WHITELIST
// policy pair.
type SymbolVisibility int

const (
	// Blacklist allows any resolved symbol unless it was explicitly
	// registered as disallowed. This is the default, matching yaegi's own
	// "unrestricted unless told otherwise" stance in Options.Unrestricted.
	Blacklist SymbolVisibility = iota
	Whitelist
)

// Options configures a new Context, mirroring the shape of yaegi's own
// Options struct: I/O redirection, an include filesystem in place of
// yaegi's SourcecodeFilesystem, and a symbol policy in place of
// Unrestricted.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Args and Env are stored on the Context; nil defaults to the
	// process's own os.Args[1:] and os.Environ. No builtin exposes them
	// to scripts.
	Args []string
	Env  []string

	// IncludeFS resolves paths named by the include statement. A nil
	// value falls back to os.ReadFile, so relative paths resolve against
	// the process's working directory.
	IncludeFS fs.FS

	Visibility SymbolVisibility
}

// Context is the mutable root of an interpreter session: scope chain,
// allocation bookkeeping, error queue and retained buffers, per spec.md 2.
// A Context is not safe for concurrent use; re-entrant calls (native code
// calling back into script on the same context) are fine, concurrent ones
// are not, matching spec.md 5.
type Context struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Args []string
	Env  []string

	includeFS  fs.FS
	visibility SymbolVisibility
	registered map[uintptr]bool
	symbols    map[string]uintptr

	root    *Scope
	current *Scope

	errors   []*Error
	errorPtr int

	state      runState
	returnSlot uint64

	dryRun int // depth counter: >0 means short-circuit/if-arm skip is active
}

// runState is the PawScriptState state machine from spec.md 4.8: statement
// evaluation transitions through it and loops/functions observe it.
type runState int

const (
	stateRunning runState = iota
	stateBreak
	stateContinue
	stateReturn
)

// New constructs a Context with a root scope and installed builtins,
// matching yaegi's own New(Options) entry point.
func New(opts Options) *Context {
	c := &Context{
		Stdin:      opts.Stdin,
		Stdout:     opts.Stdout,
		Stderr:     opts.Stderr,
		Args:       opts.Args,
		Env:        opts.Env,
		includeFS:  opts.IncludeFS,
		visibility: opts.Visibility,
		registered: map[uintptr]bool{},
		symbols:    map[string]uintptr{},
	}
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	if c.Args == nil {
		c.Args = os.Args[1:]
	}
	if c.Env == nil {
		c.Env = os.Environ()
	}
	c.root = newScope(nil, scopeRegular)
	c.current = c.root
	installBuiltins(c)
	return c
}

// RegisterSymbol adds an address to the visibility list, per spec.md 6.
func (c *Context) RegisterSymbol(addr uintptr) {
	c.registered[addr] = true
}

// Use binds host function addresses to names an extern declaration can
// resolve, playing the role of the host's dynamic-symbol table (spec.md
// 4.5) the way yaegi's Interpreter.Use binds a reflect.Value table to
// import paths.
func (c *Context) Use(exports map[string]uintptr) {
	for name, addr := range exports {
		c.symbols[name] = addr
	}
}

// resolveSymbol looks up an extern name against the host table and
// applies the visibility policy.
func (c *Context) resolveSymbol(name string) (uintptr, bool) {
	addr, ok := c.symbols[name]
	if !ok {
		return 0, false
	}
	if !c.symbolAllowed(addr) {
		return 0, false
	}
	return addr, true
}

// symbolAllowed applies the BLACKLIST/WHITELIST policy to a resolved
// extern address: under Blacklist, registration denies; under Whitelist,
// registration is the only way to allow, per spec.md 6.
func (c *Context) symbolAllowed(addr uintptr) bool {
	switch c.visibility {
	case Whitelist:
		return c.registered[addr]
	default:
		return !c.registered[addr]
	}
}

// Run lexes and evaluates src, attributing diagnostics to file. It
// returns the first queued error, if any, after a full pass, matching
// the embedding API's "run" operation in spec.md 6.
func (c *Context) Run(src, file string) error {
	tokens := lex(c, src, file)
	if c.AnyErrors() {
		if e, ok := c.NextError(); ok {
			return e
		}
	}
	p := newParser(c, tokens)
	stmts := p.parseProgram()
	for _, s := range stmts {
		c.execStmt(s)
		if c.state == stateReturn {
			break
		}
	}
	if c.AnyErrors() {
		if e, ok := c.NextError(); ok {
			return e
		}
	}
	return nil
}

// ReturnValue reports the raw bits spec.md 4.5's scratch return slot held
// after the last top-level `return`, if the program ended that way rather
// than by running off the end. Integers and pointers are the value
// itself; a float result's bits need math.Float64frombits to recover the
// float64 returnStmt stored them as.
func (c *Context) ReturnValue() (uint64, bool) {
	return c.returnSlot, c.state == stateReturn
}

// RunFile reads path through the OS filesystem and runs it, attaching the
// path as provenance for diagnostics.
func (c *Context) RunFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		c.pushError(ErrKindIO, Position{File: path}, "cannot open %q: %v", path, err)
		return c.errors[len(c.errors)-1]
	}
	return c.Run(string(data), path)
}

// GetVariable copies the bytes of the named variable into out, matching
// spec.md 6's get-variable operation.
func (c *Context) GetVariable(name string, out []byte) error {
	v, ok := c.lookupVariable(name)
	if !ok {
		return fmt.Errorf("pawscript: no such variable %q", name)
	}
	size := Sizeof(v.Type)
	if len(out) < size {
		return fmt.Errorf("pawscript: buffer too small for %q (%d < %d)", name, len(out), size)
	}
	copy(out, readBytes(v.Address, size))
	return nil
}

// SetVariable overwrites the named variable's bytes and marks it native,
// matching spec.md 6: host writes are treated as foreign ownership from
// then on so the type graph's copy/destroy traversals know not to assume
// script-only invariants about it.
func (c *Context) SetVariable(name string, in []byte) error {
	v, ok := c.lookupVariable(name)
	if !ok {
		return fmt.Errorf("pawscript: no such variable %q", name)
	}
	if v.Type.IsConst {
		return fmt.Errorf("pawscript: %q is const", name)
	}
	size := Sizeof(v.Type)
	if len(in) < size {
		return fmt.Errorf("pawscript: buffer too small for %q (%d < %d)", name, len(in), size)
	}
	writeBytes(v.Address, in[:size])
	MakeNative(v.Type, true)
	return nil
}

// GetType returns a deep copy of the canonical type of the named variable
// or typedef.
func (c *Context) GetType(name string) (*Type, error) {
	if v, ok := c.lookupVariable(name); ok {
		return CopyType(v.Type.canonical()), nil
	}
	if t, ok := c.lookupTypedef(name); ok {
		return CopyType(t.canonical()), nil
	}
	return nil, fmt.Errorf("pawscript: no such variable or type %q", name)
}

// includeFile reads path (through includeFS if set, the OS filesystem
// otherwise), parses it, and runs its statements in the root scope, per
// spec.md 4.5. path is first resolved relative to fromFile's directory;
// if that doesn't exist, the raw path is tried as given. The nested
// parser's type table is seeded from every typedef visible at the
// include site, so a struct typedef declared earlier in the including
// file resolves inside the included text.
func (c *Context) includeFile(pos Position, path, fromFile string) {
	resolved := path
	if fromFile != "" {
		resolved = filepathJoinDir(fromFile, path)
	}
	data, err := c.readInclude(resolved)
	if err != nil && resolved != path {
		resolved = path
		data, err = c.readInclude(resolved)
	}
	if err != nil {
		c.pushError(ErrKindIO, pos, "cannot include %q: %v", path, err)
		return
	}
	tokens := lex(c, string(data), resolved)
	if c.AnyErrors() {
		return
	}
	seed := map[string]*Type{}
	for s := c.current; s != nil; s = s.parent {
		for k, v := range s.typedefs {
			if _, ok := seed[k]; !ok {
				seed[k] = v
			}
		}
	}
	p := &parser{ctx: c, tokens: tokens, types: seed}
	stmts := p.parseProgram()

	// Included text runs in the root scope regardless of where the
	// include statement itself appears, per spec.md 4.5: includes
	// extend the globals, they don't splice into whatever block happens
	// to contain the include.
	saved := c.current
	c.current = c.root
	for _, s := range stmts {
		c.execStmt(s)
		if c.state == stateReturn {
			break
		}
	}
	c.current = saved
}

// filepathJoinDir resolves path relative to the directory containing
// fromFile, the way a C preprocessor resolves a quoted #include.
func filepathJoinDir(fromFile, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(fromFile), path)
}

// readInclude reads path through includeFS if the embedder supplied one,
// the OS filesystem otherwise.
func (c *Context) readInclude(path string) ([]byte, error) {
	if c.includeFS != nil {
		return fs.ReadFile(c.includeFS, path)
	}
	return os.ReadFile(path)
}

func platformConstant() int64 {
	switch runtime.GOOS {
	case "linux":
		return 0
	case "windows":
		return 1
	case "darwin":
		return 2
	case "freebsd":
		return 3
	case "openbsd":
		return 4
	default:
		return 5
	}
}
