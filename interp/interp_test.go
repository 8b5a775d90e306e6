package interp

import (
	"math"
	"testing"
	"unsafe"
)

func runReturn(t *testing.T, src string) uint64 {
	t.Helper()
	c := New(Options{})
	if err := c.Run(src, "<test>"); err != nil {
		t.Fatalf("Run(%q): %v", src, err)
	}
	v, ok := c.ReturnValue()
	if !ok {
		t.Fatalf("Run(%q): program did not return", src)
	}
	return v
}

func TestScenarioIntegerArithmetic(t *testing.T) {
	got := runReturn(t, "u32 x = 3; u32 y = 4; return x + y;")
	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestScenarioFunctionDeclaration(t *testing.T) {
	got := runReturn(t, "f64 h(f64 a, f64 b) { return a*a + b*b; } return cast<u32>(h(3.0, 4.0));")
	if got != 25 {
		t.Errorf("got %d, want 25", got)
	}
}

func TestScenarioStructFields(t *testing.T) {
	got := runReturn(t, "struct P { s32 x; s32 y; }; P* p = new<P>; p.x = 2; p.y = 5; return p.x + p.y;")
	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}
}

func TestScenarioForRangeInclusive(t *testing.T) {
	got := runReturn(t, "u64 s = 0; for s32 i in [1,5] { s += i; } return s;")
	if got != 15 {
		t.Errorf("got %d, want 15", got)
	}
}

func TestScenarioShortCircuitOr(t *testing.T) {
	got := runReturn(t, "u8 count = 0; u8 f() { count = count + 1; return 0; } if 1 || f() -> [ ; ; ] return count;")
	if got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

// TestScenarioExternWhitelist exercises spec.md 8 scenario 6's symbol
// visibility gating (registering then un-registering a host symbol), not
// the call itself: actually invoking a host function from a test needs a
// real machine-code address matching the platform ABI, which a plain Go
// function's address does not portably provide (Go's own internal
// calling convention does not match the platform C ABI nativebridge
// marshals arguments for).
func TestScenarioExternWhitelist(t *testing.T) {
	addr := uintptr(unsafe.Pointer(&struct{ x int }{}))

	c := New(Options{Visibility: Whitelist})
	c.Use(map[string]uintptr{"puts": addr})
	c.RegisterSymbol(addr)
	if err := c.Run(`extern void puts(const s8*);`, "<test>"); err != nil {
		t.Fatalf("expected success with symbol registered, got %v", err)
	}

	c2 := New(Options{Visibility: Whitelist})
	c2.Use(map[string]uintptr{"puts": addr})
	err := c2.Run(`extern void puts(const s8*);`, "<test>")
	if err == nil {
		t.Fatalf("expected disallowed error with no registration, got success")
	}
}

func TestScenarioInfoofLength(t *testing.T) {
	got := runReturn(t, "u32* p = new<u32>(8); u32 n = infoof(p).length; return n;")
	if got != 8 {
		t.Errorf("got %d, want 8", got)
	}
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	got := runReturn(t, "u8 hit = 0; u8 f() { hit = 1; return 1; } if 0 && f() -> [ ; ; ] return hit;")
	if got != 0 {
		t.Errorf("side-effecting right operand of && ran despite falsy left; got %d", got)
	}
}

func TestForRangeEqualEndpointsInclusive(t *testing.T) {
	got := runReturn(t, "u32 n = 0; for s32 i in [3,3] { n += 1; } return n;")
	if got != 1 {
		t.Errorf("got %d, want 1 iteration", got)
	}
}

func TestForRangeEqualEndpointsExclusive(t *testing.T) {
	got := runReturn(t, "u32 n = 0; for s32 i in (3,3) { n += 1; } return n;")
	if got != 0 {
		t.Errorf("got %d, want 0 iterations", got)
	}
}

func TestBitcastRoundTrip(t *testing.T) {
	got := runReturn(t, "f32 x = 1.5; u32 bits = bitcast<u32>(x); f32 y = bitcast<f32>(bits); return cast<u32>(y == x);")
	if got != 1 {
		t.Errorf("bitcast round trip failed")
	}
}

func TestPromoteGlobalSurvivesScopePop(t *testing.T) {
	c := New(Options{})
	src := `
u32* p = 0;
{
    u32* q = new<u32>;
    *q = 42;
    promote global(q);
    p = q;
}
return *p;
`
	if err := c.Run(src, "<test>"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	v, ok := c.ReturnValue()
	if !ok || v != 42 {
		t.Errorf("got (%d,%v), want (42,true): promote global should survive the enclosing scope pop", v, ok)
	}
}

func TestMethodCallThreadsReceiver(t *testing.T) {
	got := runReturn(t, `
struct P;
typedef s32(P*, s32) AddFn;
struct P { s32 x; AddFn* add; };
s32 addToX(P* self, s32 n) { return self.x + n; }
P* p = new<P>;
p.x = 10;
p.add = addToX;
return p.add(5);
`)
	if got != 15 {
		t.Errorf("got %d, want 15", got)
	}
}

func TestFloatReturnValueBits(t *testing.T) {
	c := New(Options{})
	if err := c.Run("f64 h(f64 a) { return a*2.0; } return h(3.5);", "<test>"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	bits, ok := c.ReturnValue()
	if !ok {
		t.Fatal("program did not return")
	}
	if got := math.Float64frombits(bits); got != 7.0 {
		t.Errorf("got %v, want 7.0", got)
	}
}
