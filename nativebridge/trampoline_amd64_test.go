//go:build (linux || darwin) && amd64

package nativebridge

import (
	"testing"

	"golang.org/x/arch/x86/x86asm"
)

// disassemble decodes code from offset 0 until a ret (0xC3) is consumed,
// the same way a debugger would walk a trampoline page: BuildTrampoline's
// output has no length prefix, just a prologue/spill/call/epilogue stream
// ending in a single ret.
func disassemble(t *testing.T, code []byte) []x86asm.Inst {
	t.Helper()
	var insts []x86asm.Inst
	off := 0
	for off < len(code) {
		inst, err := x86asm.Decode(code[off:], 64)
		if err != nil {
			t.Fatalf("x86asm.Decode at offset %d: %v", off, err)
		}
		insts = append(insts, inst)
		off += inst.Len
		if inst.Op == x86asm.RET {
			break
		}
	}
	return insts
}

func TestBuildTrampolineSysVDecodesCleanly(t *testing.T) {
	sig := Signature{Args: []ArgKind{ArgInt, ArgFloat, ArgInt}, Return: ArgInt}
	page, codeOffset := BuildTrampoline(0, sig, []byte{0xAA, 0xBB}, 0x1111, 0x2222)

	insts := disassemble(t, page[codeOffset:])
	if len(insts) == 0 {
		t.Fatal("decoded zero instructions")
	}
	if insts[0].Op != x86asm.PUSH {
		t.Errorf("first instruction = %v, want PUSH rbp", insts[0].Op)
	}
	last := insts[len(insts)-1]
	if last.Op != x86asm.RET {
		t.Errorf("last decoded instruction = %v, want RET", last.Op)
	}

	// Every byte in the code region must belong to some decoded
	// instruction: a decode error partway through would mean the emitter
	// produced a byte sequence that doesn't parse as valid x86-64, which
	// BuildTrampoline's hand-assembled opcodes should never do.
	total := 0
	for _, in := range insts {
		total += in.Len
	}
	if total != len(page)-codeOffset {
		t.Errorf("decoded %d bytes, trampoline code is %d bytes", total, len(page)-codeOffset)
	}
}

func TestBuildTrampolineDescriptorPrecedesCode(t *testing.T) {
	descriptor := []byte{1, 2, 3, 4, 5}
	page, codeOffset := BuildTrampoline(0, Signature{Args: []ArgKind{ArgInt}}, descriptor, 0, 0)

	if codeOffset < len(descriptor) {
		t.Fatalf("codeOffset %d overlaps descriptor of length %d", codeOffset, len(descriptor))
	}
	if codeOffset%16 != 0 {
		t.Errorf("codeOffset %d not 16-byte aligned", codeOffset)
	}
	for i, b := range descriptor {
		if page[i] != b {
			t.Errorf("descriptor byte %d = %#x, want %#x", i, page[i], b)
		}
	}
}

func TestBuildTrampolineVariadicPadsArgsBlock(t *testing.T) {
	sig := Signature{Args: []ArgKind{ArgInt}, Variadic: true}
	if got := argsBlockSize(sig); got%16 != 0 {
		t.Errorf("argsBlockSize(%+v) = %d, not 16-byte aligned", sig, got)
	}
}
