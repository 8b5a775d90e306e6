// Package nativebridge isolates the two halves of PawScript's FFI: the
// caller that marshals script values into a native call per the host
// platform's ABI, and the trampoline generator that does the reverse,
// making a script function callable as an ordinary function pointer.
//
// Both halves deal in raw registers and executable memory; per the
// "Design Notes" in spec.md 9, that manoeuvring is walled off here behind
// a small capability surface so the rest of the interpreter never touches
// a register directly.
package nativebridge

import "math"

// ABI identifies which native calling convention a Signature is marshaled
// for. PawScript only targets the two listed in spec.md 1: System V
// AMD64 and Windows x64.
type ABI int

const (
	SysV ABI = iota
	Win64
)

// ValueKind is the coarse shape nativebridge cares about: how many bytes
// a value occupies and whether it travels through an integer or a
// floating point register. The interpreter's richer Type graph is
// projected down to this before crossing into nativebridge.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindFloat32
	KindFloat64
	KindPointer
	KindVarargs
)

// Value is one marshaled argument or return slot.
type Value struct {
	Kind ValueKind
	Bits uint64 // raw bits; float32/float64 values are stored reinterpreted
}

// Float64 reinterprets Bits as a float64.
func (v Value) Float64() float64 { return math.Float64frombits(v.Bits) }

// Float32 reinterprets the low 32 bits of Bits as a float32.
func (v Value) Float32() float32 { return math.Float32frombits(uint32(v.Bits)) }

// Float64Value builds a Value carrying a float64 payload.
func Float64Value(f float64) Value { return Value{Kind: KindFloat64, Bits: math.Float64bits(f)} }

// Float32Value builds a Value carrying a float32 payload.
func Float32Value(f float32) Value { return Value{Kind: KindFloat32, Bits: uint64(math.Float32bits(f))} }

// IntValue builds a Value carrying an integer or pointer payload.
func IntValue(kind ValueKind, bits uint64) Value { return Value{Kind: kind, Bits: bits} }
