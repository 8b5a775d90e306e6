package interp

import "math"

// Value is the evaluator's working representation of an expression
// result: either an LValue (a live address plus type) or an RValue (bytes
// with no backing address), per the explicit split spec.md's Design Notes
// 9 calls for instead of smuggling the distinction through the type's
// nullable name.
type Value struct {
	Type     *Type
	IsLValue bool
	Address  uintptr // valid when IsLValue
	raw      uint64  // valid when !IsLValue: integer bits, or float bits for float kinds
}

func lvalue(t *Type, addr uintptr) Value {
	return Value{Type: t, IsLValue: true, Address: addr}
}

func rvalueInt(t *Type, bits uint64) Value {
	return Value{Type: t, raw: bits}
}

// zeroValue stands in for the result of a dry-run evaluation: a
// correctly-typed value with no read or write behind it, the Go
// equivalent of the original's dry_run short-circuit skipping allocation
// and evaluation altogether.
func zeroValue(t *Type) Value {
	if t.Kind == KindFloat {
		return rvalueFloat(t, 0)
	}
	return rvalueInt(t, 0)
}

func rvalueFloat(t *Type, f float64) Value {
	size := t.ByteSize
	if size == 4 {
		return Value{Type: t, raw: uint64(math.Float32bits(float32(f)))}
	}
	return Value{Type: t, raw: math.Float64bits(f)}
}

// AsUint reads v as an integer/pointer bit pattern, loading from memory
// for an lvalue. A function-typed lvalue is the one exception: a
// function identifier names its own trampoline address directly (there
// is no separate storage cell holding a pointer to it, the way a
// declared `T f(...) { body }` binds the name with NoAlloc straight to
// the trampoline's address), so its value is its address, not whatever
// bytes happen to live at that address.
func (v Value) AsUint() uint64 {
	if v.IsLValue {
		if v.Type.Kind == KindFunction {
			return uint64(v.Address)
		}
		return readUint(v.Address, Sizeof(v.Type))
	}
	return v.raw
}

// AsFloat reads v as a float64, loading and widening from memory for an
// lvalue, or unpacking the stored bit pattern for an rvalue.
func (v Value) AsFloat() float64 {
	if v.IsLValue {
		return readFloat(v.Address, Sizeof(v.Type))
	}
	if v.Type.ByteSize == 4 {
		return float64(math.Float32frombits(uint32(v.raw)))
	}
	return math.Float64frombits(v.raw)
}

// StoreTo writes v's value (converted to dstType) at addr, the common tail
// of assignment and argument marshalling.
func StoreTo(addr uintptr, dstType *Type, v Value) {
	converted := convert(v, dstType)
	switch dstType.Kind {
	case KindFloat:
		writeUint(addr, dstType.ByteSize, converted.raw)
	default:
		writeUint(addr, Sizeof(dstType), converted.AsUint())
	}
}

// convert implements spec.md 4.4's cast-by-value-category rule: numeric
// conversion between int/float/pointer kinds, not a raw bit reinterpret.
func convert(v Value, dst *Type) Value {
	switch dst.Kind {
	case KindFloat:
		var f float64
		if v.Type.Kind == KindFloat {
			f = v.AsFloat()
		} else {
			f = float64(asSigned(v.AsUint(), Sizeof(v.Type), !v.Type.IsUnsigned))
		}
		return rvalueFloat(dst, f)
	case KindInt, KindPointer:
		var u uint64
		if v.Type.Kind == KindFloat {
			u = uint64(int64(v.AsFloat()))
		} else {
			u = v.AsUint()
		}
		return rvalueInt(dst, truncate(u, Sizeof(dst)))
	default:
		return rvalueInt(dst, v.AsUint())
	}
}

// bitcastValue reinterprets v's raw bytes, truncated or zero-extended to
// dst's size, without any numeric conversion.
func bitcastValue(v Value, dst *Type) Value {
	bits := truncate(v.AsUint(), Sizeof(dst))
	if dst.Kind == KindFloat {
		return Value{Type: dst, raw: bits}
	}
	return rvalueInt(dst, bits)
}

func truncate(v uint64, size int) uint64 {
	if size >= 8 || size <= 0 {
		return v
	}
	mask := uint64(1)<<(uint(size)*8) - 1
	return v & mask
}

func asSigned(bits uint64, size int, signed bool) int64 {
	if !signed {
		return int64(bits)
	}
	switch size {
	case 1:
		return int64(int8(bits))
	case 2:
		return int64(int16(bits))
	case 4:
		return int64(int32(bits))
	default:
		return int64(bits)
	}
}

// promote implements spec.md 4.4's numeric promotion rule for binary
// arithmetic operands.
func promote(a, b *Type) *Type {
	if a.Kind == KindFloat && a.ByteSize == 8 || b.Kind == KindFloat && b.ByteSize == 8 {
		return floatType(8)
	}
	if a.Kind == KindFloat || b.Kind == KindFloat {
		return floatType(4)
	}
	unsigned := (a.Kind == KindInt && a.IsUnsigned) || (b.Kind == KindInt && b.IsUnsigned)
	if a.Kind == KindPointer || a.Kind == KindFunction || b.Kind == KindPointer || b.Kind == KindFunction {
		return intType(8, true)
	}
	if Sizeof(a) == 8 || Sizeof(b) == 8 {
		return intType(8, unsigned)
	}
	return intType(4, unsigned)
}
