//go:build (linux || darwin) && amd64

package nativebridge

import "math"

// rawCallSysV is implemented in call_sysv_amd64.s.
func rawCallSysV(fn uintptr, intRegs *[numIntRegsSysV]uint64, fltRegs *[numFltRegsSysV]uint64, stack *uint64, stackLen int64, fltUsed uint64) (intRet uint64, fltRet uint64)

// sysvFrame accumulates marshalled arguments the way the original ffi_*
// helpers do: fixed-size register arrays filled front-to-back, and a
// growable overflow stack for anything past the register count.
type sysvFrame struct {
	intRegs [numIntRegsSysV]uint64
	fltRegs [numFltRegsSysV]uint64
	intPtr  int
	fltPtr  int
	fltUsed uint64
	stack   []uint64
}

func (f *sysvFrame) pushInt(v uint64) {
	if f.intPtr < numIntRegsSysV {
		f.intRegs[f.intPtr] = v
		f.intPtr++
		return
	}
	f.stack = append(f.stack, v)
}

func (f *sysvFrame) pushFloatBits(bits uint64) {
	if f.fltPtr < numFltRegsSysV {
		f.fltRegs[f.fltPtr] = bits
		f.fltPtr++
		f.fltUsed++
		return
	}
	f.stack = append(f.stack, bits)
}

// Call marshals args per the System V AMD64 convention and invokes fn.
// fixedCount is the number of non-variadic leading arguments; everything
// after it is subject to the float32->float64 variadic promotion rule
// spec.md 4.6 and 5 describe.
func Call(fn uintptr, args []Value, fixedCount int) (intResult uint64, fltResult float64) {
	var f sysvFrame
	for i, a := range args {
		variadic := i >= fixedCount
		switch a.Kind {
		case KindInt, KindPointer:
			f.pushInt(a.Bits)
		case KindFloat64:
			f.pushFloatBits(a.Bits)
		case KindFloat32:
			if variadic {
				f.pushFloatBits(math.Float64bits(float64(a.Float32())))
			} else {
				// Low 32 bits carry the float, high bits zeroed: the
				// value already arrives zero-extended this way.
				f.pushFloatBits(a.Bits)
			}
		}
	}
	if len(f.stack)%2 == 1 {
		f.stack = append(f.stack, 0)
	}
	var stackPtr *uint64
	if len(f.stack) > 0 {
		stackPtr = &f.stack[0]
	}
	intRet, fltRetBits := rawCallSysV(fn, &f.intRegs, &f.fltRegs, stackPtr, int64(len(f.stack)), f.fltUsed)
	return intRet, math.Float64frombits(fltRetBits)
}
