//go:build (linux || darwin) && amd64

package nativebridge

// BuildTrampoline emits a System V AMD64 trampoline: a small machine-code
// stub that, when entered as an ordinary C function, spills its
// register-borne arguments into a stack block and calls driverEntry with
// (ctx, argsBlock, frameBase, fn), per spec.md 4.7. Up to 6 integer and 4
// float arguments are read from registers (rdi..r9, xmm0-xmm3); integer
// or float arguments past those counts are not read, their cells are left
// unwritten, and the caller's stack overflow area is never read back.
//
// The serialised type descriptor (ffi_push_float's counterpart on the
// type side, produced by SerializeType) is written as static data ahead
// of the code in the same page rather than copied onto the stack at
// runtime: the driver here is Go code keyed by the fn identity, not a
// second piece of generic machine code that needs to self-describe its
// caller's layout, so the copy step pawscript_generate_function_trampoline
// performs has no corresponding consumer. The bytes are still produced
// and still shipped in the executable page, preserving the observable
// "descriptor travels with the trampoline" property.
func BuildTrampoline(pageBase uintptr, sig Signature, descriptor []byte, ctxIdentity, fnIdentity uintptr) (page []byte, codeOffset int) {
	descOff := len(descriptor)
	codeOffset = descOff
	if codeOffset%16 != 0 {
		codeOffset += 16 - codeOffset%16
	}

	e := &emitter{}
	e.pushRBP()
	e.movRBPRSP()
	frameSize := argsBlockSize(sig)
	e.subRSPimm32(uint32(frameSize))

	intRegs := []intReg{regRDI, regRSI, regRDX, regRCX, regR8, regR9}
	fltRegs := []xmmReg{xmm0, xmm1, xmm2, xmm3}
	ii, fi := 0, 0
	for idx, k := range sig.Args {
		disp := uint8((idx + 1) * argBlockSlotSize)
		if k == ArgFloat {
			if fi < len(fltRegs) {
				e.movStoreXMMToRBPDisp8(fltRegs[fi], disp)
				fi++
			}
			continue
		}
		if ii < len(intRegs) {
			e.movStoreRegToRBPDisp8(intRegs[ii], disp)
			ii++
		}
	}

	// rdi = ctx, rsi = argsBlock (rbp-frameSize), rdx = frameBase (rbp),
	// rcx = fn identity -- all fixed at generation time, per the driver
	// contract in driver.go / driver_entry_amd64.s.
	e.movAbs64(regRDI, uint64(ctxIdentity))
	e.leaRBPDisp32(regRSI, uint32(frameSize))
	e.movRegReg(regRDX, regRBP)
	e.movAbs64(regRCX, uint64(fnIdentity))
	e.movAbs64(regRAX, uint64(DriverEntryAddr()))
	e.callReg(regRAX)

	e.leave()
	e.ret()

	full := make([]byte, codeOffset+e.len())
	copy(full, descriptor)
	copy(full[codeOffset:], e.buf)
	return full, codeOffset
}
