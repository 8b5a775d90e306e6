//go:build windows && amd64

package nativebridge

// BuildTrampoline emits a Windows x64 trampoline: the first four
// arguments share one slot counter between rcx/rdx/r8/r9 and xmm0-xmm3
// (spec.md 4.6/4.7). Arguments past the fourth are not read: their cells
// are left unwritten and the caller's stack area is never read back, the
// same as in the SysV generator.
func BuildTrampoline(pageBase uintptr, sig Signature, descriptor []byte, ctxIdentity, fnIdentity uintptr) (page []byte, codeOffset int) {
	descOff := len(descriptor)
	codeOffset = descOff
	if codeOffset%16 != 0 {
		codeOffset += 16 - codeOffset%16
	}

	e := &emitter{}
	e.pushRBP()
	e.movRBPRSP()
	// Windows reserves 32 bytes of shadow space below the return address
	// for every call; the args block sits below that.
	frameSize := argsBlockSize(sig) + 32
	e.subRSPimm32(uint32(frameSize))

	slotIntRegs := []intReg{regRCX, regRDX, regR8, regR9}
	slotXMM := []xmmReg{xmm0, xmm1, xmm2, xmm3}
	for idx, k := range sig.Args {
		if idx >= 4 {
			break
		}
		disp := uint8((idx + 1) * argBlockSlotSize)
		if k == ArgFloat {
			e.movStoreXMMToRBPDisp8(slotXMM[idx], disp)
		} else {
			e.movStoreRegToRBPDisp8(slotIntRegs[idx], disp)
		}
	}

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
