package vcpu

import (
	"log"

	"github.com/MROS/hypercraft/vmmtrap"
)

// Dispatch classifies the last exit and either services it internally
// (returning handled=true) or surfaces a typed trap to the VMM.
// A fatal programming fault aborts the process with a diagnostic dump.
func (v *VcpuState) Dispatch() (trap *vmmtrap.Trap, handled bool) {
	reason, entryFailed := v.ExitReason()
	if entryFailed {
		v.fatal(reason, ErrEntryFailed.Error())
	}

	switch reason {
	case ExitReasonInterruptWindow:
		if err := v.SetInterruptWindow(false); err != nil {
			v.fatal(reason, err.Error())
		}

		return nil, true

	case ExitReasonXSETBV:
		if err := v.handleXSETBV(); err != nil {
			log.Printf("hypercraft: vcpu %d: xsetbv: %v", v.id, err)
		}

		return nil, true

	case ExitReasonCPUID:
		v.handleCPUIDExit()

		return nil, true

	case ExitReasonCRAccess:
		v.fatal(reason, ErrCRAccess.Error())

		return nil, true // unreachable; fatal panics.

	case ExitReasonExceptionNMI:
		v.handleExceptionNMI()

		return nil, true

	default:
		qual := v.ExitQualification()
		t := vmmtrap.NewUnhandled(uint32(reason), qual)

		return &t, false
	}
}

// handleXSETBV emulates a guest XSETBV: only XCR index 0 is
// supported; the requested value must satisfy the XCR0 constraints
// below. An invalid combination leaves guest_xcr0 and RIP untouched and
// returns ErrInvalidParam. Dispatch only logs that error: no #GP is
// injected and nothing reaches the embedder, so the guest re-executes
// the same XSETBV on the next entry.
func (v *VcpuState) handleXSETBV() error {
	index := v.regs.RCX & 0xFFFFFFFF
	value := (v.regs.RDX << 32) | (v.regs.RAX & 0xFFFFFFFF)

	if index != 0 || !validXCR0(value) {
		return ErrInvalidParam
	}

	v.xstate.GuestXCR0 = value

	if err := v.AdvanceRip(3); err != nil {
		v.fatal(ExitReasonXSETBV, err.Error())
	}

	return nil
}

// validXCR0 checks the architectural XCR0 legality rules.
func validXCR0(xcr0 uint64) bool {
	const (
		bitFPU      = 1 << 0
		bitSSE      = 1 << 1
		bitAVX      = 1 << 2
		bitBNDREG   = 1 << 3
		bitBNDCSR   = 1 << 4
		bitOPMASK   = 1 << 5
		bitZMMHi256 = 1 << 6
		bitHi16ZMM  = 1 << 7
	)

	if xcr0&bitFPU == 0 {
		return false
	}

	if xcr0&bitAVX != 0 && xcr0&bitSSE == 0 {
		return false
	}

	bndreg, bndcsr := xcr0&bitBNDREG != 0, xcr0&bitBNDCSR != 0
	if bndreg != bndcsr {
		return false
	}

	avx512 := uint64(bitOPMASK | bitZMMHi256 | bitHi16ZMM)
	if xcr0&avx512 != 0 {
		need := uint64(bitAVX | bitOPMASK | bitZMMHi256 | bitHi16ZMM)
		if xcr0&need != need {
			return false
		}
	}

	return true
}

// handleCPUIDExit emulates a guest CPUID. Leaf 0xD must be
// serviced with guest XCR0/XSS loaded; every other leaf runs under
// whatever extended state happens to be live (host, by the time dispatch
// runs), since only 0xD depends on it.
func (v *VcpuState) handleCPUIDExit() {
	eax := uint32(v.regs.RAX)
	ecx := uint32(v.regs.RCX)

	var a, b, c, d uint32

	if eax == 0xD {
		v.loadGuestXState()
		a, b, c, d = handleCPUID(eax, ecx)
		v.loadHostXState()
	} else {
		a, b, c, d = handleCPUID(eax, ecx)
	}

	v.regs.RAX = uint64(a)
	v.regs.RBX = uint64(b)
	v.regs.RCX = uint64(c)
	v.regs.RDX = uint64(d)

	if err := v.AdvanceRip(2); err != nil {
		v.fatal(ExitReasonCPUID, err.Error())
	}
}

// handleExceptionNMI reads the exit interrupt-info field and enqueues
// the vector for re-injection on the next entry; policy (whether/how to
// reflect it) is left to the caller.
func (v *VcpuState) handleExceptionNMI() {
	info := vmreadMust(fieldVMExitIntrInfo)

	vector := uint8(info & 0xFF)

	const (
		validBit       = 1 << 31
		errorCodeValid = 1 << 11
	)

	if info&validBit == 0 {
		return
	}

	hasErr := info&errorCodeValid != 0

	var errCode uint32
	if hasErr {
		errCode = uint32(vmreadMust(fieldVMExitIntrErrorCode))
	}

	v.QueueEvent(vector, hasErr, errCode)
}
