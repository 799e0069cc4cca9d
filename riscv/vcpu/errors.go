package vcpu

import "errors"

var (
	// ErrUnbound is returned by Setup when the vCPU is not currently
	// bound to this hart.
	ErrUnbound = errors.New("vcpu: not bound to this hart")

	// ErrInvalidInstruction is returned when a decoded instruction in
	// the PLIC MMIO window is something other than Sw/Lw.
	ErrInvalidInstruction = errors.New("vcpu: only sw/lw are valid over the plic window")

	// ErrPageFault is a fatal programming fault: a page fault outside
	// the PLIC window, or at user privilege.
	ErrPageFault = errors.New("vcpu: unexpected page fault")
)

// The scause codes below classify the last exit. Interrupt causes
// have the top bit set; exception causes do not. Only the codes this
// back-end's core classifies are named here.
const (
	scauseInterruptBit = 1 << 63

	// Exception causes (scause top bit clear).
	//
	// The PLIC window is a guest-physical range with no stage-1 mapping
	// of its own; with vs.Satp bare and translation done entirely through
	// hgatp (setup.go), a guest access to it traps as a guest-page-fault
	// (20/21/23), not an ordinary stage-1 page fault (12/13/15) — the
	// latter are delegated straight to VS-mode by hedelegDefault and
	// never reach this classifier. htval (read as lastHtval below) is
	// only populated by hardware for these guest-page-fault causes.
	ExceptionInstructionGuestPageFault = 20
	ExceptionLoadGuestPageFault        = 21
	ExceptionStoreAMOGuestPageFault    = 23
	ExceptionVirtualSupervisorEcall    = 10

	// Interrupt causes (scause top bit set), masked off scauseInterruptBit.
	InterruptVirtualSupervisorTimer    = 6
	InterruptVirtualSupervisorExternal = 10
)

// ExitKind classifies the reason control returned to the hypervisor.
type ExitKind int

const (
	ExitEcall ExitKind = iota
	ExitPageFault
	ExitTimerInterruptEmulation
	ExitExternalInterruptEmulation
	ExitOther
)

func (k ExitKind) String() string {
	switch k {
	case ExitEcall:
		return "Ecall"
	case ExitPageFault:
		return "PageFault"
	case ExitTimerInterruptEmulation:
		return "TimerInterruptEmulation"
	case ExitExternalInterruptEmulation:
		return "ExternalInterruptEmulation"
	default:
		return "Other"
	}
}

// PrivilegeLevel distinguishes a supervisor (guest-kernel) page fault
// from a user-mode one; only the former is ever serviceable.
type PrivilegeLevel int

const (
	PrivilegeSupervisor PrivilegeLevel = iota
	PrivilegeUser
)

// Classify reads the last trap's scause/stval/htval/htinst (populated by
// the trampoline's save routine) and returns the exit kind, the faulting
// address when relevant, and the privilege level a page fault trapped
// from.
func (v *VcpuState) Classify() (kind ExitKind, faultAddr uint64, priv PrivilegeLevel) {
	cause := v.lastScause

	if cause&scauseInterruptBit != 0 {
		switch cause &^ scauseInterruptBit {
		case InterruptVirtualSupervisorTimer:
			return ExitTimerInterruptEmulation, 0, PrivilegeSupervisor
		case InterruptVirtualSupervisorExternal:
			return ExitExternalInterruptEmulation, 0, PrivilegeSupervisor
		default:
			return ExitOther, 0, PrivilegeSupervisor
		}
	}

	switch cause {
	case ExceptionVirtualSupervisorEcall:
		return ExitEcall, 0, PrivilegeSupervisor

	case ExceptionLoadGuestPageFault, ExceptionStoreAMOGuestPageFault, ExceptionInstructionGuestPageFault:
		priv := PrivilegeSupervisor
		if v.hs.Hstatus&hstatusSPVP == 0 {
			priv = PrivilegeUser
		}

		return ExitPageFault, v.lastHtval << 2, priv

	default:
		return ExitOther, 0, PrivilegeSupervisor
	}
}

// hstatusSPVP is the hstatus bit recording the guest's privilege mode at
// the time of the trap (supervisor previous virtual privilege).
const hstatusSPVP = 1 << 8

// LastScause and LastStval return the raw trap-cause registers captured
// by the trampoline on the last exit, for surfacing an unclassified
// (ExitOther) exit to the embedder.
func (v *VcpuState) LastScause() uint64 { return v.lastScause }
func (v *VcpuState) LastStval() uint64  { return v.lastStval }

// LastTrapInst returns htinst as captured by the trampoline on the last
// exit: the hardware's pre-decoded trapping instruction word, or 0 if
// the hardware did not supply one (the PLIC handler must then fetch it
// from guest memory itself).
func (v *VcpuState) LastTrapInst() uint32 {
	return uint32(v.lastHtinst)
}

// LastSepc returns the guest PC sepc held at the moment of the last
// trap (before any AdvancePC).
func (v *VcpuState) LastSepc() uint64 {
	return v.vs.Sepc
}

// Fatal aborts the process with a diagnostic dump; exported so
// riscv/vm can surface the same fatal-fault path the x86 back-end uses
// on programming errors it cannot recover from.
func (v *VcpuState) Fatal(why string) {
	v.fatal(why)
}
