package vcpu

import "errors"

var (
	// ErrUnbound is returned when a caller attempts to read/write the
	// VMCS of a VcpuState that is not currently bound to this CPU.
	ErrUnbound = errors.New("vcpu: control structure not bound to this cpu")

	// ErrInvalidParam is returned by XSETBV emulation when the guest
	// requests an architecturally illegal XCR0 value.
	ErrInvalidParam = errors.New("vcpu: invalid xcr0 value")

	// ErrCRAccess is a fatal programming fault: CR0/CR3/CR4/CR8 are not
	// supposed to be intercepted given VmcsSetup's control programming.
	ErrCRAccess = errors.New("vcpu: unexpected cr-access exit")

	// ErrEntryFailed is a fatal programming fault surfaced when the
	// VM-entry-failure bit is set on exit.
	ErrEntryFailed = errors.New("vcpu: vm-entry failed")

	// ErrLaunchFailed/ErrResumeFailed are returned by the entry
	// trampoline when VMLAUNCH/VMRESUME itself reports failure (as
	// opposed to a successful entry that immediately re-exits).
	ErrLaunchFailed = errors.New("vcpu: vmlaunch failed")
	ErrResumeFailed = errors.New("vcpu: vmresume failed")
)

// ExitReason identifies why control returned to the hypervisor. Values
// match the VMX Basic Exit Reason field (Intel SDM Vol. 3C, Appendix C).
//
//go:generate stringer -type=ExitReason
type ExitReason uint32

const (
	ExitReasonExceptionNMI           ExitReason = 0
	ExitReasonExternalInterrupt      ExitReason = 1
	ExitReasonTripleFault            ExitReason = 2
	ExitReasonInitSignal             ExitReason = 3
	ExitReasonInterruptWindow        ExitReason = 7
	ExitReasonCPUID                  ExitReason = 10
	ExitReasonHLT                    ExitReason = 12
	ExitReasonInvlpg                 ExitReason = 14
	ExitReasonRDPMC                  ExitReason = 15
	ExitReasonRDTSC                  ExitReason = 16
	ExitReasonVMCall                 ExitReason = 18
	ExitReasonCRAccess               ExitReason = 28
	ExitReasonDRAccess               ExitReason = 29
	ExitReasonIOInstruction          ExitReason = 30
	ExitReasonRDMSR                  ExitReason = 31
	ExitReasonWRMSR                  ExitReason = 32
	ExitReasonEntryFailureGuestState ExitReason = 33
	ExitReasonEntryFailureMSRLoad    ExitReason = 34
	ExitReasonEPTViolation           ExitReason = 48
	ExitReasonEPTMisconfig           ExitReason = 49
	ExitReasonXSETBV                 ExitReason = 55

	// entryFailureBit is OR'd into the reason reported by hardware when
	// VM-entry itself failed rather than completing and re-exiting.
	entryFailureBit ExitReason = 1 << 31
)

func (r ExitReason) isEntryFailure() bool {
	return r&entryFailureBit != 0
}

func (r ExitReason) basic() ExitReason {
	return r &^ entryFailureBit
}
