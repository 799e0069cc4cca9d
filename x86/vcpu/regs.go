package vcpu

// GuestRegisters is the guest general-purpose register file in the exact
// order the entry/exit assembly indexes by constant offset. It is the
// first field of VcpuState so that the trampoline can pivot RSP straight
// to its address.
//
// RSP itself lives in the VMCS (GUEST_RSP), not here. The slot at RSP's
// natural position is repurposed to stash host_stack_top across the
// entry/exit boundary: see entryexit_amd64.s.
type GuestRegisters struct {
	RAX          uint64
	RBX          uint64
	RCX          uint64
	RDX          uint64
	RSI          uint64
	RDI          uint64
	HostStackTop uint64 // RSP's slot; never the guest's RSP.
	RBP          uint64
	R8           uint64
	R9           uint64
	R10          uint64
	R11          uint64
	R12          uint64
	R13          uint64
	R14          uint64
	R15          uint64
}

// regsSize is the byte size of GuestRegisters; setupHostState uses it to
// point HOST_RSP just past the register file. The trampoline's own
// offsets are literal constants, so keep both in lockstep with the field
// count above.
const regsSize = 16 * 8

// ExtendedState holds the host and guest XCR0/IA32_XSS values swapped
// around guest entry/exit. Initialized from the host's current
// values so the first entry runs with host-identical extended state.
type ExtendedState struct {
	HostXCR0  uint64
	GuestXCR0 uint64
	HostXSS   uint64
	GuestXSS  uint64
}

// PendingEvent is one queued interrupt or exception awaiting injection.
// Vector < 32 is an exception (injectable unconditionally); vector >= 32
// is an external interrupt (requires the interrupt window to be open).
type PendingEvent struct {
	Vector   uint8
	HasError bool
	ErrCode  uint32
}

func (e PendingEvent) isException() bool {
	return e.Vector < 32
}

// eventQueueCapacity is the injection queue's initial FIFO depth.
const eventQueueCapacity = 16
