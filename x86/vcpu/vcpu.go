// Package vcpu implements the x86-64/VMX back-end's vCPU state
// container, entry/exit trampoline, initial VMCS programming and exit
// dispatch.
package vcpu

import (
	"fmt"

	"github.com/MROS/hypercraft/hal"
)

// VcpuID is a small integer identifier, unique per VM.
type VcpuID uint32

// VcpuState owns the guest general registers, extended state, pending
// events, and the VMCS handle. regs must remain the first field: the
// entry/exit trampoline indexes it at offset 0 from a VcpuState pointer.
type VcpuState struct {
	regs GuestRegisters

	id       VcpuID
	hal      hal.Hal
	vmcs     *hal.Page
	msrBmp   *hal.Page
	xstate   ExtendedState
	events   []PendingEvent
	bound    bool
	launched bool

	entryGPA   uint64
	stage2Root uint64

	memReader MemReader
}

// New allocates the VMCS and MSR-bitmap pages, writes the VMCS revision
// identifier, programs the MSR bitmap to intercept IA32_APIC_BASE and
// the x2APIC MSR range, initializes the pending-event queue, and
// captures host extended state.
func New(h hal.Hal, id VcpuID, entryGPA, stage2Root uint64) (*VcpuState, error) {
	vmcsPage, err := h.AllocPages(1)
	if err != nil {
		return nil, fmt.Errorf("vcpu: alloc vmcs page: %w", err)
	}

	msrPage, err := h.AllocPages(1)
	if err != nil {
		return nil, fmt.Errorf("vcpu: alloc msr bitmap page: %w", err)
	}

	v := &VcpuState{
		id:         id,
		hal:        h,
		vmcs:       vmcsPage,
		msrBmp:     msrPage,
		xstate:     captureHostXState(),
		events:     make([]PendingEvent, 0, eventQueueCapacity),
		entryGPA:   entryGPA,
		stage2Root: stage2Root,
	}

	writeVMCSRevisionID(v.vmcs)
	programMSRBitmap(v.msrBmp)

	return v, nil
}

// writeVMCSRevisionID stamps the first 31 bits of the VMCS region with
// the revision identifier reported by IA32_VMX_BASIC, as required before
// the region can be VMPTRLD'd.
func writeVMCSRevisionID(p *hal.Page) {
	rev := vmxBasicRevisionID()
	p.Bytes[0] = byte(rev)
	p.Bytes[1] = byte(rev >> 8)
	p.Bytes[2] = byte(rev >> 16)
	p.Bytes[3] = byte(rev>>24) & 0x7f
}

// programMSRBitmap sets the intercept bits for IA32_APIC_BASE (0x1B) and
// the x2APIC MSR range (0x800..=0x83F) in both the read and write
// low-range regions of the bitmap.
func programMSRBitmap(p *hal.Page) {
	setBit := func(region []byte, msr uint32) {
		region[msr/8] |= 1 << (msr % 8)
	}

	readLow := p.Bytes[0:1024]
	writeLow := p.Bytes[2048:3072]

	setBit(readLow, 0x1B)
	setBit(writeLow, 0x1B)

	for msr := uint32(0x800); msr <= 0x83F; msr++ {
		setBit(readLow, msr)
		setBit(writeLow, msr)
	}
}

// Bind makes this vCPU's VMCS current on this CPU (VMPTRLD). Guarantee:
// all subsequent reads/writes to VMCS fields must occur while bound.
func (v *VcpuState) Bind() error {
	if !vmclear(uint64(v.vmcs.HostAddr)) {
		return fmt.Errorf("vcpu: vmclear: %w", ErrUnbound)
	}

	if !vmptrld(uint64(v.vmcs.HostAddr)) {
		return fmt.Errorf("vcpu: vmptrld: %w", ErrUnbound)
	}

	v.bound = true

	return nil
}

// Unbind detaches the VMCS from this CPU ahead of cross-CPU scheduling.
func (v *VcpuState) Unbind() error {
	if !v.bound {
		return nil
	}

	if !vmclear(uint64(v.vmcs.HostAddr)) {
		return fmt.Errorf("vcpu: vmclear on unbind: %w", ErrUnbound)
	}

	v.bound = false

	return nil
}

// Close clears the VMCS from any CPU's local cache and releases the
// control pages, the Go analogue of VcpuState's Drop.
func (v *VcpuState) Close() error {
	if v.bound {
		if err := v.Unbind(); err != nil {
			return err
		}
	}

	if err := v.hal.FreePages(v.vmcs); err != nil {
		return err
	}

	return v.hal.FreePages(v.msrBmp)
}

// Regs returns the guest general-purpose register file.
func (v *VcpuState) Regs() *GuestRegisters {
	return &v.regs
}

func (v *VcpuState) mustBeBound() error {
	if !v.bound {
		return ErrUnbound
	}

	return nil
}

// SetStackPointer writes GUEST_RSP.
func (v *VcpuState) SetStackPointer(rsp uint64) error {
	if err := v.mustBeBound(); err != nil {
		return err
	}

	vmwriteMust(fieldGuestRSP, rsp)

	return nil
}

// StackPointer reads GUEST_RSP.
func (v *VcpuState) StackPointer() (uint64, error) {
	if err := v.mustBeBound(); err != nil {
		return 0, err
	}

	return vmreadMust(fieldGuestRSP), nil
}

// Rip reads GUEST_RIP.
func (v *VcpuState) Rip() (uint64, error) {
	if err := v.mustBeBound(); err != nil {
		return 0, err
	}

	return vmreadMust(fieldGuestRIP), nil
}

// AdvanceRip bumps GUEST_RIP by n, the per-exit instruction length used
// by CPUID (n=2) and XSETBV (n=3) emulation.
func (v *VcpuState) AdvanceRip(n uint64) error {
	if err := v.mustBeBound(); err != nil {
		return err
	}

	rip := vmreadMust(fieldGuestRIP)
	vmwriteMust(fieldGuestRIP, rip+n)

	return nil
}

// QueueEvent appends an interrupt or exception to the pending-event
// queue.
func (v *VcpuState) QueueEvent(vector uint8, hasErr bool, errCode uint32) {
	v.events = append(v.events, PendingEvent{Vector: vector, HasError: hasErr, ErrCode: errCode})
}

// SetInterruptWindow toggles the primary-control bit that causes an exit
// as soon as interrupts become deliverable.
func (v *VcpuState) SetInterruptWindow(enable bool) error {
	if err := v.mustBeBound(); err != nil {
		return err
	}

	ctrl := vmreadMust(fieldCPUBasedExecControl)

	const interruptWindowExiting = 1 << 2

	if enable {
		ctrl |= interruptWindowExiting
	} else {
		ctrl &^= interruptWindowExiting
	}

	vmwriteMust(fieldCPUBasedExecControl, ctrl)

	return nil
}

// guestInterruptsBlocked reports whether RFLAGS.IF is clear or the
// interruptibility-state field blocks delivery right now.
func (v *VcpuState) guestInterruptsBlocked() bool {
	const flagsIF = 1 << 9

	rflags := vmreadMust(fieldGuestRFLAGS)
	if rflags&flagsIF == 0 {
		return true
	}

	const blockingMask = 0xF // STI-shadow, MOV-SS-shadow, SMI, NMI blocking.

	return vmreadMust(fieldGuestInterruptibility)&blockingMask != 0
}

// injectPendingEvents drains the head of the pending-event queue into
// VM_ENTRY_INTR_INFO_FIELD, gated by the interrupt-window rule:
// exceptions (vector < 32) are injectable unconditionally; external
// interrupts require interrupts be unblocked. A head that cannot be
// injected yet is left at the head and the interrupt window is armed
// instead.
func (v *VcpuState) injectPendingEvents() error {
	if len(v.events) == 0 {
		return nil
	}

	head := v.events[0]

	if !head.isException() && v.guestInterruptsBlocked() {
		return v.SetInterruptWindow(true)
	}

	const (
		validBit         = 1 << 31
		typeHWException  = 3 << 8
		typeExtInterrupt = 0 << 8
		deliverErrorCode = 1 << 11
	)

	info := uint64(head.Vector) | validBit

	if head.isException() {
		info |= typeHWException
	} else {
		info |= typeExtInterrupt
	}

	if head.HasError {
		info |= deliverErrorCode
		vmwriteMust(fieldVMEntryExceptionCode, uint64(head.ErrCode))
	}

	vmwriteMust(fieldVMEntryIntrInfo, info)

	v.events = v.events[1:]

	return nil
}

// ExitReason returns the basic exit reason for the last exit and whether
// it represents a VM-entry failure.
func (v *VcpuState) ExitReason() (reason ExitReason, entryFailed bool) {
	raw := ExitReason(vmreadMust(fieldVMExitReason))

	return raw.basic(), raw.isEntryFailure()
}

// ExitQualification returns the exit qualification for the last exit.
func (v *VcpuState) ExitQualification() uint64 {
	return vmreadMust(fieldExitQualification)
}
