package vcpu

import (
	"fmt"

	"github.com/MROS/hypercraft/hal"
	"github.com/MROS/hypercraft/riscv/csr"
)

// VcpuID is a small integer identifier, unique per VM.
type VcpuID uint32

// VcpuState owns the guest general registers, the virtual HS/VS CSR set,
// and the two-stage page-table token bound into hgatp. regs must remain
// the first field: the entry/exit trampoline indexes it at offset 0 from
// a VcpuState pointer, mirroring the x86 back-end's layout rule even
// though RISC-V's trampoline additionally saves CSRs the VMCS would
// otherwise hold.
type VcpuState struct {
	regs GuestRegisters

	id  VcpuID
	hal hal.Hal

	hs csr.HypervisorState
	vs csr.VirtualSupervisorState

	bound    bool
	launched bool

	entryGPA   uint64
	stage2Root uint64

	// lastScause/lastStval/lastHtval/lastHtinst are populated by the
	// trampoline's trap-save routine on every exit and consumed by
	// Classify.
	lastScause uint64
	lastStval  uint64
	lastHtval  uint64
	lastHtinst uint64
}

// New constructs a vCPU whose guest begins execution at entryGPA with
// the two-stage page table rooted at stage2Root.
func New(h hal.Hal, id VcpuID, entryGPA, stage2Root uint64) (*VcpuState, error) {
	return &VcpuState{
		hal:        h,
		id:         id,
		entryGPA:   entryGPA,
		stage2Root: stage2Root,
	}, nil
}

// Bind makes this vCPU's CSR set current on this hart. RISC-V has no
// pointer-load instruction analogous to VMPTRLD; "bound" here tracks the
// single-hart-at-a-time discipline, and Setup refuses to run on an
// unbound vCPU.
func (v *VcpuState) Bind() error {
	v.bound = true

	return nil
}

// Unbind detaches the vCPU ahead of cross-hart scheduling.
func (v *VcpuState) Unbind() error {
	v.bound = false

	return nil
}

// Close is the RISC-V analogue of VcpuState's Drop; there is no control
// page to release (RISC-V owns no VMCS-equivalent allocation), so this
// is a no-op kept for interface symmetry with the x86 back-end.
func (v *VcpuState) Close() error {
	return nil
}

func (v *VcpuState) mustBeBound() error {
	if !v.bound {
		return ErrUnbound
	}

	return nil
}

// Regs returns the guest general-purpose register file.
func (v *VcpuState) Regs() *GuestRegisters {
	return &v.regs
}

// Sepc reads the guest's virtual sepc (the VS-mode analogue of RIP).
func (v *VcpuState) Sepc() uint64 {
	return v.vs.Sepc
}

// SetSepc writes the guest's virtual sepc.
func (v *VcpuState) SetSepc(pc uint64) {
	v.vs.Sepc = pc
}

// AdvancePC bumps sepc by n, the per-exit instruction length used by the
// PLIC MMIO decoder (2 or 4) and by SBI emulation (always 4, the ecall
// instruction's fixed width).
func (v *VcpuState) AdvancePC(n uint64) {
	v.vs.Sepc += n
}

// Launched reports whether this vCPU has completed at least one
// successful entry. RISC-V's H-extension
// has no launch/resume instruction distinction the way VMX does — every
// entry uses the same sret-class transfer — so this is bookkeeping only,
// kept for parity with the x86 back-end's invariant.
func (v *VcpuState) Launched() bool {
	return v.launched
}

// SaveVSCSRs and RestoreVSCSRs move the guest-visible supervisor CSRs
// between this snapshot and the hardware, through their VS-prefixed
// H-extension aliases so writes take effect in VS-mode without
// trapping. Called by riscv/vm around every Run.
func (v *VcpuState) SaveVSCSRs()    { v.vs.Save() }
func (v *VcpuState) RestoreVSCSRs() { v.vs.Restore() }

// SaveVirtualHSCSRs and RestoreVirtualHSCSRs do the same for the HS-mode
// hypervisor CSRs that govern how this guest traps back to HS-mode.
func (v *VcpuState) SaveVirtualHSCSRs()    { v.hs.Save() }
func (v *VcpuState) RestoreVirtualHSCSRs() { v.hs.Restore() }

// fatal aborts the process with a diagnostic dump, mirroring the x86
// back-end's fatal-fault path.
func (v *VcpuState) fatal(why string) {
	panic(fmt.Sprintf("vcpu %d: %s: scause=%#x sepc=%#x stval=%#x htval=%#x htinst=%#x",
		v.id, why, v.lastScause, v.vs.Sepc, v.lastStval, v.lastHtval, v.lastHtinst))
}
