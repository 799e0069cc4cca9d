// Package vm implements the x86-64/VMX back-end's VM-level
// orchestration: the per-vCPU driver that restores shared state, enters
// the guest, saves state back, dispatches the exit, and repeats until a
// handler surfaces a trap to the embedder.
package vm

import (
	"fmt"

	"github.com/MROS/hypercraft/gpt"
	"github.com/MROS/hypercraft/hal"
	"github.com/MROS/hypercraft/vmmtrap"
	"github.com/MROS/hypercraft/x86/vcpu"
)

// VmState is the shared snapshot the VMM may mutate between calls to
// Run.
type VmState struct {
	Regs vcpu.GuestRegisters
}

// VM owns one VMX vCPU and its second-stage page table.
type VM struct {
	hal  hal.Hal
	gpt  *gpt.Table
	vcpu *vcpu.VcpuState

	state VmState
}

// New constructs a VM bound to a single vCPU with entry point entryGPA
// and second-stage page table pt.
func New(h hal.Hal, pt *gpt.Table, entryGPA uint64) (*VM, error) {
	// XGETBV faults until CR4.OSXSAVE is on, and vcpu.New snapshots the
	// host's XCR0/XSS, so this must precede construction.
	vcpu.EnableXSAVE()

	vmcpu, err := vcpu.New(h, 0, entryGPA, pt.Token())
	if err != nil {
		return nil, fmt.Errorf("vm: %w", err)
	}

	return &VM{hal: h, gpt: pt, vcpu: vmcpu}, nil
}

// InitVcpu installs the page-table token and snapshots initial GPRs.
func (m *VM) InitVcpu() error {
	if err := m.vcpu.Bind(); err != nil {
		return fmt.Errorf("vm: bind: %w", err)
	}

	if err := m.vcpu.SetupVMCS(); err != nil {
		return fmt.Errorf("vm: setup vmcs: %w", err)
	}

	m.state.Regs = *m.vcpu.Regs()

	return nil
}

// SetMemReader wires a guest-physical memory reader used only for the
// diagnostic dump on a fatal fault.
func (m *VM) SetMemReader(r vcpu.MemReader) {
	m.vcpu.SetMemReader(r)
}

// Run drives the vCPU until a handler produces a VMM-observable
// trap. Each iteration: restore GPRs from the shared VmState, enter
// the guest, save GPRs back, dispatch the exit and save the handler's
// register updates (e.g. CPUID results) back too; repeat unless the
// dispatcher surfaces a trap.
func (m *VM) Run() (vmmtrap.Trap, error) {
	for {
		*m.vcpu.Regs() = m.state.Regs

		if err := m.vcpu.Enter(); err != nil {
			return vmmtrap.Trap{}, fmt.Errorf("vm: enter: %w", err)
		}

		m.state.Regs = *m.vcpu.Regs()

		if trap, handled := m.vcpu.Dispatch(); !handled {
			return *trap, nil
		}

		m.state.Regs = *m.vcpu.Regs()
	}
}

// Close releases the vCPU's control pages.
func (m *VM) Close() error {
	return m.vcpu.Close()
}
