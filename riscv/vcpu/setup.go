package vcpu

import "github.com/MROS/hypercraft/riscv/csr"

// hgatpModeSv39x4 selects the Sv39x4 two-stage translation mode (mode
// field value 8 in hgatp's top bits on RV64).
const hgatpModeSv39x4 = uint64(8) << 60

// Setup installs the guest page-table token into hgatp, seeds sepc to
// the kernel entry point, and installs the hypervisor trap delegation
// so that VS-mode traps exit to HS-mode. Unlike the x86 back-end's
// VMCS, these are plain CSRs written directly, but Setup still requires
// Bind() first and returns ErrUnbound otherwise; it is the only method
// of VcpuState that checks binding.
func (v *VcpuState) Setup() error {
	if err := v.mustBeBound(); err != nil {
		return err
	}

	v.hs.Hgatp = hgatpModeSv39x4 | (v.stage2Root >> 12)

	// HS-mode's own stvec (distinct from the guest's virtual stvec in
	// vs.Stvec) must point at the trampoline's trap landing pad so a
	// VS-mode trap this core does not delegate lands back in Go.
	csr.WriteHSStvec(vcpuTrapEntryAddr())

	// hstatus.SPV marks "the next sret enters VS-mode, not S-mode";
	// hstatusSPVP's counterpart bit is left clear so sret lands the
	// guest in its own supervisor mode.
	v.hs.Hstatus |= csr.HstatusSPV

	// Delegate every standard-delegatable exception and interrupt to
	// VS-mode so a normal guest kernel traps to itself first; only the
	// causes this core classifies (ecall from VS-mode, VS-mode page
	// faults, timer/external interrupt emulation) are left undelegated
	// and therefore land in HS-mode.
	v.hs.Hedeleg = hedelegDefault
	v.hs.Hideleg = hidelegDefault
	v.hs.Hie = hieDefault
	v.hs.Hcounteren = ^uint64(0)

	v.vs.Sepc = v.entryGPA
	v.vs.Sstatus = 0
	v.vs.Satp = 0

	v.hs.Restore()
	v.vs.Restore()

	return nil
}

const (
	// hedelegDefault delegates the common guest-handled exceptions
	// (misaligned fetch/load/store, breakpoint, U-mode ecall, page
	// faults) to VS-mode; VS-mode ecall (10) and HS-handled page faults
	// routed through the PLIC window are deliberately excluded so they
	// trap to this core instead.
	hedelegDefault = (1 << 0) | (1 << 3) | (1 << 4) | (1 << 6) | (1 << 8) |
		(1 << 12) | (1 << 13) | (1 << 15)

	// hidelegDefault delegates only the software interrupts (bits 1 and
	// 2) the guest's own trap handler services; the VS external-interrupt and
	// VS timer-interrupt bits stay undelegated, so this core's Run loop
	// observes them as exits (TimerInterruptEmulation,
	// ExternalInterruptEmulation).
	hidelegDefault = (1 << 2) | (1 << 1)

	// hieDefault enables the VS external/timer/software interrupt lines
	// at the HS level so a pending guest interrupt actually causes an
	// exit rather than being silently masked.
	hieDefault = (1 << 2) | (1 << 6) | (1 << 10)
)
