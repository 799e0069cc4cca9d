// Package vm implements the RISC-V/H-extension back-end's VM-level
// orchestration: the per-vCPU driver that restores shared state,
// enters the guest, saves state back, dispatches the exit through SBI
// and the PLIC model, and repeats until a handler surfaces a trap to
// the embedder.
package vm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/MROS/hypercraft/gpt"
	"github.com/MROS/hypercraft/hal"
	"github.com/MROS/hypercraft/riscv/csr"
	"github.com/MROS/hypercraft/riscv/plic"
	"github.com/MROS/hypercraft/riscv/sbi"
	"github.com/MROS/hypercraft/riscv/vcpu"
	"github.com/MROS/hypercraft/vmmtrap"
)

// MemReader reads guest memory at a guest virtual address; installed
// via SetMemReader so the PLIC decoder can fetch a trapping
// instruction when htinst did not provide one.
type MemReader func(gva uint64, n int) ([]byte, error)

var (
	errNoMemReader = errors.New("vm: page fault needs instruction fetch but no MemReader installed")
	errShortRead   = errors.New("vm: MemReader returned fewer than 2 bytes")
)

// noInput is the usize::MAX sentinel Console GetChar returns on an
// empty InputBuffer.
const noInput = ^uint64(0)

// plicWindow is the span of guest-physical addresses the PLIC model
// claims.
const plicWindow = plic.WindowSize

// VmState is the shared snapshot the VMM may mutate between calls to
// Run.
type VmState struct {
	Regs              vcpu.GuestRegisters
	AdvancePC         bool
	InstructionLength uint64
}

// VM owns one H-extension vCPU, its PLIC model, and the console/timer
// state SBI calls observe.
type VM struct {
	hal      hal.Hal
	gpt      *gpt.Table
	vcpu     *vcpu.VcpuState
	plic     *plic.State
	firmware sbi.Firmware

	memReader MemReader

	state VmState

	timer       uint64
	inputBuffer []uint64
}

// New constructs a VM bound to a single vCPU with entry point entryGPA
// and second-stage page table pt.
func New(h hal.Hal, pt *gpt.Table, entryGPA uint64) (*VM, error) {
	vp, err := vcpu.New(h, 0, entryGPA, pt.Token())
	if err != nil {
		return nil, fmt.Errorf("vm: %w", err)
	}

	return &VM{
		hal:   h,
		gpt:   pt,
		vcpu:  vp,
		plic:  plic.New(),
		timer: noInput,
		state: VmState{InstructionLength: 4},
	}, nil
}

// SetMemReader installs the guest-memory accessor the PLIC decoder
// falls back to when htinst is unavailable.
func (m *VM) SetMemReader(r MemReader) {
	m.memReader = r
}

// InitVcpu binds the vCPU, programs its initial CSR and stage-2
// page-table state, and snapshots its initial GPRs into the shared
// VmState.
func (m *VM) InitVcpu() error {
	if err := m.vcpu.Bind(); err != nil {
		return fmt.Errorf("vm: bind: %w", err)
	}

	if err := m.vcpu.Setup(); err != nil {
		return fmt.Errorf("vm: setup: %w", err)
	}

	m.state.Regs = *m.vcpu.Regs()

	return nil
}

// AddCharToInputBuffer appends a byte of console input for SBI
// Console GetChar to consume later.
func (m *VM) AddCharToInputBuffer(c byte) {
	m.inputBuffer = append(m.inputBuffer, uint64(c))
}

func (m *VM) readFromInputBuffer() uint64 {
	if len(m.inputBuffer) == 0 {
		return noInput
	}

	c := m.inputBuffer[0]
	m.inputBuffer = m.inputBuffer[1:]

	return c
}

// GetTimer returns the guest-programmed absolute deadline from the
// last SBI SetTimer call, or the noInput sentinel before the guest has
// set one.
func (m *VM) GetTimer() uint64 {
	return m.timer
}

// Close releases the vCPU. RISC-V owns no control-page allocation of
// its own, so this exists only for interface symmetry with the x86
// back-end.
func (m *VM) Close() error {
	return m.vcpu.Close()
}

// Run drives the vCPU until a handler produces a VMM-observable
// trap. Each iteration: restore shared state, enter the guest, save
// state back, classify and dispatch the exit, then save the handler's
// register updates (SBI results, PLIC loads) back too; repeat unless
// the dispatcher surfaces a trap.
func (m *VM) Run() (vmmtrap.Trap, error) {
	for {
		m.restoreState()

		m.state.AdvancePC = false
		m.state.InstructionLength = 4

		m.vcpu.Run()

		m.saveState()

		kind, faultAddr, priv := m.vcpu.Classify()

		switch kind {
		case vcpu.ExitEcall:
			if trap, stop := m.handleEcall(); stop {
				return trap, nil
			}

		case vcpu.ExitPageFault:
			if priv == vcpu.PrivilegeUser {
				m.vcpu.Fatal(fmt.Sprintf("%v: user-mode page fault", vcpu.ErrPageFault))
			}

			if faultAddr < plic.Base || faultAddr >= plic.Base+plicWindow {
				m.vcpu.Fatal(fmt.Sprintf("%v: addr=%#x outside plic window", vcpu.ErrPageFault, faultAddr))
			}

			n, err := m.handlePlic(faultAddr)
			if err != nil {
				m.vcpu.Fatal(err.Error())
			}

			m.state.AdvancePC = true
			m.state.InstructionLength = n

		case vcpu.ExitTimerInterruptEmulation:
			return vmmtrap.NewTimerInterruptEmulation(), nil

		case vcpu.ExitExternalInterruptEmulation:
			m.handleIRQ()

		default:
			return vmmtrap.NewUnhandled(uint32(m.vcpu.LastScause()), m.vcpu.LastStval()), nil
		}

		m.state.Regs = *m.vcpu.Regs()
	}
}

// restoreState loads GPRs and CSRs from the shared snapshot, then
// advances the PC if the previous iteration's handler asked for it.
func (m *VM) restoreState() {
	*m.vcpu.Regs() = m.state.Regs
	m.vcpu.RestoreVSCSRs()
	m.vcpu.RestoreVirtualHSCSRs()

	if m.state.AdvancePC {
		m.vcpu.AdvancePC(m.state.InstructionLength)
	}
}

// saveState snapshots GPRs and CSRs back into the shared state after
// an entry/exit round trip.
func (m *VM) saveState() {
	m.state.Regs = *m.vcpu.Regs()
	m.vcpu.SaveVirtualHSCSRs()
	m.vcpu.SaveVSCSRs()
}

// handleEcall dispatches a guest ecall by SBI extension. It reports
// (trap, true) only for SetTimer, the sole SBI call this core surfaces
// to the embedder rather than completing locally.
func (m *VM) handleEcall() (vmmtrap.Trap, bool) {
	regs := m.vcpu.Regs()
	call := sbi.Decode(
		regs.Reg(vcpu.RegA7), regs.Reg(vcpu.RegA6),
		regs.A0(), regs.A1(), regs.Reg(vcpu.RegA2),
		regs.Reg(vcpu.RegA3), regs.Reg(vcpu.RegA4), regs.Reg(vcpu.RegA5),
	)

	m.state.AdvancePC = true

	switch call.Extension {
	case sbi.ExtBase:
		res := m.firmware.Base(call.Function, call.Args[0])
		regs.SetA0(0)
		regs.SetA1(res.Value)

	case sbi.ExtConsoleGetChar:
		regs.SetA0(m.readFromInputBuffer())

	case sbi.ExtConsolePutChar:
		m.firmware.ConsolePutChar(byte(call.Args[0]))

	case sbi.ExtSetTimer:
		m.timer = call.Args[0]

		return vmmtrap.NewSetTimer(m.timer), true

	case sbi.ExtReset:
		m.firmware.Reset()

	case sbi.ExtRemoteFence:
		res := m.firmware.RemoteFence(call.Function, call.Args[0], call.Args[1], call.Args[2], call.Args[3])
		regs.SetA0(res.Error)
		regs.SetA1(res.Value)

	case sbi.ExtPMU:
		res := m.firmware.PMU(call.Function, call.Args[0], call.Args[1], call.Args[2])
		regs.SetA0(res.Error)
		regs.SetA1(res.Value)

	default:
		regs.SetA0(sbi.ErrNotSupported)
	}

	return vmmtrap.Trap{}, false
}

// handlePlic decodes and services one trapping access over the PLIC
// MMIO window, returning the instruction length to advance the PC by.
func (m *VM) handlePlic(faultAddr uint64) (uint64, error) {
	inst := m.vcpu.LastTrapInst()

	if inst == 0 {
		fetched, err := m.fetchInstruction(m.vcpu.LastSepc())
		if err != nil {
			return 0, err
		}

		inst = fetched
	}

	access, err := vcpu.DecodePlicAccess(inst)
	if err != nil {
		return 0, err
	}

	if access.IsStore {
		m.plic.WriteU32(faultAddr, uint32(m.vcpu.Regs().Reg(access.Rs2)))
	} else {
		m.vcpu.Regs().SetReg(access.Rd, uint64(m.plic.ReadU32(faultAddr)))
	}

	return access.Len, nil
}

// fetchInstruction reads up to 4 bytes at gva through the installed
// MemReader and returns them as a little-endian instruction word,
// truncated to 16 bits if only a compressed instruction was available.
func (m *VM) fetchInstruction(gva uint64) (uint32, error) {
	if m.memReader == nil {
		return 0, errNoMemReader
	}

	b, err := m.memReader(gva, 4)
	if err != nil {
		return 0, fmt.Errorf("vm: fetch instruction at %#x: %w", gva, err)
	}

	if len(b) < 2 {
		return 0, errShortRead
	}

	if len(b) < 4 {
		return uint32(binary.LittleEndian.Uint16(b)), nil
	}

	return binary.LittleEndian.Uint32(b), nil
}

// handleIRQ services an external-interrupt-emulation exit: pull the
// pending IRQ for context 1 out of the PLIC model and reflect it into
// the guest-visible claim register, then raise
// hvip.VSEIP so the guest observes a pending external interrupt on its
// next entry.
func (m *VM) handleIRQ() {
	const guestContext = 1

	irq := m.plic.Claim(guestContext)
	if irq == 0 {
		return
	}

	csr.SetHvipVSEIP(true)
}
