package vm

import (
	"testing"

	"github.com/MROS/hypercraft/gpt"
	"github.com/MROS/hypercraft/hal"
	"github.com/MROS/hypercraft/riscv/sbi"
	"github.com/MROS/hypercraft/riscv/vcpu"
	"github.com/MROS/hypercraft/vmmtrap"
)

// newTestVM builds a VM without ever entering the guest; the SBI
// dispatch paths under test read and write only the register snapshot
// and the VM's own buffers.
func newTestVM(t *testing.T) *VM {
	t.Helper()

	m, err := New(hal.DefaultHal{}, gpt.New(0x8000_0000), 0x8020_0000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return m
}

// TestGetCharEmptyBuffer: a Console GetChar ecall with nothing buffered
// must read the all-ones sentinel into a0 and still advance the PC past
// the ecall.
func TestGetCharEmptyBuffer(t *testing.T) {
	t.Parallel()

	m := newTestVM(t)

	m.vcpu.Regs().SetReg(vcpu.RegA7, sbi.ExtConsoleGetChar)

	if _, stop := m.handleEcall(); stop {
		t.Fatalf("GetChar must be completed locally, not surfaced")
	}

	if got := m.vcpu.Regs().A0(); got != ^uint64(0) {
		t.Fatalf("a0: got %#x, want all-ones sentinel", got)
	}

	if !m.state.AdvancePC {
		t.Fatalf("AdvancePC: got false, want true")
	}

	if m.state.InstructionLength != 4 {
		t.Fatalf("InstructionLength: got %d, want 4", m.state.InstructionLength)
	}
}

// TestGetCharDrainsInPushOrder: buffered console bytes come back one
// per GetChar, oldest first.
func TestGetCharDrainsInPushOrder(t *testing.T) {
	t.Parallel()

	m := newTestVM(t)

	m.AddCharToInputBuffer('h')
	m.AddCharToInputBuffer('i')

	m.vcpu.Regs().SetReg(vcpu.RegA7, sbi.ExtConsoleGetChar)

	for _, want := range []uint64{'h', 'i'} {
		m.handleEcall()

		if got := m.vcpu.Regs().A0(); got != want {
			t.Fatalf("a0: got %#x, want %#x", got, want)
		}
	}

	m.handleEcall()

	if got := m.vcpu.Regs().A0(); got != ^uint64(0) {
		t.Fatalf("a0 after drain: got %#x, want all-ones sentinel", got)
	}
}

// TestSetTimerSurfaces: SetTimer must record the deadline, surface it
// as a trap, and leave it readable through GetTimer.
func TestSetTimerSurfaces(t *testing.T) {
	t.Parallel()

	m := newTestVM(t)

	m.vcpu.Regs().SetReg(vcpu.RegA7, sbi.ExtSetTimer)
	m.vcpu.Regs().SetA0(0xDEAD_BEEF)

	trap, stop := m.handleEcall()
	if !stop {
		t.Fatalf("SetTimer must surface to the embedder")
	}

	if trap.Kind != vmmtrap.SetTimer || trap.Deadline != 0xDEAD_BEEF {
		t.Fatalf("trap: got %v, want SetTimer(0xdeadbeef)", trap)
	}

	if got := m.GetTimer(); got != 0xDEAD_BEEF {
		t.Fatalf("GetTimer: got %#x, want 0xdeadbeef", got)
	}
}

// TestUnknownExtensionRejected: an extension this core neither services
// nor forwards reads SBI_ERR_NOT_SUPPORTED back in a0.
func TestUnknownExtensionRejected(t *testing.T) {
	t.Parallel()

	m := newTestVM(t)

	m.vcpu.Regs().SetReg(vcpu.RegA7, 0x0A0A_0A0A)

	if _, stop := m.handleEcall(); stop {
		t.Fatalf("unknown extension must not surface a trap")
	}

	if got := m.vcpu.Regs().A0(); got != sbi.ErrNotSupported {
		t.Fatalf("a0: got %#x, want SBI_ERR_NOT_SUPPORTED", got)
	}
}

// TestTimerUnsetByDefault: before any SetTimer the deadline reads as
// the all-ones "no timer" value.
func TestTimerUnsetByDefault(t *testing.T) {
	t.Parallel()

	m := newTestVM(t)

	if got := m.GetTimer(); got != ^uint64(0) {
		t.Fatalf("GetTimer: got %#x, want all-ones", got)
	}
}
