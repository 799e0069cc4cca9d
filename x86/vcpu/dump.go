package vcpu

import (
	"fmt"
	"log"

	"golang.org/x/arch/x86/x86asm"
)

// MemReader reads guest-physical memory; set via SetMemReader so the
// diagnostic dump can disassemble the faulting instruction. It is owned
// by x86/vm, not by VcpuState, since VcpuState has no memory of its own.
type MemReader func(gpa uint64, n int) ([]byte, error)

// SetMemReader installs the guest-memory accessor used by dump.
func (v *VcpuState) SetMemReader(r MemReader) {
	v.memReader = r
}

// fatal aborts the process with a diagnostic dump containing exit
// reason, RIP, and a VMCS register snapshot.
func (v *VcpuState) fatal(reason ExitReason, why string) {
	log.Printf("hypercraft: fatal vcpu fault: %s (exit reason %v)", why, reason)
	log.Print(v.dump())
	panic(fmt.Sprintf("vcpu %d: %s: %v", v.id, why, reason))
}

// dump renders a human-readable snapshot of the bound VMCS and guest
// register file, plus a best-effort disassembly of the faulting
// instruction when a MemReader is installed.
func (v *VcpuState) dump() string {
	s := fmt.Sprintf("vcpu %d: regs=%#x\n", v.id, v.regs)

	if v.bound {
		rip := vmreadMust(fieldGuestRIP)
		rsp := vmreadMust(fieldGuestRSP)
		cr0 := vmreadMust(fieldGuestCR0)
		cr3 := vmreadMust(fieldGuestCR3)
		cr4 := vmreadMust(fieldGuestCR4)

		s += fmt.Sprintf("rip=%#x rsp=%#x cr0=%#x cr3=%#x cr4=%#x\n", rip, rsp, cr0, cr3, cr4)
		s += fmt.Sprintf("exit-qualification=%#x vm-instruction-error=%#x\n",
			vmreadMust(fieldExitQualification), vmreadMust(fieldVMInstructionError))

		if v.memReader != nil {
			if insn, err := v.memReader(rip, 16); err == nil {
				if d, err := x86asm.Decode(insn, 64); err == nil {
					s += fmt.Sprintf("faulting insn: %s\n", x86asm.GNUSyntax(d, rip, nil))
				}
			}
		}
	}

	return s
}
