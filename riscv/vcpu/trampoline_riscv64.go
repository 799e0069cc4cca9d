package vcpu

// runTrampoline is implemented in entryexit_riscv64.s. It saves host
// callee-saved registers, writes sscratch to regs, issues sret into
// VS-mode, and on the next trap back to HS-mode (vectored through stvec,
// which Setup points at vcpuTrapEntryAddr) saves the guest's GPRs into
// regs and scause/stval/htval/htinst into the four out-params, then
// restores host state and returns normally.
func runTrampoline(regs *GuestRegisters, scauseOut, stvalOut, htvalOut, htinstOut *uint64)

// vcpuTrapEntry is the raw landing pad stvec must point at; it is never
// called from Go except to take its address.
func vcpuTrapEntry()

// vcpuTrapEntryAddr returns the address Setup must program into stvec in
// direct mode (the low two mode bits left clear).
func vcpuTrapEntryAddr() uint64
