//go:build !riscv64

package vcpu

// Non-riscv64 builds get panicking stand-ins for the entry/exit
// trampoline so the package still compiles; only the pure-logic paths
// (instruction decode, exit classification) are usable off-arch.

const errNotRiscv64 = "vcpu: h-extension back-end requires riscv64"

func runTrampoline(regs *GuestRegisters, scauseOut, stvalOut, htvalOut, htinstOut *uint64) {
	panic(errNotRiscv64)
}

func vcpuTrapEntry() { panic(errNotRiscv64) }

func vcpuTrapEntryAddr() uint64 { panic(errNotRiscv64) }
