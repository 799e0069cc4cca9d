//go:build !riscv64

package sbi

// Non-riscv64 builds get a panicking stand-in for the firmware ecall so
// the package still compiles; Decode and the constant surface remain
// usable off-arch.

func sbiCall(ext, fid, a0, a1, a2, a3, a4, a5 uint64) (raA0, raA1 uint64) {
	panic("sbi: firmware ecall requires riscv64")
}
