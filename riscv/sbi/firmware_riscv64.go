package sbi

// sbiCall issues a raw ecall to the firmware underneath (M-mode),
// implemented in firmware_asm_riscv64.s. It is the only place this
// package touches hardware; every exported Firmware method is a thin,
// typed wrapper around it (Base, RemoteFence, PMU, console, reset).
func sbiCall(ext, fid, a0, a1, a2, a3, a4, a5 uint64) (raA0, raA1 uint64)
