package vcpu

import "unsafe"

// hostRSPBase returns the address of v's guest register file, the
// base HOST_RSP is computed relative to. v is pinned for its entire
// lifetime by its owner (x86/vm.VM), so this address is stable.
func hostRSPBase(v *VcpuState) uintptr {
	return uintptr(unsafe.Pointer(&v.regs))
}
