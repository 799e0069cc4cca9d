package vcpu

import "github.com/MROS/hypercraft/cpuid"

// hypervisorVendorString is written into EBX/ECX/EDX for leaf
// 0x40000000.
const hypervisorVendorString = "RVMRVMRVMRVM"

// handleCPUID emulates the CPUID leaves the hypervisor must intercept
// for; every other leaf is passed through to the host
// CPU untouched. eax/ecx are the guest's requested leaf/sub-leaf; the
// guest's XCR0/XSS must already be loaded (loadGuestXState) before this
// runs, since leaf 0xD depends on it.
func handleCPUID(eax, ecx uint32) (raxOut, rbxOut, rcxOut, rdxOut uint32) {
	switch eax {
	case 0x1:
		a, b, c, d := cpuid.CPUIDSub(eax, ecx)
		c &^= 1 << 5 // clear VMX feature bit.
		c |= 1 << 31 // set hypervisor-present bit.

		return a, b, c, d

	case 0x7:
		if ecx == 0 {
			a, b, c, d := cpuid.CPUIDSub(eax, ecx)
			c &^= 1 << 5 // clear WAITPKG.

			return a, b, c, d
		}

		return cpuid.CPUIDSub(eax, ecx)

	case 0xD:
		// Forwarded while guest XCR0/XSS are loaded; the caller is
		// responsible for that ordering (see dispatch.go).
		return cpuid.CPUIDSub(eax, ecx)

	case 0x40000000:
		var b, c, d uint32

		vs := hypervisorVendorString

		b = uint32(vs[0]) | uint32(vs[1])<<8 | uint32(vs[2])<<16 | uint32(vs[3])<<24
		c = uint32(vs[4]) | uint32(vs[5])<<8 | uint32(vs[6])<<16 | uint32(vs[7])<<24
		d = uint32(vs[8]) | uint32(vs[9])<<8 | uint32(vs[10])<<16 | uint32(vs[11])<<24

		return 0x40000001, b, c, d

	case 0x40000001:
		return 0, 0, 0, 0

	default:
		return cpuid.CPUIDSub(eax, ecx)
	}
}
