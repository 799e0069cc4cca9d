// Package cpuid wraps the raw CPUID instruction used both by diagnostic
// dumps and by the guest CPUID emulation in x86/vcpu.
package cpuid

// CPUID executes the raw instruction against the host CPU for the given
// leaf, sub-leaf 0.
func CPUID(leaf uint32) (uint32, uint32, uint32, uint32) {
	return cpuid_low(leaf, 0)
}

// CPUIDSub executes CPUID for leaf/subleaf, needed for leaves (like 0xD)
// whose result depends on ECX on entry.
func CPUIDSub(leaf, subleaf uint32) (uint32, uint32, uint32, uint32) {
	return cpuid_low(leaf, subleaf)
}
