//go:build !amd64

package cpuid

func cpuid_low(arg1, arg2 uint32) (eax, ebx, ecx, edx uint32) {
	panic("cpuid: CPUID requires amd64")
}
