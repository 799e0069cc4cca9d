package vcpu

import "testing"

// TestCPUIDVendorLeaf: leaf 0x40000000 must report
// EAX=0x40000001 and spell "RVMRVMRVMRVM" across EBX/ECX/EDX.
func TestCPUIDVendorLeaf(t *testing.T) {
	t.Parallel()

	a, b, c, d := handleCPUID(0x40000000, 0)

	if a != 0x40000001 {
		t.Fatalf("EAX: got %#x, want %#x", a, 0x40000001)
	}

	got := string([]byte{
		byte(b), byte(b >> 8), byte(b >> 16), byte(b >> 24),
		byte(c), byte(c >> 8), byte(c >> 16), byte(c >> 24),
		byte(d), byte(d >> 8), byte(d >> 16), byte(d >> 24),
	})

	if got != hypervisorVendorString {
		t.Fatalf("vendor string: got %q, want %q", got, hypervisorVendorString)
	}
}

func TestCPUIDFeatureLeaf(t *testing.T) {
	t.Parallel()

	_, _, c, _ := handleCPUID(0x40000001, 0)

	if c != 0 {
		t.Fatalf("leaf 0x40000001 ECX: got %#x, want 0", c)
	}
}

// TestCPUIDMask: after emulating leaf
// 0x1, guest ECX bit 5 (VMX) is clear and bit 31 (hypervisor-present) is
// set, regardless of whatever the host actually reports.
func TestCPUIDMask(t *testing.T) {
	t.Parallel()

	_, _, c, _ := handleCPUID(0x1, 0)

	if c&(1<<5) != 0 {
		t.Fatalf("ECX bit 5 (VMX): got set, want clear")
	}

	if c&(1<<31) == 0 {
		t.Fatalf("ECX bit 31 (hypervisor present): got clear, want set")
	}
}

func TestCPUIDLeaf7ClearsWaitpkg(t *testing.T) {
	t.Parallel()

	_, _, c, _ := handleCPUID(0x7, 0)

	if c&(1<<5) != 0 {
		t.Fatalf("leaf 7 sub-leaf 0 ECX bit 5 (WAITPKG): got set, want clear")
	}
}
