package vcpu

import "testing"

// TestValidXCR0 walks the XCR0 legality table, including the
// AVX-without-SSE rejection.
func TestValidXCR0(t *testing.T) {
	t.Parallel()

	const (
		bitFPU    = 1 << 0
		bitSSE    = 1 << 1
		bitAVX    = 1 << 2
		bitBNDREG = 1 << 3
		bitBNDCSR = 1 << 4
		bitOPMASK = 1 << 5
		bitZMM    = 1 << 6
		bitHi16   = 1 << 7
	)

	cases := []struct {
		name  string
		xcr0  uint64
		valid bool
	}{
		{"FPU alone", bitFPU, true},
		{"FPU missing", bitSSE, false},
		{"FPU+SSE", bitFPU | bitSSE, true},
		{"AVX without SSE", bitFPU | bitAVX, false},
		{"AVX with SSE", bitFPU | bitSSE | bitAVX, true},
		{"BNDREG without BNDCSR", bitFPU | bitSSE | bitBNDREG, false},
		{"BNDCSR without BNDREG", bitFPU | bitSSE | bitBNDCSR, false},
		{"BNDREG and BNDCSR together", bitFPU | bitSSE | bitBNDREG | bitBNDCSR, true},
		{
			"AVX512 subset without full set",
			bitFPU | bitSSE | bitAVX | bitOPMASK, false,
		},
		{
			"AVX512 complete",
			bitFPU | bitSSE | bitAVX | bitOPMASK | bitZMM | bitHi16, true,
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := validXCR0(c.xcr0); got != c.valid {
				t.Fatalf("validXCR0(%#b): got %v, want %v", c.xcr0, got, c.valid)
			}
		})
	}
}

// TestHandleXSETBVRejectsInvalidValue drives the AVX-without-SSE
// rejection end to end through handleXSETBV itself (not just the validXCR0 predicate): an
// invalid XCR0 must report ErrInvalidParam and must not mutate
// guest_xcr0. The invalid path never touches the VMCS, so this runs
// without a bound vCPU.
func TestHandleXSETBVRejectsInvalidValue(t *testing.T) {
	t.Parallel()

	v := &VcpuState{}
	v.xstate.GuestXCR0 = 0x1 // FPU only, the pre-existing value.

	// XCR0 = 0b101: FPU + AVX, no SSE.
	v.regs.RCX = 0
	v.regs.RAX = 0b101
	v.regs.RDX = 0

	err := v.handleXSETBV()
	if err != ErrInvalidParam {
		t.Fatalf("handleXSETBV: got %v, want ErrInvalidParam", err)
	}

	if v.xstate.GuestXCR0 != 0x1 {
		t.Fatalf("guest_xcr0 mutated: got %#x, want unchanged 0x1", v.xstate.GuestXCR0)
	}
}

func TestHandleXSETBVRejectsNonZeroIndex(t *testing.T) {
	t.Parallel()

	v := &VcpuState{}
	v.regs.RCX = 1 // only XCR0 (index 0) is supported.
	v.regs.RAX = 0x1
	v.regs.RDX = 0

	if err := v.handleXSETBV(); err != ErrInvalidParam {
		t.Fatalf("handleXSETBV: got %v, want ErrInvalidParam", err)
	}
}
