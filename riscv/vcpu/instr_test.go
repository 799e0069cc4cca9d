package vcpu_test

import (
	"testing"

	"github.com/MROS/hypercraft/riscv/vcpu"
)

func TestDecodePlicAccessRV32Sw(t *testing.T) {
	t.Parallel()

	// sw x5, 0(x6): opcode 0x23, funct3 0x2, rs2=x5(5), rs1=x6(6), imm=0.
	inst := uint32(0x23) | uint32(0x2)<<12 | uint32(6)<<15 | uint32(5)<<20

	got, err := vcpu.DecodePlicAccess(inst)
	if err != nil {
		t.Fatalf("DecodePlicAccess: %v", err)
	}

	want := vcpu.DecodedMemAccess{IsStore: true, Rs2: 5, Len: 4}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDecodePlicAccessRV32Lw(t *testing.T) {
	t.Parallel()

	// lw x7, 0(x6): opcode 0x03, funct3 0x2, rd=x7(7), rs1=x6(6).
	inst := uint32(0x03) | uint32(0x2)<<12 | uint32(7)<<7 | uint32(6)<<15

	got, err := vcpu.DecodePlicAccess(inst)
	if err != nil {
		t.Fatalf("DecodePlicAccess: %v", err)
	}

	want := vcpu.DecodedMemAccess{IsStore: false, Rd: 7, Len: 4}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDecodePlicAccessRVCSw(t *testing.T) {
	t.Parallel()

	// c.sw x8(rs1'=0), x10(rs2'=2): quadrant 0, funct3 0x6, rs2c=2 -> x10.
	inst := uint16(0x0) | uint16(0x6)<<13 | uint16(2)<<2

	got, err := vcpu.DecodePlicAccess(uint32(inst))
	if err != nil {
		t.Fatalf("DecodePlicAccess: %v", err)
	}

	want := vcpu.DecodedMemAccess{IsStore: true, Rs2: 10, Len: 2}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDecodePlicAccessRVCLw(t *testing.T) {
	t.Parallel()

	// c.lw x9(rd'=1), ...: quadrant 0, funct3 0x2, rdc=1 -> x9.
	inst := uint16(0x0) | uint16(0x2)<<13 | uint16(1)<<2

	got, err := vcpu.DecodePlicAccess(uint32(inst))
	if err != nil {
		t.Fatalf("DecodePlicAccess: %v", err)
	}

	want := vcpu.DecodedMemAccess{IsStore: false, Rd: 9, Len: 2}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

// TestDecodePlicAccessRejectsOtherInstructions covers the rule that any
// instruction other than Sw/Lw in the window is rejected.
func TestDecodePlicAccessRejectsOtherInstructions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		inst uint32
	}{
		{"rv32 add", 0x33},                       // opcode 0110011 (ADD), not Sw/Lw.
		{"rv32 sw wrong funct3", 0x23 | 0x1<<12}, // SH, not SW.
		{"rvc quadrant1", 0x1},                   // quadrant != 0.
		{"rvc wrong funct3", uint32(0x0) | uint32(0x4)<<13},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if _, err := vcpu.DecodePlicAccess(c.inst); err == nil {
				t.Fatalf("expected ErrInvalidInstruction for %#x", c.inst)
			}
		})
	}
}
