package sbi_test

import (
	"testing"

	"github.com/MROS/hypercraft/riscv/sbi"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	call := sbi.Decode(sbi.ExtSetTimer, sbi.BaseGetSpecVersion, 0xDEADBEEF, 1, 2, 3, 4, 5)

	want := sbi.Call{
		Extension: sbi.ExtSetTimer,
		Function:  sbi.BaseGetSpecVersion,
		Args:      [6]uint64{0xDEADBEEF, 1, 2, 3, 4, 5},
	}

	if call != want {
		t.Fatalf("Decode: got %+v, want %+v", call, want)
	}
}

func TestErrNotSupportedIsNegativeTwo(t *testing.T) {
	t.Parallel()

	// SBI_ERR_NOT_SUPPORTED is -2, which as a two's-complement uint64 is
	// all-ones except the low bit.
	if sbi.ErrNotSupported != ^uint64(0)-1 {
		t.Fatalf("ErrNotSupported: got %#x, want %#x", sbi.ErrNotSupported, ^uint64(0)-1)
	}
}
