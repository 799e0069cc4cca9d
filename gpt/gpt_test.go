package gpt_test

import (
	"testing"

	"github.com/MROS/hypercraft/gpt"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	table := gpt.New(0x1234_0000)

	if got := table.Token(); got != 0x1234_0000 {
		t.Fatalf("Token: got %#x, want %#x", got, 0x1234_0000)
	}
}

func TestAddRegionRejectsOverlap(t *testing.T) {
	t.Parallel()

	table := gpt.New(0)

	if err := table.AddRegion(gpt.Region{Name: "ram", Base: 0x1000, Size: 0x1000}); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}

	err := table.AddRegion(gpt.Region{Name: "overlap", Base: 0x1800, Size: 0x100})
	if err == nil {
		t.Fatalf("expected overlap error, got nil")
	}
}

func TestLookupAndInMMIORange(t *testing.T) {
	t.Parallel()

	table := gpt.New(0)

	plic := gpt.Region{Name: "plic", Base: 0x0C00_0000, Size: 64 << 20, MMIO: true}
	if err := table.AddRegion(plic); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}

	ram := gpt.Region{Name: "ram", Base: 0x8000_0000, Size: 0x100_0000}
	if err := table.AddRegion(ram); err != nil {
		t.Fatalf("AddRegion: %v", err)
	}

	if !table.InMMIORange(plic.Base + 4) {
		t.Fatalf("InMMIORange(plic addr): want true")
	}

	if table.InMMIORange(ram.Base + 4) {
		t.Fatalf("InMMIORange(ram addr): want false")
	}

	if _, ok := table.Lookup(0xFFFF_FFFF_FFFF); ok {
		t.Fatalf("Lookup(unmapped): want not-found")
	}
}
