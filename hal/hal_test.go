package hal_test

import (
	"bytes"
	"testing"

	"github.com/MROS/hypercraft/hal"
)

func TestAllocPagesPoisonsMemory(t *testing.T) {
	t.Parallel()

	h := hal.DefaultHal{}

	p, err := h.AllocPages(1)
	if err != nil {
		t.Fatalf("AllocPages: %v", err)
	}
	defer h.FreePages(p)

	if len(p.Bytes) != hal.PageSize {
		t.Fatalf("len(Bytes): got %d, want %d", len(p.Bytes), hal.PageSize)
	}

	if !bytes.HasPrefix(p.Bytes, []byte(hal.Poison)) {
		t.Fatalf("AllocPages did not poison the first bytes")
	}
}

func TestMapMMIOIsZeroFilled(t *testing.T) {
	t.Parallel()

	h := hal.DefaultHal{}

	p, err := h.MapMMIO(2)
	if err != nil {
		t.Fatalf("MapMMIO: %v", err)
	}
	defer h.FreePages(p)

	if len(p.Bytes) != 2*hal.PageSize {
		t.Fatalf("len(Bytes): got %d, want %d", len(p.Bytes), 2*hal.PageSize)
	}

	for i, b := range p.Bytes {
		if b != 0 {
			t.Fatalf("MapMMIO byte %d not zero: %#x", i, b)
		}
	}
}

func TestAllocPagesRejectsNonPositiveSize(t *testing.T) {
	t.Parallel()

	h := hal.DefaultHal{}

	if _, err := h.AllocPages(0); err == nil {
		t.Fatalf("AllocPages(0): expected error")
	}
}
