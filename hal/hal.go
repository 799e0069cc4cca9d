// Package hal provides the physical-page allocator and MMIO mapper that
// the vCPU control structures (VMCS, MSR bitmap, PLIC window) are backed
// by. It is the Go analogue of HyperCraftHal from the original design:
// an out-of-scope collaborator whose contract the core depends on.
package hal

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// PageSize is the size of one architectural page on both back-ends.
const PageSize = 4096

var errBadSize = errors.New("hal: size must be a positive multiple of PageSize")

// Poison fills freshly allocated pages so that an accidental guest
// instruction fetch into them traps immediately instead of silently
// executing zero bytes. mov eax, 0xcafebabe; nop; ud2.
const Poison = "\xB8\xBE\xBA\xFE\xCA\x90\x0F\x0B"

// Page is one host-physical allocation backing a control structure or an
// MMIO window. HostAddr is the process-virtual address of the mapping;
// on this platform (no real "physical address" is visible to userspace)
// it also serves as the value written into hardware pointer fields, since
// the instructions that consume it (VMPTRLD, hgatp) run in the same
// address space as this process.
type Page struct {
	Bytes    []byte
	HostAddr uintptr
}

// Hal is the physical page allocator and MMIO mapper contract. A real
// bare-metal embedding would back this with a frame allocator and an
// IOMMU/second-stage mapper; this reference implementation backs it with
// anonymous mmap, which is sufficient to drive the tests and the
// cmd/hypercraft demo on a Linux host.
type Hal interface {
	AllocPages(n int) (*Page, error)
	FreePages(p *Page) error
	// MapMMIO reserves and zero-fills a window of n pages meant to be
	// addressed by the guest as a memory-mapped device (e.g. the PLIC).
	MapMMIO(n int) (*Page, error)
}

// DefaultHal is the mmap-backed reference Hal.
type DefaultHal struct{}

func (DefaultHal) AllocPages(n int) (*Page, error) {
	return alloc(n, true)
}

func (DefaultHal) FreePages(p *Page) error {
	if p == nil || p.Bytes == nil {
		return nil
	}

	return unix.Munmap(p.Bytes)
}

func (DefaultHal) MapMMIO(n int) (*Page, error) {
	return alloc(n, false)
}

func alloc(n int, poison bool) (*Page, error) {
	if n <= 0 {
		return nil, fmt.Errorf("hal: AllocPages(%d): %w", n, errBadSize)
	}

	size := n * PageSize

	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("hal: mmap %d bytes: %w", size, err)
	}

	if poison {
		for i := 0; i < len(b); i += len(Poison) {
			copy(b[i:], Poison)
		}
	}

	return &Page{Bytes: b, HostAddr: addrOf(b)}, nil
}
