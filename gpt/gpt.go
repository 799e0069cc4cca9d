// Package gpt models the second-stage (guest-physical to host-physical)
// page table as a small address-space contract: the core only ever needs
// the stage-2 root descriptor ("Token") to program into EPTP/hgatp, plus
// enough region bookkeeping to answer "does this guest-physical address
// belong to a mapped region" for things like the PLIC MMIO window check.
package gpt

import "errors"

var errOverlap = errors.New("gpt: region overlaps an existing mapping")

// Region is one guest-physical range backed by either RAM or an MMIO
// window.
type Region struct {
	Name  string
	Base  uint64
	Size  uint64
	MMIO  bool
}

func (r Region) contains(addr uint64) bool {
	return addr >= r.Base && addr < r.Base+r.Size
}

func (r Region) overlaps(o Region) bool {
	return r.Base < o.Base+o.Size && o.Base < r.Base+r.Size
}

// Table is a reference GuestPageTable: the stage-2 root plus the region
// table used to classify faulting addresses. Token is an opaque, 4
// KiB-aligned value suitable for EPTP (x86, write-back + 4-level walk
// flags folded in by the caller) or hgatp (RISC-V, mode bits folded in by
// the caller).
type Table struct {
	token   uint64
	regions []Region
}

// New builds a Table whose stage-2 root is root (already a canonical,
// page-aligned host-physical or allocator-assigned address).
func New(root uint64) *Table {
	return &Table{token: root}
}

// Token returns the stage-2 root descriptor installed in EPTP/hgatp.
func (t *Table) Token() uint64 {
	return t.token
}

// AddRegion registers a guest-physical range as RAM or MMIO. Overlapping
// regions are rejected; the core relies on regions being disjoint when
// classifying a faulting address.
func (t *Table) AddRegion(r Region) error {
	for _, existing := range t.regions {
		if existing.overlaps(r) {
			return errOverlap
		}
	}

	t.regions = append(t.regions, r)

	return nil
}

// Lookup returns the region containing addr, if any.
func (t *Table) Lookup(addr uint64) (Region, bool) {
	for _, r := range t.regions {
		if r.contains(addr) {
			return r, true
		}
	}

	return Region{}, false
}

// InMMIORange reports whether addr falls within a registered MMIO
// region, without identifying which one.
func (t *Table) InMMIORange(addr uint64) bool {
	r, ok := t.Lookup(addr)

	return ok && r.MMIO
}
