// Package plic models the register file of the Platform-Level Interrupt
// Controller the RISC-V back-end exposes to the guest over a fixed MMIO
// window.
// Register offsets follow the standard SiFive-derived PLIC layout, the
// same one gokvm's pack-mate reference model (rv64.PLIC) uses.
package plic

import "sync"

// Base is the fixed guest-physical base address of the PLIC MMIO
// window.
const Base = 0x0C00_0000

// WindowSize is the span of the PLIC MMIO window.
const WindowSize = 64 << 20 // 64 MiB

// MaxSources is the number of interrupt source IDs this model supports
// (source 0 is reserved/unused, as the architecture requires).
const MaxSources = 1024

// MaxContexts bounds the number of per-context (hart x privilege-mode)
// register banks this model tracks.
const MaxContexts = 2

// Register offsets within the window, relative to Base.
const (
	priorityBase  = 0x000000
	pendingBase   = 0x001000
	enableBase    = 0x002000
	thresholdBase = 0x200000
	contextStride = 0x1000
	enableStride  = 0x80
)

// State is the PLIC register-file model: priority, pending, enable,
// threshold, and claim/complete per context.
type State struct {
	mu sync.Mutex

	priority  [MaxSources]uint32
	pending   [MaxSources / 32]uint32
	enable    [MaxContexts][MaxSources / 32]uint32
	threshold [MaxContexts]uint32

	// ClaimComplete holds the source most recently claimed per context;
	// a completion write of that same source resets it to 0.
	ClaimComplete [MaxContexts]uint32
}

// New constructs an empty PLIC register file.
func New() *State {
	return &State{}
}

// ReadU32 reads the 32-bit register at guest-physical addr, which must
// fall within [Base, Base+WindowSize). Unmapped sub-ranges read as zero,
// matching a real PLIC's reserved-register behavior.
func (s *State) ReadU32(addr uint64) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset := addr - Base

	switch {
	case offset < pendingBase:
		source := offset / 4
		if source < MaxSources {
			return s.priority[source]
		}

	case offset >= pendingBase && offset < enableBase:
		word := (offset - pendingBase) / 4
		if word < uint64(len(s.pending)) {
			return s.pending[word]
		}

	case offset >= enableBase && offset < thresholdBase:
		rel := offset - enableBase
		ctx := rel / enableStride
		word := (rel % enableStride) / 4

		if ctx < MaxContexts && word < uint64(len(s.enable[0])) {
			return s.enable[ctx][word]
		}

	case offset >= thresholdBase:
		rel := offset - thresholdBase
		ctx := rel / contextStride
		reg := rel % contextStride

		if ctx < MaxContexts {
			switch reg {
			case 0:
				return s.threshold[ctx]
			case 4:
				return s.claimLocked(int(ctx))
			}
		}
	}

	return 0
}

// WriteU32 writes the 32-bit register at guest-physical addr.
// Out-of-range and reserved sub-ranges are silently ignored, matching a
// real PLIC's write-ignored behavior for reserved registers.
func (s *State) WriteU32(addr uint64, value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset := addr - Base

	switch {
	case offset < pendingBase:
		source := offset / 4
		if source > 0 && source < MaxSources {
			s.priority[source] = value & 0x7
		}

	case offset >= enableBase && offset < thresholdBase:
		rel := offset - enableBase
		ctx := rel / enableStride
		word := (rel % enableStride) / 4

		if ctx < MaxContexts && word < uint64(len(s.enable[0])) {
			s.enable[ctx][word] = value
		}

	case offset >= thresholdBase:
		rel := offset - thresholdBase
		ctx := rel / contextStride
		reg := rel % contextStride

		if ctx < MaxContexts {
			switch reg {
			case 0:
				s.threshold[ctx] = value & 0x7
			case 4:
				s.completeLocked(int(ctx), value)
			}
		}
	}
}

// SetPending marks source as pending (or not), so that a later claim
// can return it.
func (s *State) SetPending(source uint32, pending bool) {
	if source == 0 || source >= MaxSources {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	word, bit := source/32, source%32

	if pending {
		s.pending[word] |= 1 << bit
	} else {
		s.pending[word] &^= 1 << bit
	}
}

// claimLocked returns the highest-priority pending, enabled,
// above-threshold source for ctx and clears its pending bit, the
// standard PLIC claim semantics.
func (s *State) claimLocked(ctx int) uint32 {
	if ctx >= MaxContexts {
		return 0
	}

	var bestSource, bestPriority uint32

	for source := uint32(1); source < MaxSources; source++ {
		word, bit := source/32, source%32

		if s.pending[word]&(1<<bit) == 0 || s.enable[ctx][word]&(1<<bit) == 0 {
			continue
		}

		if p := s.priority[source]; p > s.threshold[ctx] && p > bestPriority {
			bestPriority, bestSource = p, source
		}
	}

	if bestSource != 0 {
		word, bit := bestSource/32, bestSource%32
		s.pending[word] &^= 1 << bit
		s.ClaimComplete[ctx] = bestSource
	}

	return bestSource
}

// completeLocked signals completion of interrupt handling for ctx.
func (s *State) completeLocked(ctx int, source uint32) {
	if ctx >= MaxContexts || source == 0 || source >= MaxSources {
		return
	}

	if s.ClaimComplete[ctx] == source {
		s.ClaimComplete[ctx] = 0
	}
}

// Claim returns the highest-priority pending source for ctx, clearing
// its pending bit and recording it in ClaimComplete, the same
// mechanism a guest's own claim-register read triggers. The external-
// interrupt-emulation handler uses this to pull an IRQ out of this
// model (the reference Hal exposes no separate physical PLIC to read)
// before reflecting it into the guest's claim register.
func (s *State) Claim(ctx int) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.claimLocked(ctx)
}

// SetClaimComplete stores irq directly into context ctx's claim
// register, without touching the pending bits.
func (s *State) SetClaimComplete(ctx int, irq uint32) {
	if ctx >= MaxContexts {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ClaimComplete[ctx] = irq
}
