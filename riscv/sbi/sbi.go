// Package sbi decodes a guest's ecall into the Supervisor Binary
// Interface extension/function it requested and
// forwards the calls this hypervisor does not service itself to the
// real firmware underneath.
package sbi

// Extension IDs this core recognizes.
const (
	ExtBase           = 0x10
	ExtConsolePutChar = 0x01 // legacy extension.
	ExtConsoleGetChar = 0x02 // legacy extension.
	ExtSetTimer       = 0x00 // legacy extension.
	ExtReset          = 0x53525354 // "SRST".
	ExtRemoteFence    = 0x52464E43 // "RFNC".
	ExtPMU            = 0x504D55   // "PMU".
)

// Base extension function IDs.
const (
	BaseGetSpecVersion = iota
	BaseGetImplID
	BaseGetImplVersion
	BaseProbeExtension
	BaseGetMVendorID
	BaseGetMArchID
	BaseGetMImpID
)

// RemoteFence extension function IDs.
const (
	RfncFenceI = iota
	RfncSFenceVMA
)

// PMU extension function IDs.
const (
	PmuNumCounters = iota
	PmuCounterGetInfo
	_ // PmuCounterConfigMatching, not serviced by this core.
	_ // PmuCounterStart, not serviced by this core.
	PmuCounterStop
)

// Call is a decoded guest ecall: the extension/function pair plus the
// six argument registers a0..a5 the SBI calling convention defines.
type Call struct {
	Extension uint64
	Function  uint64
	Args      [6]uint64
}

// Decode reads a7 (extension), a6 (function), and a0..a5 (arguments)
// out of the guest's register file at the point of an Ecall exit.
func Decode(a7, a6, a0, a1, a2, a3, a4, a5 uint64) Call {
	return Call{
		Extension: a7,
		Function:  a6,
		Args:      [6]uint64{a0, a1, a2, a3, a4, a5},
	}
}

// ErrNotSupported is SBI_ERR_NOT_SUPPORTED (-2), returned in a0 for an
// extension this core neither services nor forwards.
const ErrNotSupported = uint64(0xFFFFFFFFFFFFFFFE)

// Result is the (error, value) pair every non-legacy SBI call returns,
// written verbatim into a0/a1 without translation.
type Result struct {
	Error uint64
	Value uint64
}
