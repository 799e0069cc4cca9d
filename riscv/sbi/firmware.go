package sbi

// Firmware forwards SBI calls this core does not service itself to the
// real firmware underneath. The zero value is ready to use.
type Firmware struct{}

// Base forwards a Base-extension function (spec version, impl ID, impl
// version, probe-extension, mvendorid, marchid, mimpid) and returns its
// (error, value) pair verbatim.
func (Firmware) Base(function uint64, arg0 uint64) Result {
	a0, a1 := sbiCall(ExtBase, function, arg0, 0, 0, 0, 0, 0)

	return Result{Error: a0, Value: a1}
}

// ConsolePutChar forwards one byte to the firmware's legacy console
// output.
func (Firmware) ConsolePutChar(c byte) {
	sbiCall(ExtConsolePutChar, 0, uint64(c), 0, 0, 0, 0, 0)
}

// Reset invokes the firmware's system-reset extension with "system
// failure" as the reset reason.
func (Firmware) Reset() {
	const (
		shutdownType  = 0
		systemFailure = 1
	)

	sbiCall(ExtReset, 0, shutdownType, systemFailure, 0, 0, 0, 0)
}

// RemoteFence forwards FenceI or RemoteSFenceVMA to the firmware,
// propagating the hart mask / address range arguments and returning the
// (error, value) pair verbatim.
func (Firmware) RemoteFence(function, hartMask, hartMaskBase, start, size uint64) Result {
	a0, a1 := sbiCall(ExtRemoteFence, function, hartMask, hartMaskBase, start, size, 0, 0)

	return Result{Error: a0, Value: a1}
}

// PMU forwards a PMU-extension function (num_counters, counter_info,
// stop) and returns the (error, value) pair verbatim.
func (Firmware) PMU(function, counterIndex, counterMask, stopFlags uint64) Result {
	a0, a1 := sbiCall(ExtPMU, function, counterIndex, counterMask, stopFlags, 0, 0, 0)

	return Result{Error: a0, Value: a1}
}
