package vcpu

// EnableXSAVE sets CR4.OSXSAVE so that XSETBV/XGETBV are usable at
// all. Called once, before the first VcpuState is constructed.
func EnableXSAVE() {
	enableOSXSAVE()
}

// captureHostXState snapshots the host's current XCR0/IA32_XSS so the
// first guest entry runs under host-identical extended state.
func captureHostXState() ExtendedState {
	return ExtendedState{
		HostXCR0:  xgetbv(),
		GuestXCR0: xgetbv(),
		HostXSS:   rdmsrXSS(),
		GuestXSS:  rdmsrXSS(),
	}
}

// loadGuestXState is run immediately before entering the guest.
func (v *VcpuState) loadGuestXState() {
	xsetbv(v.xstate.GuestXCR0)
	wrmsrXSS(v.xstate.GuestXSS)
}

// loadHostXState is run immediately after a VM-exit, before any other
// host-side processing.
func (v *VcpuState) loadHostXState() {
	xsetbv(v.xstate.HostXCR0)
	wrmsrXSS(v.xstate.HostXSS)
}
