package vcpu

// SetupVMCS performs the initial VMCS programming. Must be called
// once, after Bind, before the first Enter.
func (v *VcpuState) SetupVMCS() error {
	return v.setupVMCS()
}

// Enter issues VMLAUNCH on the vCPU's first entry and VMRESUME on every
// subsequent one. Pending events are injected (subject to the
// interrupt-window gate) and extended state is switched around the
// entry. Returns an error if the vCPU is not bound or the pending-event
// injection fails; a VM-entry the hardware refuses aborts through
// fatal instead. A normal VM-exit returns nil and the caller inspects
// ExitReason/Dispatch.
func (v *VcpuState) Enter() error {
	if err := v.mustBeBound(); err != nil {
		return err
	}

	if err := v.injectPendingEvents(); err != nil {
		return err
	}

	v.loadGuestXState()

	err := v.enter()

	v.loadHostXState()

	if err != nil {
		v.fatal(0, err.Error())
	}

	return nil
}

// Launched reports whether this vCPU has completed at least one
// successful entry.
func (v *VcpuState) Launched() bool {
	return v.launched
}
