package vcpu

// Run enters the guest: it issues the sret-equivalent transfer into
// VS-mode (HS-mode hstatus.SPV must already be set by Setup so sret
// lands in VS-mode rather than S-mode), and returns once the trap vector
// on return (vcpuTrapEntry, installed as HS-mode's stvec for the
// duration of the call) has saved guest CSRs and GPRs.
//
// The trampoline pivots sscratch to point at this vCPU's GuestRegisters
// (the first field of VcpuState, same pinning rule as the x86 back-end)
// so the trap entry can spill guest GPRs without clobbering a register
// it still needs.
func (v *VcpuState) Run() {
	v.launched = true

	runTrampoline(&v.regs, &v.lastScause, &v.lastStval, &v.lastHtval, &v.lastHtinst)
}
