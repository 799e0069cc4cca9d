package vcpu

const msrIA32VMXBasic = 0x480

// vmxBasicRevisionID reads the VMCS revision identifier out of
// IA32_VMX_BASIC (bits 30:0), which must be stamped into byte 0 of a
// freshly allocated VMCS region before it can be VMPTRLD'd.
func vmxBasicRevisionID() uint32 {
	return uint32(rdmsr(msrIA32VMXBasic)) &^ (1 << 31)
}
