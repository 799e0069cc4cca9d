package vcpu

const (
	msrIA32FSBase = 0xC0000100
	msrIA32GSBase = 0xC0000101
	msrIA32PAT    = 0x277
	msrIA32EFER   = 0xC0000080
)

// VMX capability MSRs consulted by the set/clear must/can mask
// mechanism. Secondary processor-based controls have no TRUE variant.
const (
	msrIA32VMXPinbasedCtls      = 0x481
	msrIA32VMXProcbasedCtls     = 0x482
	msrIA32VMXExitCtls          = 0x483
	msrIA32VMXEntryCtls         = 0x484
	msrIA32VMXProcbasedCtls2    = 0x48B
	msrIA32VMXTruePinbasedCtls  = 0x48D
	msrIA32VMXTrueProcbasedCtls = 0x48E
	msrIA32VMXTrueExitCtls      = 0x48F
	msrIA32VMXTrueEntryCtls     = 0x490

	// vmxBasicTrueCtlsBit is IA32_VMX_BASIC bit 55: set when the TRUE_*
	// capability MSRs are available and should be preferred over the
	// plain ones.
	vmxBasicTrueCtlsBit = 1 << 55
)

// capabilityMask splits a VMX capability MSR into its must-be-1 bits
// (low 32 bits: a set bit means the control must be 1) and can-be-1 bits
// (high 32 bits: a clear bit means the control must be 0), per the SDM's
// VMX capability reporting format.
func capabilityMask(msr uint32) (mustBe1, canBe1 uint64) {
	cap := rdmsr(msr)

	return cap & 0xFFFFFFFF, cap >> 32
}

// adjustControls applies the set/clear must/can mask mechanism for
// a control field that has a TRUE variant: desired is OR'd with the
// capability MSR's must-be-1 bits and AND'd with its can-be-1 bits,
// consulting the TRUE variant when IA32_VMX_BASIC reports it available
// and falling back to the plain capability MSR otherwise.
func adjustControls(trueMSR, fallbackMSR uint32, desired uint64) uint64 {
	msr := fallbackMSR
	if rdmsr(msrIA32VMXBasic)&vmxBasicTrueCtlsBit != 0 {
		msr = trueMSR
	}

	mustBe1, canBe1 := capabilityMask(msr)

	return (desired | mustBe1) & canBe1
}

// pinBased, primaryProcBased and secondaryProcBased control bits.
const (
	pinNMIExiting               = 1 << 3
	pinExternalInterruptExiting = 1 << 0

	primaryUnconditionalIOExiting = 1 << 24
	primaryUseMSRBitmaps          = 1 << 28
	primaryUseSecondaryControls   = 1 << 31
	primaryCR3LoadExiting         = 1 << 15
	primaryCR3StoreExiting        = 1 << 16
	primaryCR8LoadExiting         = 1 << 19
	primaryCR8StoreExiting        = 1 << 20

	secondaryEnableEPT           = 1 << 1
	secondaryEnableRDTSCP        = 1 << 3
	secondaryUnrestrictedGuest   = 1 << 7
	secondaryEnableInvpcid       = 1 << 12
	secondaryEnableXSAVESXRSTORS = 1 << 20

	exitHostAddressSpaceSize = 1 << 9
	exitAckInterruptOnExit   = 1 << 15
	exitSaveIA32PAT          = 1 << 18
	exitLoadIA32PAT          = 1 << 19
	exitSaveIA32EFER         = 1 << 20
	exitLoadIA32EFER         = 1 << 21

	entryLoadIA32PAT  = 1 << 14
	entryLoadIA32EFER = 1 << 15

	exceptionBitmapUD = 1 << 6 // vector 6 (#UD).

	// EPTP: write-back memory type (bits 2:0 = 6), 4-level walk (bits
	// 5:3 = 3).
	eptpMemTypeWriteBack = 6
	eptpWalkLength4      = 3 << 3
)

// setupVMCS programs the VMCS: pin-based, primary/secondary
// processor-based, exit, and entry controls; the exception bitmap; I/O
// bitmaps; the EPT pointer; host state snapshotted from the live CPU;
// and the guest's real-mode-compatible reset state. v must already be
// Bind()'d.
func (v *VcpuState) setupVMCS() error {
	if err := v.mustBeBound(); err != nil {
		return err
	}

	vmwriteMust(fieldPinBasedExecControl,
		adjustControls(msrIA32VMXTruePinbasedCtls, msrIA32VMXPinbasedCtls,
			pinNMIExiting|pinExternalInterruptExiting))

	vmwriteMust(fieldCPUBasedExecControl,
		adjustControls(msrIA32VMXTrueProcbasedCtls, msrIA32VMXProcbasedCtls,
			primaryUnconditionalIOExiting|primaryUseMSRBitmaps|primaryUseSecondaryControls))

	secondaryMustBe1, secondaryCanBe1 := capabilityMask(msrIA32VMXProcbasedCtls2)
	secondaryDesired := secondaryEnableEPT | secondaryEnableRDTSCP | secondaryEnableInvpcid |
		secondaryUnrestrictedGuest | secondaryEnableXSAVESXRSTORS
	vmwriteMust(fieldSecondaryExecControl, (uint64(secondaryDesired)|secondaryMustBe1)&secondaryCanBe1)

	vmwriteMust(fieldVMExitControls,
		adjustControls(msrIA32VMXTrueExitCtls, msrIA32VMXExitCtls,
			exitHostAddressSpaceSize|exitAckInterruptOnExit|exitSaveIA32PAT|
				exitLoadIA32PAT|exitSaveIA32EFER|exitLoadIA32EFER))

	vmwriteMust(fieldVMEntryControls,
		adjustControls(msrIA32VMXTrueEntryCtls, msrIA32VMXEntryCtls,
			entryLoadIA32PAT|entryLoadIA32EFER))

	vmwriteMust(fieldExceptionBitmap, exceptionBitmapUD)

	vmwriteMust(fieldIOBitmapA, 0)
	vmwriteMust(fieldIOBitmapB, 0)

	vmwriteMust(fieldMSRBitmap, uint64(v.msrBmp.HostAddr))

	vmwriteMust(fieldEPTPointer, (v.stage2Root&^0xFFF)|eptpMemTypeWriteBack|eptpWalkLength4)

	vmwriteMust(fieldVMCSLinkPtr, ^uint64(0)) // no shadow VMCS.

	v.setupHostState()
	v.setupGuestResetState()

	return nil
}

// setupHostState snapshots live host segments, descriptor-table bases,
// FS/GS bases, IA32_PAT/IA32_EFER, CR0/CR3/CR4, and points HOST_RIP at
// the exit trampoline and HOST_RSP one-past the end of the guest
// register file (the base address vmxExit's push sequence expects).
func (v *VcpuState) setupHostState() {
	cs, ss, ds, es, fs, gs, tr := readSegSelectors()

	vmwriteMust(fieldHostCSSelector, uint64(cs)&^7)
	vmwriteMust(fieldHostSSSelector, uint64(ss)&^7)
	vmwriteMust(fieldHostDSSelector, uint64(ds)&^7)
	vmwriteMust(fieldHostESSelector, uint64(es)&^7)
	vmwriteMust(fieldHostFSSelector, uint64(fs)&^7)
	vmwriteMust(fieldHostGSSelector, uint64(gs)&^7)
	vmwriteMust(fieldHostTRSelector, uint64(tr)&^7)

	vmwriteMust(fieldHostGDTRBase, readGDTRBase())
	vmwriteMust(fieldHostIDTRBase, readIDTRBase())

	vmwriteMust(fieldHostFSBase, rdmsr(msrIA32FSBase))
	vmwriteMust(fieldHostGSBase, rdmsr(msrIA32GSBase))

	vmwriteMust(fieldHostIA32PAT, rdmsr(msrIA32PAT))
	vmwriteMust(fieldHostIA32EFER, rdmsr(msrIA32EFER))

	vmwriteMust(fieldHostCR0, readCR0())
	vmwriteMust(fieldHostCR3, readCR3())
	vmwriteMust(fieldHostCR4, readCR4())

	vmwriteMust(fieldHostRIP, vmxExitTrampolineAddr())
	vmwriteMust(fieldHostRSP, uint64(hostRSPBase(v))+regsSize)
}

// setupGuestResetState installs the real-mode-compatible segmentation,
// control registers and the RFLAGS/RIP/RSP/DR7 values for guest
// reset, and clears GuestRegisters.
func (v *VcpuState) setupGuestResetState() {
	setRealModeSegment := func(selField, baseField, limitField, arField uint64, ar uint64) {
		vmwriteMust(selField, 0)
		vmwriteMust(baseField, 0)
		vmwriteMust(limitField, realModeSegmentLimit)
		vmwriteMust(arField, ar)
	}

	setRealModeSegment(fieldGuestCSSelector, fieldGuestCSBase, fieldGuestCSLimit, fieldGuestCSAR, arCodeSegment)
	setRealModeSegment(fieldGuestDSSelector, fieldGuestDSBase, fieldGuestDSLimit, fieldGuestDSAR, arDataSegment)
	setRealModeSegment(fieldGuestESSelector, fieldGuestESBase, fieldGuestESLimit, fieldGuestESAR, arDataSegment)
	setRealModeSegment(fieldGuestFSSelector, fieldGuestFSBase, fieldGuestFSLimit, fieldGuestFSAR, arDataSegment)
	setRealModeSegment(fieldGuestGSSelector, fieldGuestGSBase, fieldGuestGSLimit, fieldGuestGSAR, arDataSegment)
	setRealModeSegment(fieldGuestSSSelector, fieldGuestSSBase, fieldGuestSSLimit, fieldGuestSSAR, arDataSegment)

	vmwriteMust(fieldGuestTRSelector, 0)
	vmwriteMust(fieldGuestTRBase, 0)
	vmwriteMust(fieldGuestTRLimit, realModeSegmentLimit)
	vmwriteMust(fieldGuestTRAR, arTRSegment)

	vmwriteMust(fieldGuestLDTRSelector, 0)
	vmwriteMust(fieldGuestLDTRBase, 0)
	vmwriteMust(fieldGuestLDTRLimit, realModeSegmentLimit)
	vmwriteMust(fieldGuestLDTRAR, arLDTSegment)

	vmwriteMust(fieldGuestGDTRBase, 0)
	vmwriteMust(fieldGuestGDTRLimit, realModeSegmentLimit)
	vmwriteMust(fieldGuestIDTRBase, 0)
	vmwriteMust(fieldGuestIDTRLimit, realModeSegmentLimit)

	vmwriteMust(fieldGuestCR0, CR0xET|CR0xNE)
	vmwriteMust(fieldGuestCR3, 0)
	vmwriteMust(fieldGuestCR4, CR4xVMXE)
	vmwriteMust(fieldGuestIA32EFER, 0)

	// The entry controls load guest PAT on every entry, so the field
	// must hold a real value; seed it from the host's live PAT.
	vmwriteMust(fieldGuestIA32PAT, rdmsr(msrIA32PAT))

	vmwriteMust(fieldGuestRFLAGS, initialRFLAGS)
	vmwriteMust(fieldGuestRIP, v.entryGPA)
	vmwriteMust(fieldGuestRSP, 0)
	vmwriteMust(fieldGuestDR7, initialDR7)

	vmwriteMust(fieldGuestActivityState, 0)
	vmwriteMust(fieldGuestInterruptibility, 0)
	vmwriteMust(fieldGuestSysenterCS, 0)

	v.regs = GuestRegisters{}
}
