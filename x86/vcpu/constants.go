package vcpu

// Control-register and extended-feature-register bit constants used by
// VmcsSetup to program the guest's initial CR0/CR4/EFER and by the
// guest's own page tables (PDE64x*), if the embedder builds one with
// these flags.
const (
	// CR0 bits.
	CR0xPE = 1
	CR0xMP = 1 << 1
	CR0xEM = 1 << 2
	CR0xTS = 1 << 3
	CR0xET = 1 << 4
	CR0xNE = 1 << 5
	CR0xWP = 1 << 16
	CR0xAM = 1 << 18
	CR0xNW = 1 << 29
	CR0xCD = 1 << 30
	CR0xPG = 1 << 31

	// CR4 bits.
	CR4xVME        = 1
	CR4xPVI        = 1 << 1
	CR4xTSD        = 1 << 2
	CR4xDE         = 1 << 3
	CR4xPSE        = 1 << 4
	CR4xPAE        = 1 << 5
	CR4xMCE        = 1 << 6
	CR4xPGE        = 1 << 7
	CR4xPCE        = 1 << 8
	CR4xOSFXSR     = 1 << 9
	CR4xOSXMMEXCPT = 1 << 10
	CR4xUMIP       = 1 << 11
	CR4xVMXE       = 1 << 13
	CR4xSMXE       = 1 << 14
	CR4xFSGSBASE   = 1 << 16
	CR4xPCIDE      = 1 << 17
	CR4xOSXSAVE    = 1 << 18
	CR4xSMEP       = 1 << 20
	CR4xSMAP       = 1 << 21

	EFERxSCE = 1
	EFERxLME = 1 << 8
	EFERxLMA = 1 << 10
	EFERxNXE = 1 << 11

	// 64-bit page table entry bits, exposed for embedders building a
	// stage-2/guest page table.
	PDE64xPRESENT  = 1
	PDE64xRW       = 1 << 1
	PDE64xUSER     = 1 << 2
	PDE64xACCESSED = 1 << 5
	PDE64xDIRTY    = 1 << 6
	PDE64xPS       = 1 << 7
	PDE64xG        = 1 << 8
)

// Segment access-rights bytes for the real-mode-compatible segments
// VmcsSetup installs at guest reset.
const (
	arDataSegment = 0x93
	arCodeSegment = 0x9B
	arTRSegment   = 0x8B
	arLDTSegment  = 0x82

	realModeSegmentLimit = 0xFFFF
)

// Initial guest architectural state.
const (
	initialRFLAGS = 0x2
	initialDR7    = 0x400
)
