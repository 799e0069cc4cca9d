package vcpu

// Raw VMX instruction wrappers, implemented in vmcs_asm_amd64.s
// following the same declare-in-Go/implement-in-.s split the host CPUID
// wrapper uses.
func vmread(field uint64) (value uint64, ok bool)
func vmwrite(field, value uint64) (ok bool)
func vmptrld(regionHostAddr uint64) (ok bool)
func vmclear(regionHostAddr uint64) (ok bool)
func vmxon(regionHostAddr uint64) (ok bool)
func vmxoff() (ok bool)

// Raw RDMSR/WRMSR, implemented in msr_asm_amd64.s.
func rdmsr(index uint32) uint64
func wrmsr(index uint32, value uint64)

// Live host segment/descriptor/control-register reads consumed by
// setupHostState, implemented in hoststate_asm_amd64.s.
func readSegSelectors() (cs, ss, ds, es, fs, gs, tr uint16)
func readGDTRBase() uint64
func readIDTRBase() uint64
func readCR0() uint64
func readCR3() uint64
func readCR4() uint64

// Raw XCR0/IA32_XSS access, implemented in xstate_asm_amd64.s. XSETBV
// needs CR4.OSXSAVE set first (EnableXSAVE), matching
// XState::enable_xsave in the source this back-end is grounded on.
func xgetbv() uint64
func xsetbv(value uint64)
func rdmsrXSS() uint64
func wrmsrXSS(value uint64)
func enableOSXSAVE()

// vmxLaunch and vmxResume are implemented in entryexit_amd64.s. Each
// saves the host's callee-saved registers and RFLAGS on the host stack,
// records the host RSP at the fixed HostStackTop slot of regs, pivots
// RSP to regs itself, pops the guest register file out of it, and issues
// the architectural entry instruction. They return (entryFailed=true)
// only if the entry instruction itself reports failure; a successful
// entry instead resumes the Go-level caller via vmxExit once a VM-exit
// occurs, with entryFailed=false.
func vmxLaunch(regs *GuestRegisters) (entryFailed bool)
func vmxResume(regs *GuestRegisters) (entryFailed bool)

// vmxExit has no Go-level callers (the hardware jumps to it directly on
// VM-exit); the declaration exists only so the linker has a func signature
// for the symbol whose address vmxExitTrampolineAddr takes.
func vmxExit()

// vmxExitTrampolineAddr returns the address VmcsSetup must program into
// HOST_RIP: the landing pad that saves guest GPRs, recovers host RSP
// from HostStackTop, and restores host state.
func vmxExitTrampolineAddr() uint64
