//go:build !amd64

package vcpu

// Non-amd64 builds get panicking stand-ins for the VMX instruction
// layer so that the package (and anything importing it, like
// cmd/hypercraft) still compiles; only the pure-logic paths (the
// hypervisor CPUID leaves 0x40000000/0x40000001, XSETBV validation,
// event queueing) are usable off-arch. Passed-through CPUID leaves run
// the host CPUID instruction and panic off-arch.

const errNotAmd64 = "vcpu: vmx back-end requires amd64"

func vmread(field uint64) (value uint64, ok bool) { panic(errNotAmd64) }
func vmwrite(field, value uint64) (ok bool) { panic(errNotAmd64) }
func vmptrld(regionHostAddr uint64) (ok bool) { panic(errNotAmd64) }
func vmclear(regionHostAddr uint64) (ok bool) { panic(errNotAmd64) }
func vmxon(regionHostAddr uint64) (ok bool) { panic(errNotAmd64) }
func vmxoff() (ok bool) { panic(errNotAmd64) }

func rdmsr(index uint32) uint64 { panic(errNotAmd64) }
func wrmsr(index uint32, value uint64) { panic(errNotAmd64) }

func readSegSelectors() (cs, ss, ds, es, fs, gs, tr uint16) { panic(errNotAmd64) }
func readGDTRBase() uint64 { panic(errNotAmd64) }
func readIDTRBase() uint64 { panic(errNotAmd64) }
func readCR0() uint64 { panic(errNotAmd64) }
func readCR3() uint64 { panic(errNotAmd64) }
func readCR4() uint64 { panic(errNotAmd64) }

func xgetbv() uint64 { panic(errNotAmd64) }
func xsetbv(value uint64) { panic(errNotAmd64) }
func rdmsrXSS() uint64 { panic(errNotAmd64) }
func wrmsrXSS(value uint64) { panic(errNotAmd64) }
func enableOSXSAVE() { panic(errNotAmd64) }

func vmxLaunch(regs *GuestRegisters) (entryFailed bool) { panic(errNotAmd64) }
func vmxResume(regs *GuestRegisters) (entryFailed bool) { panic(errNotAmd64) }

func vmxExitTrampolineAddr() uint64 { panic(errNotAmd64) }
