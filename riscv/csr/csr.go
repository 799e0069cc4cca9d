// Package csr wraps the RISC-V H-extension and supervisor control and
// status registers the hypervisor core needs to program a VS-mode
// guest: the HS-mode hypervisor CSRs (hstatus, hedeleg/hideleg, hie,
// htimedelta, hcounteren, hvip, htval, htinst, hgatp) and the
// VS-prefixed virtual-supervisor CSRs the guest's kernel perceives as
// its own sstatus/sie/stvec/etc.
package csr

// VirtualSupervisorState is the guest-visible supervisor CSR set,
// accessed on real hardware through its VS-prefixed H-extension
// aliases (vsstatus, vsie, ...) so that writes take effect in VS-mode
// without trapping.
type VirtualSupervisorState struct {
	Sstatus    uint64
	Sie        uint64
	Stvec      uint64
	Scounteren uint64
	Sscratch   uint64
	Sepc       uint64
	Scause     uint64
	Stval      uint64
	Sip        uint64
	Satp       uint64
}

// HypervisorState is the HS-mode hypervisor CSR subset that governs
// how a VS-mode guest traps back to HS-mode.
type HypervisorState struct {
	Hstatus    uint64
	Hedeleg    uint64
	Hideleg    uint64
	Hie        uint64
	Htimedelta uint64
	Hcounteren uint64
	Hvip       uint64
	Hgatp      uint64
}

// Save reads the live VS-prefixed CSRs into s.
func (s *VirtualSupervisorState) Save() {
	s.Sstatus = readVsstatus()
	s.Sie = readVsie()
	s.Stvec = readVstvec()
	s.Scounteren = 0 // vscounteren does not exist; guest inherits hcounteren.
	s.Sscratch = readVsscratch()
	s.Sepc = readVsepc()
	s.Scause = readVscause()
	s.Stval = readVstval()
	s.Sip = readVsip()
	s.Satp = readVsatp()
}

// Restore writes s into the live VS-prefixed CSRs.
func (s *VirtualSupervisorState) Restore() {
	writeVsstatus(s.Sstatus)
	writeVsie(s.Sie)
	writeVstvec(s.Stvec)
	writeVsscratch(s.Sscratch)
	writeVsepc(s.Sepc)
	writeVscause(s.Scause)
	writeVstval(s.Stval)
	writeVsip(s.Sip)
	writeVsatp(s.Satp)
}

// Save reads the live HS-mode hypervisor CSRs into s.
func (s *HypervisorState) Save() {
	s.Hstatus = readHstatus()
	s.Hedeleg = readHedeleg()
	s.Hideleg = readHideleg()
	s.Hie = readHie()
	s.Htimedelta = readHtimedelta()
	s.Hcounteren = readHcounteren()
	s.Hvip = readHvip()
	s.Hgatp = readHgatp()
}

// Restore writes s into the live HS-mode hypervisor CSRs.
func (s *HypervisorState) Restore() {
	writeHstatus(s.Hstatus)
	writeHedeleg(s.Hedeleg)
	writeHideleg(s.Hideleg)
	writeHie(s.Hie)
	writeHtimedelta(s.Htimedelta)
	writeHcounteren(s.Hcounteren)
	writeHvip(s.Hvip)
	writeHgatp(s.Hgatp)
}

// FaultInfo reads the HS-mode trap-cause registers populated by the
// last VS-mode trap into HS-mode (htval: guest virtual/physical fault
// address; htinst: pre-decoded trapping instruction, 0 if unavailable).
func FaultInfo() (htval, htinst uint64) {
	return readHtval(), readHtinst()
}

// SetHvipVSEIP sets or clears the VS external-interrupt-pending bit
// (bit 10) of hvip, used to reflect a PLIC claim into the guest.
func SetHvipVSEIP(set bool) {
	const vseip = 1 << 10

	v := readHvip()
	if set {
		v |= vseip
	} else {
		v &^= vseip
	}

	writeHvip(v)
}

// HstatusSPV is the HS-mode hstatus bit meaning "the trap came from
// VS-mode" (spv: supervisor previous virtualization mode).
const HstatusSPV = 1 << 7

// WriteHSStvec writes HS-mode's own stvec (used with V=0), distinct
// from the VS-prefixed vstvec the guest perceives as its own --
// installed once per vCPU to point at the entry/exit trampoline's trap
// landing pad.
func WriteHSStvec(addr uint64) {
	writeStvec(addr)
}
