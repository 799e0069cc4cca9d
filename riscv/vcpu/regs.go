// Package vcpu implements the RISC-V/H-extension back-end's vCPU state
// container, entry/exit trampoline, initial CSR programming and exit
// classification.
package vcpu

// GuestRegisters is the guest's general-purpose register file, x1..x31
// (x0 is hardwired zero and not stored), in the fixed order the entry/
// exit trampoline indexes by constant offset.
type GuestRegisters struct {
	X1, X2, X3, X4, X5, X6, X7, X8, X9, X10               uint64
	X11, X12, X13, X14, X15, X16, X17, X18, X19, X20      uint64
	X21, X22, X23, X24, X25, X26, X27, X28, X29, X30, X31 uint64
}

// regsSize is the byte size of GuestRegisters. The trampoline does not
// read it (its offsets are literal constants), so both must be kept in
// lockstep with the field count above by hand.
const regsSize = 31 * 8

// ABI register name accessors, used by SBI dispatch (a0..a7 = x10..x17)
// and the PLIC MMIO decoder (rd/rs2 by raw register index).

func (r *GuestRegisters) Reg(index uint32) uint64 {
	switch index {
	case 1:
		return r.X1
	case 2:
		return r.X2
	case 3:
		return r.X3
	case 4:
		return r.X4
	case 5:
		return r.X5
	case 6:
		return r.X6
	case 7:
		return r.X7
	case 8:
		return r.X8
	case 9:
		return r.X9
	case 10:
		return r.X10
	case 11:
		return r.X11
	case 12:
		return r.X12
	case 13:
		return r.X13
	case 14:
		return r.X14
	case 15:
		return r.X15
	case 16:
		return r.X16
	case 17:
		return r.X17
	case 18:
		return r.X18
	case 19:
		return r.X19
	case 20:
		return r.X20
	case 21:
		return r.X21
	case 22:
		return r.X22
	case 23:
		return r.X23
	case 24:
		return r.X24
	case 25:
		return r.X25
	case 26:
		return r.X26
	case 27:
		return r.X27
	case 28:
		return r.X28
	case 29:
		return r.X29
	case 30:
		return r.X30
	case 31:
		return r.X31
	default:
		return 0
	}
}

func (r *GuestRegisters) SetReg(index uint32, value uint64) {
	switch index {
	case 1:
		r.X1 = value
	case 2:
		r.X2 = value
	case 3:
		r.X3 = value
	case 4:
		r.X4 = value
	case 5:
		r.X5 = value
	case 6:
		r.X6 = value
	case 7:
		r.X7 = value
	case 8:
		r.X8 = value
	case 9:
		r.X9 = value
	case 10:
		r.X10 = value
	case 11:
		r.X11 = value
	case 12:
		r.X12 = value
	case 13:
		r.X13 = value
	case 14:
		r.X14 = value
	case 15:
		r.X15 = value
	case 16:
		r.X16 = value
	case 17:
		r.X17 = value
	case 18:
		r.X18 = value
	case 19:
		r.X19 = value
	case 20:
		r.X20 = value
	case 21:
		r.X21 = value
	case 22:
		r.X22 = value
	case 23:
		r.X23 = value
	case 24:
		r.X24 = value
	case 25:
		r.X25 = value
	case 26:
		r.X26 = value
	case 27:
		r.X27 = value
	case 28:
		r.X28 = value
	case 29:
		r.X29 = value
	case 30:
		r.X30 = value
	case 31:
		r.X31 = value
	}
}

// ABI indices into Reg/SetReg for the argument/return registers SBI
// dispatch and the PMU/RemoteFence handlers use.
const (
	RegA0 = 10
	RegA1 = 11
	RegA2 = 12
	RegA3 = 13
	RegA4 = 14
	RegA5 = 15
	RegA6 = 16
	RegA7 = 17
)

func (r *GuestRegisters) A0() uint64      { return r.X10 }
func (r *GuestRegisters) A1() uint64      { return r.X11 }
func (r *GuestRegisters) SetA0(v uint64)  { r.X10 = v }
func (r *GuestRegisters) SetA1(v uint64)  { r.X11 = v }
