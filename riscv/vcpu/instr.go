package vcpu

// DecodedMemAccess is the result of decoding a trapping PLIC-window
// instruction into the two shapes the core actually services:
// a 32-bit store of register Rs2's value, or a 32-bit load into
// register Rd. Len is the instruction's width in bytes (2 for RV-C, 4
// for RV32), used to advance the guest's PC.
type DecodedMemAccess struct {
	IsStore bool
	Rd      uint32
	Rs2     uint32
	Len     uint64
}

// instructionLength returns 2 if the low 16 bits of a fetched
// instruction word identify an RV-C (compressed) encoding, or 4 for a
// full RV32 instruction, per the standard "low two bits are 11 for a
// 32-bit instruction" rule.
func instructionLength(low16 uint16) int {
	if low16&0x3 == 0x3 {
		return 4
	}

	return 2
}

// DecodePlicAccess decodes a raw instruction word trapped over the PLIC
// MMIO window into a Sw/Lw access, determining RV-C vs RV32 width
// from the low 16 bits itself. raw must already hold the full 32 bits
// when the instruction is RV32; callers that only have
// htinst's raw value (which may be zero, signalling "no hint") are
// expected to fetch the real instruction from guest memory first.
func DecodePlicAccess(raw uint32) (DecodedMemAccess, error) {
	len := instructionLength(uint16(raw))

	return decodePlicAccess(raw, len)
}

// decodePlicAccess decodes inst (already truncated to its actual width
// by the caller using instructionLength) as RV-C or RV32 Sw/Lw, the only
// two forms the PLIC MMIO window accepts. Any other opcode is
// ErrInvalidInstruction, matching the original's "only Sw/Lw are valid
// over the PLIC window" behavior.
func decodePlicAccess(inst uint32, len int) (DecodedMemAccess, error) {
	if len == 4 {
		return decodeRV32(inst)
	}

	return decodeRVC(uint16(inst))
}

// decodeRV32 handles the standard 32-bit encodings of SW (store word,
// opcode 0100011 funct3 010) and LW (load word, opcode 0000011 funct3
// 010).
func decodeRV32(inst uint32) (DecodedMemAccess, error) {
	opcode := inst & 0x7F
	funct3 := (inst >> 12) & 0x7

	switch {
	case opcode == 0x23 && funct3 == 0x2: // SW; rs1 (the base register) is
		// not needed since the faulting guest-physical address is
		// already known from htval.
		rs2 := (inst >> 20) & 0x1F

		return DecodedMemAccess{IsStore: true, Rs2: rs2, Len: 4}, nil

	case opcode == 0x03 && funct3 == 0x2: // LW
		rd := (inst >> 7) & 0x1F

		return DecodedMemAccess{IsStore: false, Rd: rd, Len: 4}, nil

	default:
		return DecodedMemAccess{}, ErrInvalidInstruction
	}
}

// decodeRVC handles the compressed C.SW/C.LW forms (quadrant 0, funct3
// 110/010), whose 3-bit register fields encode x8..x15.
func decodeRVC(inst uint16) (DecodedMemAccess, error) {
	quadrant := inst & 0x3
	funct3 := (inst >> 13) & 0x7

	if quadrant != 0x0 {
		return DecodedMemAccess{}, ErrInvalidInstruction
	}

	rs2c := (inst >> 2) & 0x7
	rdc := (inst >> 2) & 0x7

	switch funct3 {
	case 0x6: // C.SW
		return DecodedMemAccess{IsStore: true, Rs2: uint32(rs2c) + 8, Len: 2}, nil

	case 0x2: // C.LW
		return DecodedMemAccess{IsStore: false, Rd: uint32(rdc) + 8, Len: 2}, nil

	default:
		return DecodedMemAccess{}, ErrInvalidInstruction
	}
}
