package vm

// Small encoders used only by this package's tests to build machine
// words without hand-computing hex literals. These are the inverse of
// the field-extraction rules in decode.go; the asm package has its own,
// independent implementation (see asm/encoder.go) so that a bug shared
// between encoder and decoder wouldn't be masked here.

func encodeR(opcode, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeI(opcode, funct3, rd, rs1, imm uint32) uint32 {
	return (imm&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeS(opcode, funct3, rs1, rs2, imm uint32) uint32 {
	imm &= 0xfff
	return (imm>>5)<<25 | rs2<<20 | rs1<<15 | funct3<<12 | (imm&0x1f)<<7 | opcode
}

func encodeB(opcode, funct3, rs1, rs2, imm uint32) uint32 {
	// imm is the 13-bit branch offset (bit 0 always 0).
	b12 := (imm >> 12) & 1
	b11 := (imm >> 11) & 1
	b10_5 := (imm >> 5) & 0x3f
	b4_1 := (imm >> 1) & 0xf
	return b12<<31 | b10_5<<25 | rs2<<20 | rs1<<15 | funct3<<12 | b4_1<<8 | b11<<7 | opcode
}

func encodeU(opcode, rd, imm uint32) uint32 {
	return (imm & 0xfffff000) | rd<<7 | opcode
}

func encodeJ(opcode, rd, imm uint32) uint32 {
	// imm is the 21-bit jump offset (bit 0 always 0).
	b20 := (imm >> 20) & 1
	b19_12 := (imm >> 12) & 0xff
	b11 := (imm >> 11) & 1
	b10_1 := (imm >> 1) & 0x3ff
	return b20<<31 | b10_1<<21 | b11<<20 | b19_12<<12 | rd<<7 | opcode
}

const (
	testOpcodeLUI    = 0b0110111
	testOpcodeAUIPC  = 0b0010111
	testOpcodeJAL    = 0b1101111
	testOpcodeJALR   = 0b1100111
	testOpcodeBranch = 0b1100011
	testOpcodeLoad   = 0b0000011
	testOpcodeStore  = 0b0100011
	testOpcodeIArith = 0b0010011
	testOpcodeROp    = 0b0110011
	testOpcodeSystem = 0b1110011
)
