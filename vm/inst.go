package vm

// Op tags every RV32I variant this interpreter recognizes, grouped by
// encoding family as in spec.md §4.1.
type Op int

const (
	OpInvalid Op = iota

	// U
	OpLUI
	OpAUIPC

	// J
	OpJAL

	// I-jump
	OpJALR

	// B
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU

	// I-load
	OpLB
	OpLH
	OpLW
	OpLBU
	OpLHU

	// S
	OpSB
	OpSH
	OpSW

	// I-arith/shift
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI

	// R
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND

	// system
	OpECALL
	OpIGNORE // FENCE, FENCE.I, CSR*
)

// mnemonics backs Op.String, which the asm disassembler prints. The asm
// encoder keeps its own, separate mnemonic table.
var mnemonics = map[Op]string{
	OpLUI: "lui", OpAUIPC: "auipc",
	OpJAL: "jal", OpJALR: "jalr",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge", OpBLTU: "bltu", OpBGEU: "bgeu",
	OpLB: "lb", OpLH: "lh", OpLW: "lw", OpLBU: "lbu", OpLHU: "lhu",
	OpSB: "sb", OpSH: "sh", OpSW: "sw",
	OpADDI: "addi", OpSLTI: "slti", OpSLTIU: "sltiu", OpXORI: "xori", OpORI: "ori", OpANDI: "andi",
	OpSLLI: "slli", OpSRLI: "srli", OpSRAI: "srai",
	OpADD: "add", OpSUB: "sub", OpSLL: "sll", OpSLT: "slt", OpSLTU: "sltu",
	OpXOR: "xor", OpSRL: "srl", OpSRA: "sra", OpOR: "or", OpAND: "and",
	OpECALL: "ecall", OpIGNORE: "ignore",
}

// String returns the RV32I mnemonic, or "invalid" for OpInvalid.
func (o Op) String() string {
	if s, ok := mnemonics[o]; ok {
		return s
	}
	return "invalid"
}

// Inst is the decoder's output: a tagged operation record carrying the
// minimal decoded operand set for its family. Rd/Rs1/Rs2 are always
// 5-bit register indices (0-31); unused fields for a given Op are zero.
//
// Imm carries the immediate in the packed/reconstructed-but-not-yet-
// sign-extended form described in spec.md §4.1: I/S immediates are
// 12-bit values, B immediates are 13-bit values (low bit always 0),
// J immediates are 21-bit values (low bit always 0), and U immediates
// are the full 32-bit already-shifted value. The executor performs
// sign-extension from the width appropriate to Op; Decode never does.
type Inst struct {
	Op  Op
	Rd  uint8
	Rs1 uint8
	Rs2 uint8
	Imm uint32
}
