package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// registerNames maps every accepted spelling of a register - xN and its
// ABI alias - to its number.
var registerNames = map[string]uint8{
	"x0": 0, "zero": 0,
	"x1": 1, "ra": 1,
	"x2": 2, "sp": 2,
	"x3": 3, "gp": 3,
	"x4": 4, "tp": 4,
	"x5": 5, "t0": 5,
	"x6": 6, "t1": 6,
	"x7": 7, "t2": 7,
	"x8": 8, "s0": 8, "fp": 8,
	"x9": 9, "s1": 9,
	"x10": 10, "a0": 10,
	"x11": 11, "a1": 11,
	"x12": 12, "a2": 12,
	"x13": 13, "a3": 13,
	"x14": 14, "a4": 14,
	"x15": 15, "a5": 15,
	"x16": 16, "a6": 16,
	"x17": 17, "a7": 17,
	"x18": 18, "s2": 18,
	"x19": 19, "s3": 19,
	"x20": 20, "s4": 20,
	"x21": 21, "s5": 21,
	"x22": 22, "s6": 22,
	"x23": 23, "s7": 23,
	"x24": 24, "s8": 24,
	"x25": 25, "s9": 25,
	"x26": 26, "s10": 26,
	"x27": 27, "s11": 27,
	"x28": 28, "t3": 28,
	"x29": 29, "t4": 29,
	"x30": 30, "t5": 30,
	"x31": 31, "t6": 31,
}

func parseRegister(operand string) (uint8, error) {
	return ParseRegister(operand)
}

// ParseRegister resolves a register operand - "x10", "a0", "sp", etc -
// to its register number. Used by the encoder and by the debugger's
// register-by-name commands.
func ParseRegister(operand string) (uint8, error) {
	name := strings.ToLower(strings.TrimSpace(operand))
	reg, ok := registerNames[name]
	if !ok {
		return 0, fmt.Errorf("not a register: %q", operand)
	}
	return reg, nil
}

// Encoder holds the symbol table produced by pass one and turns parsed
// Items into machine words and raw data bytes.
type Encoder struct {
	symbols *SymbolTable
}

func NewEncoder(symbols *SymbolTable) *Encoder {
	return &Encoder{symbols: symbols}
}

// evaluate resolves an operand that is either a decimal/hex/binary
// literal or a label name, optionally preceded by "+" or "-" (e.g. a
// branch target written as "loop" or an offset written as "-4").
// Label arithmetic such as "loop+4" is not supported and reports an
// undefined-label error.
func (e *Encoder) evaluate(operand string, pc uint32) (uint32, error) {
	operand = strings.TrimSpace(operand)
	if operand == "" {
		return 0, fmt.Errorf("empty operand")
	}

	sign := int64(1)
	rest := operand
	for len(rest) > 0 && (rest[0] == '+' || rest[0] == '-') {
		if rest[0] == '-' {
			sign = -sign
		}
		rest = rest[1:]
	}

	var base uint32
	if v, err := parseImmediateLiteral(rest); err == nil {
		base = v
	} else if sym, ok := e.symbols.Lookup(rest); ok && sym.Defined {
		base = sym.Value
	} else if label := rest; label != "" {
		v, err := e.symbols.Get(label)
		if err != nil {
			return 0, err
		}
		base = v
	}

	if sign < 0 {
		return uint32(-int64(base)), nil
	}
	return base, nil
}

func parseImmediateLiteral(s string) (uint32, error) {
	if s == "" {
		return 0, fmt.Errorf("empty literal")
	}
	var v uint64
	var err error
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 32)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		v, err = strconv.ParseUint(s[2:], 2, 32)
	default:
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// parseOffsetOperand parses RISC-V's "imm(reg)" memory operand syntax
// used by loads and stores, e.g. "-4(sp)" or "0(a0)".
func parseOffsetOperand(operand string) (imm string, reg string, err error) {
	open := strings.IndexByte(operand, '(')
	close := strings.IndexByte(operand, ')')
	if open < 0 || close < open {
		return "", "", fmt.Errorf("expected offset(register), got %q", operand)
	}
	imm = strings.TrimSpace(operand[:open])
	if imm == "" {
		imm = "0"
	}
	reg = strings.TrimSpace(operand[open+1 : close])
	return imm, reg, nil
}

// opcode/funct3/funct7 constants mirroring spec.md §4.1's instruction
// table; kept local to the encoder so it has no dependency on vm's
// decode tables.
const (
	opLUI      uint32 = 0b0110111
	opAUIPC    uint32 = 0b0010111
	opJAL      uint32 = 0b1101111
	opJALR     uint32 = 0b1100111
	opBRANCH   uint32 = 0b1100011
	opLOAD     uint32 = 0b0000011
	opSTORE    uint32 = 0b0100011
	opARITH_I  uint32 = 0b0010011
	opARITH_R  uint32 = 0b0110011
	opSYSTEM   uint32 = 0b1110011
	funct7Base uint32 = 0b0000000
	funct7Alt  uint32 = 0b0100000
)

func encodeU(opcode uint32, rd uint8, imm uint32) uint32 {
	return (imm & 0xfffff000) | uint32(rd)<<7 | opcode
}

func encodeJ(opcode uint32, rd uint8, imm uint32) uint32 {
	return (imm&0x100000)<<11 | (imm&0x7fe)<<20 | (imm&0x800)<<9 | (imm & 0xff000) |
		uint32(rd)<<7 | opcode
}

func encodeI(opcode, funct3 uint32, rd, rs1 uint8, imm uint32) uint32 {
	return (imm&0xfff)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

func encodeS(opcode, funct3 uint32, rs1, rs2 uint8, imm uint32) uint32 {
	return (imm&0xfe0)<<20 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | (imm&0x1f)<<7 | opcode
}

func encodeB(opcode, funct3 uint32, rs1, rs2 uint8, imm uint32) uint32 {
	return (imm&0x1000)<<19 | (imm&0x7e0)<<20 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 |
		(imm&0x1e)<<7 | (imm&0x800)>>4 | opcode
}

func encodeR(opcode, funct3, funct7 uint32, rd, rs1, rs2 uint8) uint32 {
	return funct7<<25 | uint32(rs2)<<20 | uint32(rs1)<<15 | funct3<<12 | uint32(rd)<<7 | opcode
}

type mnemonicKind int

const (
	kindU mnemonicKind = iota
	kindJ
	kindIArith
	kindIShift
	kindIJumpReg
	kindILoad
	kindBranch
	kindStore
	kindRArith
	kindSystem
)

type mnemonicDef struct {
	kind   mnemonicKind
	opcode uint32
	funct3 uint32
	funct7 uint32
}

var mnemonics = map[string]mnemonicDef{
	"lui":   {kind: kindU, opcode: opLUI},
	"auipc": {kind: kindU, opcode: opAUIPC},
	"jal":   {kind: kindJ, opcode: opJAL},
	"jalr":  {kind: kindIJumpReg, opcode: opJALR, funct3: 0b000},

	"beq":  {kind: kindBranch, opcode: opBRANCH, funct3: 0b000},
	"bne":  {kind: kindBranch, opcode: opBRANCH, funct3: 0b001},
	"blt":  {kind: kindBranch, opcode: opBRANCH, funct3: 0b100},
	"bge":  {kind: kindBranch, opcode: opBRANCH, funct3: 0b101},
	"bltu": {kind: kindBranch, opcode: opBRANCH, funct3: 0b110},
	"bgeu": {kind: kindBranch, opcode: opBRANCH, funct3: 0b111},

	"lb":  {kind: kindILoad, opcode: opLOAD, funct3: 0b000},
	"lh":  {kind: kindILoad, opcode: opLOAD, funct3: 0b001},
	"lw":  {kind: kindILoad, opcode: opLOAD, funct3: 0b010},
	"lbu": {kind: kindILoad, opcode: opLOAD, funct3: 0b100},
	"lhu": {kind: kindILoad, opcode: opLOAD, funct3: 0b101},

	"sb": {kind: kindStore, opcode: opSTORE, funct3: 0b000},
	"sh": {kind: kindStore, opcode: opSTORE, funct3: 0b001},
	"sw": {kind: kindStore, opcode: opSTORE, funct3: 0b010},

	"addi":  {kind: kindIArith, opcode: opARITH_I, funct3: 0b000},
	"slti":  {kind: kindIArith, opcode: opARITH_I, funct3: 0b010},
	"sltiu": {kind: kindIArith, opcode: opARITH_I, funct3: 0b011},
	"xori":  {kind: kindIArith, opcode: opARITH_I, funct3: 0b100},
	"ori":   {kind: kindIArith, opcode: opARITH_I, funct3: 0b110},
	"andi":  {kind: kindIArith, opcode: opARITH_I, funct3: 0b111},
	"slli":  {kind: kindIShift, opcode: opARITH_I, funct3: 0b001, funct7: funct7Base},
	"srli":  {kind: kindIShift, opcode: opARITH_I, funct3: 0b101, funct7: funct7Base},
	"srai":  {kind: kindIShift, opcode: opARITH_I, funct3: 0b101, funct7: funct7Alt},

	"add": {kind: kindRArith, opcode: opARITH_R, funct3: 0b000, funct7: funct7Base},
	"sub": {kind: kindRArith, opcode: opARITH_R, funct3: 0b000, funct7: funct7Alt},
	"sll": {kind: kindRArith, opcode: opARITH_R, funct3: 0b001, funct7: funct7Base},
	"slt": {kind: kindRArith, opcode: opARITH_R, funct3: 0b010, funct7: funct7Base},
	"sltu": {kind: kindRArith, opcode: opARITH_R, funct3: 0b011, funct7: funct7Base},
	"xor": {kind: kindRArith, opcode: opARITH_R, funct3: 0b100, funct7: funct7Base},
	"srl": {kind: kindRArith, opcode: opARITH_R, funct3: 0b101, funct7: funct7Base},
	"sra": {kind: kindRArith, opcode: opARITH_R, funct3: 0b101, funct7: funct7Alt},
	"or":  {kind: kindRArith, opcode: opARITH_R, funct3: 0b110, funct7: funct7Base},
	"and": {kind: kindRArith, opcode: opARITH_R, funct3: 0b111, funct7: funct7Base},

	"ecall": {kind: kindSystem, opcode: opSYSTEM},
}

// EncodeInstruction encodes a single parsed Instruction into its 32-bit
// machine word.
func (e *Encoder) EncodeInstruction(inst *Instruction) (uint32, error) {
	def, ok := mnemonics[strings.ToLower(inst.Mnemonic)]
	if !ok {
		return 0, fmt.Errorf("%s: unknown mnemonic %q", inst.Pos, inst.Mnemonic)
	}

	switch def.kind {
	case kindU:
		if len(inst.Operands) != 2 {
			return 0, fmt.Errorf("%s: %s expects rd, imm", inst.Pos, inst.Mnemonic)
		}
		rd, err := parseRegister(inst.Operands[0])
		if err != nil {
			return 0, err
		}
		imm, err := e.evaluate(inst.Operands[1], inst.Address)
		if err != nil {
			return 0, err
		}
		// lui/auipc take the raw 20-bit upper immediate; the encoded
		// word (and vm.Inst.Imm on decode) carries it pre-shifted into
		// bits[31:12].
		return encodeU(def.opcode, rd, imm<<12), nil

	case kindJ:
		if len(inst.Operands) != 2 {
			return 0, fmt.Errorf("%s: jal expects rd, target", inst.Pos)
		}
		rd, err := parseRegister(inst.Operands[0])
		if err != nil {
			return 0, err
		}
		target, err := e.evaluate(inst.Operands[1], inst.Address)
		if err != nil {
			return 0, err
		}
		offset := relativeOffset(inst.Operands[1], target, inst.Address)
		return encodeJ(def.opcode, rd, offset), nil

	case kindIJumpReg:
		if len(inst.Operands) != 3 {
			return 0, fmt.Errorf("%s: jalr expects rd, rs1, imm", inst.Pos)
		}
		rd, err := parseRegister(inst.Operands[0])
		if err != nil {
			return 0, err
		}
		rs1, err := parseRegister(inst.Operands[1])
		if err != nil {
			return 0, err
		}
		imm, err := e.evaluate(inst.Operands[2], inst.Address)
		if err != nil {
			return 0, err
		}
		return encodeI(def.opcode, def.funct3, rd, rs1, imm), nil

	case kindBranch:
		if len(inst.Operands) != 3 {
			return 0, fmt.Errorf("%s: %s expects rs1, rs2, target", inst.Pos, inst.Mnemonic)
		}
		rs1, err := parseRegister(inst.Operands[0])
		if err != nil {
			return 0, err
		}
		rs2, err := parseRegister(inst.Operands[1])
		if err != nil {
			return 0, err
		}
		target, err := e.evaluate(inst.Operands[2], inst.Address)
		if err != nil {
			return 0, err
		}
		offset := relativeOffset(inst.Operands[2], target, inst.Address)
		return encodeB(def.opcode, def.funct3, rs1, rs2, offset), nil

	case kindILoad:
		if len(inst.Operands) != 2 {
			return 0, fmt.Errorf("%s: %s expects rd, offset(rs1)", inst.Pos, inst.Mnemonic)
		}
		rd, err := parseRegister(inst.Operands[0])
		if err != nil {
			return 0, err
		}
		immStr, regStr, err := parseOffsetOperand(inst.Operands[1])
		if err != nil {
			return 0, err
		}
		rs1, err := parseRegister(regStr)
		if err != nil {
			return 0, err
		}
		imm, err := e.evaluate(immStr, inst.Address)
		if err != nil {
			return 0, err
		}
		return encodeI(def.opcode, def.funct3, rd, rs1, imm), nil

	case kindStore:
		if len(inst.Operands) != 2 {
			return 0, fmt.Errorf("%s: %s expects rs2, offset(rs1)", inst.Pos, inst.Mnemonic)
		}
		rs2, err := parseRegister(inst.Operands[0])
		if err != nil {
			return 0, err
		}
		immStr, regStr, err := parseOffsetOperand(inst.Operands[1])
		if err != nil {
			return 0, err
		}
		rs1, err := parseRegister(regStr)
		if err != nil {
			return 0, err
		}
		imm, err := e.evaluate(immStr, inst.Address)
		if err != nil {
			return 0, err
		}
		return encodeS(def.opcode, def.funct3, rs1, rs2, imm), nil

	case kindIArith:
		if len(inst.Operands) != 3 {
			return 0, fmt.Errorf("%s: %s expects rd, rs1, imm", inst.Pos, inst.Mnemonic)
		}
		rd, err := parseRegister(inst.Operands[0])
		if err != nil {
			return 0, err
		}
		rs1, err := parseRegister(inst.Operands[1])
		if err != nil {
			return 0, err
		}
		imm, err := e.evaluate(inst.Operands[2], inst.Address)
		if err != nil {
			return 0, err
		}
		return encodeI(def.opcode, def.funct3, rd, rs1, imm), nil

	case kindIShift:
		if len(inst.Operands) != 3 {
			return 0, fmt.Errorf("%s: %s expects rd, rs1, shamt", inst.Pos, inst.Mnemonic)
		}
		rd, err := parseRegister(inst.Operands[0])
		if err != nil {
			return 0, err
		}
		rs1, err := parseRegister(inst.Operands[1])
		if err != nil {
			return 0, err
		}
		shamt, err := e.evaluate(inst.Operands[2], inst.Address)
		if err != nil {
			return 0, err
		}
		return encodeR(def.opcode, def.funct3, def.funct7, rd, rs1, uint8(shamt&0x1f)), nil

	case kindRArith:
		if len(inst.Operands) != 3 {
			return 0, fmt.Errorf("%s: %s expects rd, rs1, rs2", inst.Pos, inst.Mnemonic)
		}
		rd, err := parseRegister(inst.Operands[0])
		if err != nil {
			return 0, err
		}
		rs1, err := parseRegister(inst.Operands[1])
		if err != nil {
			return 0, err
		}
		rs2, err := parseRegister(inst.Operands[2])
		if err != nil {
			return 0, err
		}
		return encodeR(def.opcode, def.funct3, def.funct7, rd, rs1, rs2), nil

	case kindSystem:
		return encodeI(def.opcode, 0, 0, 0, 0), nil

	default:
		return 0, fmt.Errorf("%s: unhandled mnemonic kind for %q", inst.Pos, inst.Mnemonic)
	}
}

// relativeOffset decides whether operand was a raw immediate (already
// pc-relative, used verbatim) or a label/absolute address (converted to
// a pc-relative offset against addr).
func relativeOffset(operand string, resolved, addr uint32) uint32 {
	trimmed := strings.TrimSpace(operand)
	name := trimmed
	for len(name) > 0 && (name[0] == '+' || name[0] == '-') {
		name = name[1:]
	}
	if _, err := parseImmediateLiteral(name); err == nil {
		return resolved
	}
	return resolved - addr
}

// Assemble runs both passes over source and returns the flat machine
// image, starting at address 0.
func Assemble(source, filename string) ([]byte, error) {
	parser, errs := NewParser(source, filename)
	if errs.HasErrors() {
		return nil, errs
	}

	program, err := parser.Parse()
	if err != nil {
		return nil, err
	}

	enc := NewEncoder(program.Symbols)

	var size uint32
	for _, item := range program.Items {
		switch {
		case item.Inst != nil:
			size = item.Inst.Address + 4
		case item.Dir != nil:
			n := uint32(len(item.Dir.Args))
			switch item.Dir.Name {
			case "word":
				size = item.Dir.Address + 4*n
			case "byte":
				size = item.Dir.Address + n
			}
		}
	}

	image := make([]byte, size)
	for _, item := range program.Items {
		switch {
		case item.Inst != nil:
			word, err := enc.EncodeInstruction(item.Inst)
			if err != nil {
				return nil, err
			}
			putU32(image, item.Inst.Address, word)

		case item.Dir != nil:
			switch item.Dir.Name {
			case "word":
				for i, arg := range item.Dir.Args {
					v, err := enc.evaluate(arg, item.Dir.Address)
					if err != nil {
						return nil, fmt.Errorf("%s: %w", item.Dir.Pos, err)
					}
					putU32(image, item.Dir.Address+uint32(i)*4, v)
				}
			case "byte":
				for i, arg := range item.Dir.Args {
					v, err := enc.evaluate(arg, item.Dir.Address)
					if err != nil {
						return nil, fmt.Errorf("%s: %w", item.Dir.Pos, err)
					}
					image[item.Dir.Address+uint32(i)] = byte(v)
				}
			}
		}
	}

	return image, nil
}

func putU32(buf []byte, addr, value uint32) {
	buf[addr] = byte(value)
	buf[addr+1] = byte(value >> 8)
	buf[addr+2] = byte(value >> 16)
	buf[addr+3] = byte(value >> 24)
}
