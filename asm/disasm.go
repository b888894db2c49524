package asm

import (
	"fmt"

	"github.com/rv32i-emu/rv32i-emu/vm"
)

// abiNames is the canonical ABI spelling for each register, used when
// rendering disassembly for the debugger.
var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func regName(idx uint8) string {
	if int(idx) < len(abiNames) {
		return abiNames[idx]
	}
	return fmt.Sprintf("x%d", idx)
}

// Disassemble decodes word and renders it as an RV32I assembly line,
// matching the operand order the encoder accepts.
func Disassemble(word uint32, pc uint32) string {
	inst, err := vm.Decode(word)
	if err != nil {
		return fmt.Sprintf(".word 0x%08x", word)
	}

	switch inst.Op {
	case vm.OpLUI, vm.OpAUIPC:
		return fmt.Sprintf("%s %s, 0x%x", inst.Op, regName(inst.Rd), inst.Imm)

	case vm.OpJAL:
		return fmt.Sprintf("%s %s, 0x%x", inst.Op, regName(inst.Rd), pc+signExtend21(inst.Imm))

	case vm.OpJALR:
		return fmt.Sprintf("%s %s, %s, %d", inst.Op, regName(inst.Rd), regName(inst.Rs1), int32(signExtend12(inst.Imm)))

	case vm.OpBEQ, vm.OpBNE, vm.OpBLT, vm.OpBGE, vm.OpBLTU, vm.OpBGEU:
		return fmt.Sprintf("%s %s, %s, 0x%x", inst.Op, regName(inst.Rs1), regName(inst.Rs2), pc+signExtend13(inst.Imm))

	case vm.OpLB, vm.OpLH, vm.OpLW, vm.OpLBU, vm.OpLHU:
		return fmt.Sprintf("%s %s, %d(%s)", inst.Op, regName(inst.Rd), int32(signExtend12(inst.Imm)), regName(inst.Rs1))

	case vm.OpSB, vm.OpSH, vm.OpSW:
		return fmt.Sprintf("%s %s, %d(%s)", inst.Op, regName(inst.Rs2), int32(signExtend12(inst.Imm)), regName(inst.Rs1))

	case vm.OpADDI, vm.OpSLTI, vm.OpSLTIU, vm.OpXORI, vm.OpORI, vm.OpANDI:
		return fmt.Sprintf("%s %s, %s, %d", inst.Op, regName(inst.Rd), regName(inst.Rs1), int32(signExtend12(inst.Imm)))

	case vm.OpSLLI, vm.OpSRLI, vm.OpSRAI:
		return fmt.Sprintf("%s %s, %s, %d", inst.Op, regName(inst.Rd), regName(inst.Rs1), inst.Imm)

	case vm.OpADD, vm.OpSUB, vm.OpSLL, vm.OpSLT, vm.OpSLTU, vm.OpXOR, vm.OpSRL, vm.OpSRA, vm.OpOR, vm.OpAND:
		return fmt.Sprintf("%s %s, %s, %s", inst.Op, regName(inst.Rd), regName(inst.Rs1), regName(inst.Rs2))

	case vm.OpECALL:
		return "ecall"

	case vm.OpIGNORE:
		return "nop"

	default:
		return fmt.Sprintf(".word 0x%08x", word)
	}
}

func signExtend12(v uint32) uint32 {
	if v&0x800 != 0 {
		return v | 0xfffff000
	}
	return v
}

func signExtend13(v uint32) uint32 {
	if v&0x1000 != 0 {
		return v | 0xffffe000
	}
	return v
}

func signExtend21(v uint32) uint32 {
	if v&0x100000 != 0 {
		return v | 0xffe00000
	}
	return v
}
