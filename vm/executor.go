package vm

// Execute applies inst's semantics against cpu/mem. A (target, true, nil)
// result means the caller must install target as the new PC; (_, false,
// nil) means the caller advances PC by 4. ErrSuspend signals ECALL —
// the machine loop halts on it; any other error is a propagated State
// error and is likewise fatal to the loop (spec.md §7 policy: no retries,
// no catching inside the core).
func Execute(inst Inst, cpu *CPU, mem *Memory) (target uint32, redirect bool, err error) {
	switch inst.Op {
	case OpLUI:
		return 0, false, cpu.SetRegister(inst.Rd, inst.Imm)

	case OpAUIPC:
		return 0, false, cpu.SetRegister(inst.Rd, cpu.PC()+inst.Imm)

	case OpJAL:
		pc := cpu.PC()
		if err := cpu.SetRegister(inst.Rd, pc+4); err != nil {
			return 0, false, err
		}
		offset := signExtend(inst.Imm, 21)
		return pc + offset, true, nil

	case OpJALR:
		pc := cpu.PC()
		base, err := cpu.GetRegister(inst.Rs1)
		if err != nil {
			return 0, false, err
		}
		offset := signExtend(inst.Imm, 12)
		addr := (base + offset) &^ 1
		// rd is written after reading rs1, so rd == rs1 behaves correctly.
		if err := cpu.SetRegister(inst.Rd, pc+4); err != nil {
			return 0, false, err
		}
		return addr, true, nil

	case OpBEQ:
		return branch(cpu, inst, func(a, b uint32) bool { return a == b })
	case OpBNE:
		return branch(cpu, inst, func(a, b uint32) bool { return a != b })
	case OpBLT:
		return branch(cpu, inst, signedLessThan)
	case OpBGE:
		return branch(cpu, inst, signedGreaterEqual)
	case OpBLTU:
		return branch(cpu, inst, func(a, b uint32) bool { return a < b })
	case OpBGEU:
		return branch(cpu, inst, func(a, b uint32) bool { return a >= b })

	case OpLB:
		return 0, false, load(cpu, mem, inst, 1, true)
	case OpLH:
		return 0, false, load(cpu, mem, inst, 2, true)
	case OpLW:
		return 0, false, load(cpu, mem, inst, 4, true)
	case OpLBU:
		return 0, false, load(cpu, mem, inst, 1, false)
	case OpLHU:
		return 0, false, load(cpu, mem, inst, 2, false)

	case OpSB:
		return 0, false, store(cpu, mem, inst, 1)
	case OpSH:
		return 0, false, store(cpu, mem, inst, 2)
	case OpSW:
		return 0, false, store(cpu, mem, inst, 4)

	case OpADDI:
		return 0, false, iarith(cpu, inst, func(a, imm uint32) uint32 { return a + imm })
	case OpSLTI:
		return 0, false, iarith(cpu, inst, func(a, imm uint32) uint32 { return boolToWord(signedLessThan(a, imm)) })
	case OpSLTIU:
		return 0, false, iarith(cpu, inst, func(a, imm uint32) uint32 { return boolToWord(a < imm) })
	case OpXORI:
		return 0, false, iarith(cpu, inst, func(a, imm uint32) uint32 { return a ^ imm })
	case OpORI:
		return 0, false, iarith(cpu, inst, func(a, imm uint32) uint32 { return a | imm })
	case OpANDI:
		return 0, false, iarith(cpu, inst, func(a, imm uint32) uint32 { return a & imm })

	case OpSLLI:
		return 0, false, ishift(cpu, inst, func(a uint32, shamt uint32) uint32 { return a << (shamt & 0x1f) })
	case OpSRLI:
		return 0, false, ishift(cpu, inst, func(a uint32, shamt uint32) uint32 { return a >> (shamt & 0x1f) })
	case OpSRAI:
		return 0, false, ishift(cpu, inst, arithShiftRight)

	case OpADD:
		return 0, false, rarith(cpu, inst, func(a, b uint32) uint32 { return a + b })
	case OpSUB:
		return 0, false, rarith(cpu, inst, func(a, b uint32) uint32 { return a - b })
	case OpSLL:
		return 0, false, rarith(cpu, inst, func(a, b uint32) uint32 { return a << (b & 0x1f) })
	case OpSLT:
		return 0, false, rarith(cpu, inst, func(a, b uint32) uint32 { return boolToWord(signedLessThan(a, b)) })
	case OpSLTU:
		return 0, false, rarith(cpu, inst, func(a, b uint32) uint32 { return boolToWord(a < b) })
	case OpXOR:
		return 0, false, rarith(cpu, inst, func(a, b uint32) uint32 { return a ^ b })
	case OpSRL:
		return 0, false, rarith(cpu, inst, func(a, b uint32) uint32 { return a >> (b & 0x1f) })
	case OpSRA:
		return 0, false, rarith(cpu, inst, arithShiftRight)
	case OpOR:
		return 0, false, rarith(cpu, inst, func(a, b uint32) uint32 { return a | b })
	case OpAND:
		return 0, false, rarith(cpu, inst, func(a, b uint32) uint32 { return a & b })

	case OpECALL:
		return 0, false, ErrSuspend

	case OpIGNORE:
		return 0, false, nil

	default:
		return 0, false, ErrUnknownInst
	}
}

func branch(cpu *CPU, inst Inst, cmp func(a, b uint32) bool) (uint32, bool, error) {
	a, err := cpu.GetRegister(inst.Rs1)
	if err != nil {
		return 0, false, err
	}
	b, err := cpu.GetRegister(inst.Rs2)
	if err != nil {
		return 0, false, err
	}
	if !cmp(a, b) {
		return 0, false, nil
	}
	offset := signExtend(inst.Imm, 13)
	return cpu.PC() + offset, true, nil
}

func load(cpu *CPU, mem *Memory, inst Inst, width uint, signed bool) error {
	base, err := cpu.GetRegister(inst.Rs1)
	if err != nil {
		return err
	}
	addr := base + signExtend(inst.Imm, 12)

	var raw uint32
	switch width {
	case 1:
		v, err := mem.GetU8(addr)
		if err != nil {
			return err
		}
		raw = uint32(v)
	case 2:
		v, err := mem.GetU16(addr)
		if err != nil {
			return err
		}
		raw = uint32(v)
	case 4:
		v, err := mem.GetU32(addr)
		if err != nil {
			return err
		}
		raw = v
	}

	if signed && width < 4 {
		raw = signExtend(raw, width*8)
	}
	return cpu.SetRegister(inst.Rd, raw)
}

func store(cpu *CPU, mem *Memory, inst Inst, width uint) error {
	base, err := cpu.GetRegister(inst.Rs1)
	if err != nil {
		return err
	}
	addr := base + signExtend(inst.Imm, 12)

	v, err := cpu.GetRegister(inst.Rs2)
	if err != nil {
		return err
	}

	switch width {
	case 1:
		return mem.SetU8(addr, uint8(v))
	case 2:
		return mem.SetU16(addr, uint16(v))
	default:
		return mem.SetU32(addr, v)
	}
}

func iarith(cpu *CPU, inst Inst, f func(a, imm uint32) uint32) error {
	a, err := cpu.GetRegister(inst.Rs1)
	if err != nil {
		return err
	}
	imm := signExtend(inst.Imm, 12)
	return cpu.SetRegister(inst.Rd, f(a, imm))
}

func ishift(cpu *CPU, inst Inst, f func(a uint32, shamt uint32) uint32) error {
	a, err := cpu.GetRegister(inst.Rs1)
	if err != nil {
		return err
	}
	return cpu.SetRegister(inst.Rd, f(a, inst.Imm))
}

func rarith(cpu *CPU, inst Inst, f func(a, b uint32) uint32) error {
	a, err := cpu.GetRegister(inst.Rs1)
	if err != nil {
		return err
	}
	b, err := cpu.GetRegister(inst.Rs2)
	if err != nil {
		return err
	}
	return cpu.SetRegister(inst.Rd, f(a, b))
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
