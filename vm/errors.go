package vm

import "errors"

// Decode errors.
var (
	// ErrUnknownInst is returned by Decode when the opcode/funct3/funct7
	// combination does not match any RV32I encoding in the ISA table.
	ErrUnknownInst = errors.New("rv32i: unknown instruction")
)

// State errors.
var (
	// ErrInvalidRegister is returned when a register index >= 32 is used.
	// Real encodings only ever carry a 5-bit register field, so this can
	// only be reached by a caller constructing an Inst by hand.
	ErrInvalidRegister = errors.New("rv32i: invalid register index")

	// ErrInvalidMemoryAccess is returned when any byte touched by a load
	// or store falls outside [0, M).
	ErrInvalidMemoryAccess = errors.New("rv32i: invalid memory access")

	// ErrImageTooLarge is returned when constructing a Memory from a byte
	// slice longer than its capacity.
	ErrImageTooLarge = errors.New("rv32i: program image larger than memory")
)

// Execution errors.
var (
	// ErrSuspend signals that ECALL was executed. The machine loop treats
	// this as the success path: the caller inspects registers to decide
	// pass/fail by the gp/a0/a7 convention.
	ErrSuspend = errors.New("rv32i: suspend (ecall)")
)
