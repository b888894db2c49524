package vm

// CPU holds the RV32I architectural state: the program counter and the
// 32-entry integer register file. x0 is hardwired to zero: reads always
// return 0 and writes are silently discarded, matching real RV32I (the
// original crisp-vm source returned IllegalOperation on x0 writes; this
// spec overrides that — see DESIGN.md).
type CPU struct {
	// x[0] is never read from or written to; x[1..31] back x1-x31.
	x  [32]uint32
	pc uint32
}

// NewCPU returns a CPU with PC and all registers zeroed.
func NewCPU() *CPU {
	return &CPU{}
}

// Reset zeroes the program counter and every register.
func (c *CPU) Reset() {
	c.pc = 0
	for i := range c.x {
		c.x[i] = 0
	}
}

// PC returns the program counter.
func (c *CPU) PC() uint32 {
	return c.pc
}

// SetPC sets the program counter. No alignment check is performed (see
// DESIGN.md open question: PC alignment).
func (c *CPU) SetPC(value uint32) {
	c.pc = value
}

// GetRegister returns the value of register index (0-31). Index 0 always
// yields 0; index > 31 is impossible from a decoded instruction (the
// field is 5 bits) and reports ErrInvalidRegister.
func (c *CPU) GetRegister(index uint8) (uint32, error) {
	switch {
	case index == 0:
		return 0, nil
	case index > 31:
		return 0, ErrInvalidRegister
	default:
		return c.x[index], nil
	}
}

// SetRegister writes value into register index. Writes to x0 are silently
// discarded. Index > 31 reports ErrInvalidRegister.
func (c *CPU) SetRegister(index uint8, value uint32) error {
	switch {
	case index == 0:
		return nil
	case index > 31:
		return ErrInvalidRegister
	default:
		c.x[index] = value
		return nil
	}
}

// Snapshot copies the full register file (x0..x31, where x[0] reads as 0);
// the PC is not included. Machine.Run passes it to Logger.Halted for the
// single "stat" record at termination.
func (c *CPU) Snapshot() [32]uint32 {
	regs := c.x
	regs[0] = 0
	return regs
}
