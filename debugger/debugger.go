package debugger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rv32i-emu/rv32i-emu/asm"
	"github.com/rv32i-emu/rv32i-emu/config"
	"github.com/rv32i-emu/rv32i-emu/vm"
)

// Debugger wraps a vm.Machine with breakpoints, watchpoints, and
// command history, serializing all execution control under a single
// mutex so the TUI's input goroutine and its execution goroutine never
// step the machine concurrently.
type Debugger struct {
	mu sync.Mutex

	Machine     *vm.Machine
	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory

	LastCommand string
}

// New builds a Debugger around machine, sizing the command history from
// cfg.Debugger.HistorySize.
func New(machine *vm.Machine, cfg *config.Config) *Debugger {
	historySize := 1000
	if cfg != nil {
		historySize = cfg.Debugger.HistorySize
	}
	return &Debugger{
		Machine:     machine,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(historySize),
	}
}

// Step executes exactly one cycle. Breakpoints and watchpoints are not
// consulted; only Continue checks them.
func (d *Debugger) Step() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Machine.Step()
}

// Continue runs cycles until a breakpoint or watchpoint fires, or the
// machine halts. The returned string names what stopped it; err is
// non-nil only for a machine halt (vm.ErrSuspend on the successful
// path, any other error on failure).
func (d *Debugger) Continue() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		pc := d.Machine.CPU.PC()
		if bp, hit := d.Breakpoints.Hit(pc); hit {
			return fmt.Sprintf("breakpoint %d at %#08x", bp.ID, bp.Address), nil
		}

		if err := d.Machine.Step(); err != nil {
			return "", err
		}

		if wp, hit := d.Watchpoints.Check(d.Machine); hit {
			return fmt.Sprintf("watchpoint %d (%s) -> %#08x", wp.ID, wp.Expression, wp.LastValue), nil
		}
	}
}

// SetBreakpoint sets a (non-temporary) breakpoint at address.
func (d *Debugger) SetBreakpoint(address uint32) *Breakpoint {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Breakpoints.Add(address, false)
}

// Register reads register index, holding the execution lock so a
// concurrent Continue can't observe a half-stepped machine.
func (d *Debugger) Register(index uint8) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Machine.CPU.GetRegister(index)
}

// Registers snapshots all 32 general-purpose registers plus PC.
func (d *Debugger) Registers() (regs [32]uint32, pc uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := uint8(0); i < 32; i++ {
		regs[i], _ = d.Machine.CPU.GetRegister(i)
	}
	return regs, d.Machine.CPU.PC()
}

// MemoryWord reads the 32-bit word at addr.
func (d *Debugger) MemoryWord(addr uint32) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Machine.Memory.GetU32(addr)
}

// MemoryBytes reads n bytes starting at addr, for hex-dump rendering.
func (d *Debugger) MemoryBytes(addr uint32, n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Machine.Memory.GetBytes(addr, uint32(n))
}

// DisassembleAt reads and disassembles count instructions starting at
// addr, via asm.Disassemble.
func (d *Debugger) DisassembleAt(addr uint32, count int) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	lines := make([]string, 0, count)
	for i := 0; i < count; i++ {
		pc := addr + uint32(i*4)
		word, err := d.Machine.Memory.GetU32(pc)
		if err != nil {
			return lines, err
		}
		lines = append(lines, fmt.Sprintf("%#08x: %s", pc, asm.Disassemble(word, pc)))
	}
	return lines, nil
}

// Halted reports whether err represents a terminal machine condition
// (as opposed to a debugger-level error like an unknown command).
func Halted(err error) bool {
	return errors.Is(err, vm.ErrSuspend) || errors.Is(err, vm.ErrUnknownInst) || errors.Is(err, vm.ErrInvalidMemoryAccess)
}
