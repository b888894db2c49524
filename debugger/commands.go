package debugger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rv32i-emu/rv32i-emu/asm"
)

// ExecuteCommand parses and runs one command line against d, returning
// the text to display. A nil error with non-empty output is the normal
// case; a non-nil error is a debugger-level failure (bad syntax, unknown
// command), not a machine halt.
func (d *Debugger) ExecuteCommand(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		line = d.LastCommand
	}
	if line != "" {
		d.History.Add(line)
		d.LastCommand = line
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "step", "s", "si":
		return d.cmdStep()
	case "continue", "c":
		return d.cmdContinue()
	case "break", "b":
		return d.cmdBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdSetEnabled(args, true)
	case "disable":
		return d.cmdSetEnabled(args, false)
	case "watch", "w":
		return d.cmdWatch(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "help", "h", "?":
		return helpText, nil
	default:
		return "", fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

func parseAddress(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}

func (d *Debugger) cmdStep() (string, error) {
	if err := d.Step(); err != nil {
		if Halted(err) {
			return fmt.Sprintf("halted: %v", err), nil
		}
		return "", err
	}
	_, pc := d.Registers()
	return fmt.Sprintf("stepped to %#08x", pc), nil
}

func (d *Debugger) cmdContinue() (string, error) {
	reason, err := d.Continue()
	if err != nil {
		if Halted(err) {
			return fmt.Sprintf("halted: %v", err), nil
		}
		return "", err
	}
	return reason, nil
}

func (d *Debugger) cmdBreak(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: break <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return "", err
	}
	bp := d.SetBreakpoint(addr)
	return fmt.Sprintf("breakpoint %d at %#08x", bp.ID, bp.Address), nil
}

func (d *Debugger) cmdDelete(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: delete <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid breakpoint id %q: %w", args[0], err)
	}
	d.mu.Lock()
	err = d.Breakpoints.DeleteByID(id)
	d.mu.Unlock()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("deleted breakpoint %d", id), nil
}

func (d *Debugger) cmdSetEnabled(args []string, enabled bool) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: enable|disable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("invalid breakpoint id %q: %w", args[0], err)
	}
	d.mu.Lock()
	err = d.Breakpoints.SetEnabled(id, enabled)
	d.mu.Unlock()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("breakpoint %d enabled=%v", id, enabled), nil
}

func (d *Debugger) cmdWatch(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: watch <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return "", err
	}
	d.mu.Lock()
	wp := d.Watchpoints.AddMemory(args[0], addr)
	err = d.Watchpoints.Init(wp.ID, d.Machine)
	d.mu.Unlock()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("watchpoint %d at %#08x", wp.ID, wp.Address), nil
}

func (d *Debugger) cmdPrint(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: print <register>")
	}
	idx, err := asm.ParseRegister(args[0])
	if err != nil {
		return "", err
	}
	val, err := d.Register(idx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %#08x (%d)", args[0], val, val), nil
}

func (d *Debugger) cmdExamine(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("usage: x <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return "", err
	}
	word, err := d.MemoryWord(addr)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%#08x: %#08x", addr, word), nil
}

func (d *Debugger) cmdInfo(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("usage: info registers|breakpoints|watchpoints")
	}
	switch args[0] {
	case "registers", "reg":
		regs, pc := d.Registers()
		var b strings.Builder
		fmt.Fprintf(&b, "pc = %#08x\n", pc)
		for i, v := range regs {
			fmt.Fprintf(&b, "x%-2d = %#08x  ", i, v)
			if i%4 == 3 {
				b.WriteByte('\n')
			}
		}
		return b.String(), nil
	case "breakpoints", "break":
		var b strings.Builder
		for _, bp := range d.Breakpoints.All() {
			fmt.Fprintf(&b, "%d: %#08x enabled=%v hits=%d\n", bp.ID, bp.Address, bp.Enabled, bp.HitCount)
		}
		return b.String(), nil
	case "watchpoints", "watch":
		var b strings.Builder
		for _, wp := range d.Watchpoints.All() {
			fmt.Fprintf(&b, "%d: %s enabled=%v hits=%d\n", wp.ID, wp.Expression, wp.Enabled, wp.HitCount)
		}
		return b.String(), nil
	default:
		return "", fmt.Errorf("unknown info subcommand: %s", args[0])
	}
}

const helpText = `commands:
  step, s            execute one instruction
  continue, c         run until a breakpoint/watchpoint/halt
  break <addr>        set a breakpoint
  delete <id>         delete a breakpoint
  enable <id>         enable a breakpoint
  disable <id>        disable a breakpoint
  watch <addr>        watch a memory word for changes
  print <reg>         print a register (by name or x<N>)
  x <addr>            examine a memory word
  info registers      dump all registers
  info breakpoints    list breakpoints
  info watchpoints    list watchpoints
  help                show this text`
