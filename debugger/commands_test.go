package debugger

import (
	"strings"
	"testing"
)

func TestExecuteCommandBreakAndContinue(t *testing.T) {
	d := newDebugger()

	if _, err := d.ExecuteCommand("break 0x4"); err != nil {
		t.Fatalf("break: %v", err)
	}
	out, err := d.ExecuteCommand("continue")
	if err != nil {
		t.Fatalf("continue: %v", err)
	}
	if !strings.Contains(out, "breakpoint") {
		t.Errorf("output = %q, want it to mention a breakpoint", out)
	}
}

func TestExecuteCommandPrintRegister(t *testing.T) {
	d := newDebugger()
	d.ExecuteCommand("step")

	out, err := d.ExecuteCommand("print a0")
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out, "5") {
		t.Errorf("output = %q, want it to mention 5", out)
	}
}

func TestExecuteCommandUnknown(t *testing.T) {
	d := newDebugger()
	if _, err := d.ExecuteCommand("frobnicate"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestExecuteCommandEmptyRepeatsLast(t *testing.T) {
	d := newDebugger()
	d.ExecuteCommand("step")
	out, err := d.ExecuteCommand("")
	if err != nil {
		t.Fatalf("repeated step: %v", err)
	}
	if !strings.Contains(out, "stepped") {
		t.Errorf("output = %q, want it to look like a step result", out)
	}
}

func TestExecuteCommandInfoRegisters(t *testing.T) {
	d := newDebugger()
	out, err := d.ExecuteCommand("info registers")
	if err != nil {
		t.Fatalf("info registers: %v", err)
	}
	if !strings.Contains(out, "pc =") {
		t.Errorf("output = %q, want it to include pc", out)
	}
}

func TestExecuteCommandDeleteUnknownID(t *testing.T) {
	d := newDebugger()
	if _, err := d.ExecuteCommand("delete 99"); err == nil {
		t.Error("expected an error deleting an unknown breakpoint")
	}
}

func TestExecuteCommandWatch(t *testing.T) {
	d := newDebugger()
	out, err := d.ExecuteCommand("watch 0x100")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if !strings.Contains(out, "watchpoint") {
		t.Errorf("output = %q, want it to mention a watchpoint", out)
	}
}

func TestExecuteCommandHelp(t *testing.T) {
	d := newDebugger()
	out, err := d.ExecuteCommand("help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(out, "commands:") {
		t.Errorf("help output missing header: %q", out)
	}
}
