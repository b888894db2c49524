package debugger

import (
	"testing"

	"github.com/rv32i-emu/rv32i-emu/vm"
)

func newTestMachine(t *testing.T) *vm.Machine {
	t.Helper()
	return vm.NewMachine(vm.NewMemory(1 << 16))
}

func TestWatchpointManagerRegisterChangeDetected(t *testing.T) {
	m := newTestMachine(t)
	wm := NewWatchpointManager()
	wp := wm.AddRegister("a0", 10)

	if err := wm.Init(wp.ID, m); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, hit := wm.Check(m); hit {
		t.Fatal("no change yet, Check should not report a hit")
	}

	m.CPU.SetRegister(10, 42)
	hit, ok := wm.Check(m)
	if !ok || hit.ID != wp.ID {
		t.Fatalf("Check = %+v, %v, want a hit on watchpoint %d", hit, ok, wp.ID)
	}
	if hit.LastValue != 42 || hit.HitCount != 1 {
		t.Errorf("hit = %+v, want LastValue=42 HitCount=1", hit)
	}
}

func TestWatchpointManagerMemoryChangeDetected(t *testing.T) {
	m := newTestMachine(t)
	wm := NewWatchpointManager()
	wp := wm.AddMemory("*0x1000", 0x1000)

	if err := wm.Init(wp.ID, m); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := m.Memory.SetU32(0x1000, 0xdeadbeef); err != nil {
		t.Fatalf("SetU32: %v", err)
	}

	hit, ok := wm.Check(m)
	if !ok || hit.LastValue != 0xdeadbeef {
		t.Fatalf("Check = %+v, %v, want LastValue=0xdeadbeef", hit, ok)
	}
}

func TestWatchpointManagerDisabledIgnored(t *testing.T) {
	m := newTestMachine(t)
	wm := NewWatchpointManager()
	wp := wm.AddRegister("a0", 10)
	wm.Init(wp.ID, m)
	wm.SetEnabled(wp.ID, false)

	m.CPU.SetRegister(10, 1)
	if _, ok := wm.Check(m); ok {
		t.Error("a disabled watchpoint should not fire")
	}
}

func TestWatchpointManagerInvalidRegisterSkipped(t *testing.T) {
	m := newTestMachine(t)
	wm := NewWatchpointManager()
	wp := wm.AddRegister("bad", 200)

	if err := wm.Init(wp.ID, m); err == nil {
		t.Fatal("expected Init to fail for an out-of-range register")
	}

	if _, ok := wm.Check(m); ok {
		t.Error("a watchpoint on an invalid register should never report a hit")
	}
}

func TestWatchpointManagerDeleteAndCount(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddRegister("a0", 10)
	wm.AddMemory("*0x1000", 0x1000)

	if wm.Count() != 2 {
		t.Errorf("Count() = %d, want 2", wm.Count())
	}
	if err := wm.Delete(wp.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if wm.Count() != 1 {
		t.Errorf("Count() after Delete = %d, want 1", wm.Count())
	}
	if err := wm.Delete(wp.ID); err == nil {
		t.Error("deleting an already-deleted watchpoint should error")
	}

	wm.Clear()
	if wm.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", wm.Count())
	}
}
