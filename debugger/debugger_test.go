package debugger

import (
	"errors"
	"testing"

	"github.com/rv32i-emu/rv32i-emu/config"
	"github.com/rv32i-emu/rv32i-emu/vm"
)

func encodeI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return (uint32(imm)&0xfff)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func assembleSequence(words ...uint32) *vm.Machine {
	img := make([]byte, len(words)*4)
	for i, w := range words {
		img[i*4] = byte(w)
		img[i*4+1] = byte(w >> 8)
		img[i*4+2] = byte(w >> 16)
		img[i*4+3] = byte(w >> 24)
	}
	mem, err := vm.NewMemoryFromImage(img, 1<<16)
	if err != nil {
		panic(err)
	}
	return vm.NewMachine(mem)
}

func newDebugger() *Debugger {
	// addi a0, zero, 5 ; addi a0, a0, 1 ; ecall
	m := assembleSequence(
		encodeI(0x13, 0, 10, 0, 5),
		encodeI(0x13, 0, 10, 10, 1),
		encodeI(0x73, 0, 0, 0, 0),
	)
	return New(m, config.DefaultConfig())
}

func TestDebuggerStepAdvancesOneInstruction(t *testing.T) {
	d := newDebugger()
	if err := d.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	val, err := d.Register(10)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if val != 5 {
		t.Errorf("a0 = %d, want 5", val)
	}
}

func TestDebuggerContinueStopsAtBreakpoint(t *testing.T) {
	d := newDebugger()
	d.SetBreakpoint(4)

	reason, err := d.Continue()
	if err != nil {
		t.Fatalf("Continue: %v", err)
	}
	if reason == "" {
		t.Fatal("expected a non-empty stop reason")
	}
	_, pc := d.Registers()
	if pc != 4 {
		t.Errorf("pc = %#x, want 0x4", pc)
	}
}

func TestDebuggerContinueRunsToHalt(t *testing.T) {
	d := newDebugger()

	_, err := d.Continue()
	if !errors.Is(err, vm.ErrSuspend) {
		t.Fatalf("Continue error = %v, want ErrSuspend", err)
	}

	val, _ := d.Register(10)
	if val != 6 {
		t.Errorf("a0 = %d, want 6", val)
	}
}

func TestDebuggerMemoryAndDisassembleAt(t *testing.T) {
	d := newDebugger()

	word, err := d.MemoryWord(0)
	if err != nil {
		t.Fatalf("MemoryWord: %v", err)
	}
	if word == 0 {
		t.Error("expected a non-zero first instruction word")
	}

	lines, err := d.DisassembleAt(0, 3)
	if err != nil {
		t.Fatalf("DisassembleAt: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
}

func TestHaltedClassification(t *testing.T) {
	if !Halted(vm.ErrSuspend) {
		t.Error("ErrSuspend should be considered a halt")
	}
	if !Halted(vm.ErrUnknownInst) {
		t.Error("ErrUnknownInst should be considered a halt")
	}
	if Halted(errors.New("some debugger command error")) {
		t.Error("an arbitrary error should not be considered a machine halt")
	}
}
