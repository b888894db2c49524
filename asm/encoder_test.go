package asm

import (
	"encoding/binary"
	"testing"

	"github.com/rv32i-emu/rv32i-emu/vm"
)

func wordAt(image []byte, addr uint32) uint32 {
	return binary.LittleEndian.Uint32(image[addr : addr+4])
}

func TestAssembleADDIRoundTripsThroughDecode(t *testing.T) {
	image, err := Assemble("addi t0, zero, 5\n", "test.s")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	inst, err := vm.Decode(wordAt(image, 0))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := vm.Inst{Op: vm.OpADDI, Rd: 5, Rs1: 0, Imm: 5}
	if inst != want {
		t.Errorf("decoded %+v, want %+v", inst, want)
	}
}

func TestAssembleEachFamilyRoundTrips(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   vm.Inst
	}{
		{"lui", "lui a0, 0x12345\n", vm.Inst{Op: vm.OpLUI, Rd: 10, Imm: 0x12345000}},
		{"auipc", "auipc a0, 0x1\n", vm.Inst{Op: vm.OpAUIPC, Rd: 10, Imm: 0x1000}},
		{"add", "add t2, t0, t1\n", vm.Inst{Op: vm.OpADD, Rd: 7, Rs1: 5, Rs2: 6}},
		{"sub", "sub t2, t0, t1\n", vm.Inst{Op: vm.OpSUB, Rd: 7, Rs1: 5, Rs2: 6}},
		{"slli", "slli t0, t0, 3\n", vm.Inst{Op: vm.OpSLLI, Rd: 5, Rs1: 5, Imm: 3}},
		{"srai", "srai t0, t0, 3\n", vm.Inst{Op: vm.OpSRAI, Rd: 5, Rs1: 5, Imm: 3}},
		{"sw", "sw a0, 4(sp)\n", vm.Inst{Op: vm.OpSW, Rs1: 2, Rs2: 10, Imm: 4}},
		{"lw", "lw a0, 4(sp)\n", vm.Inst{Op: vm.OpLW, Rd: 10, Rs1: 2, Imm: 4}},
		{"jalr", "jalr ra, a0, 0\n", vm.Inst{Op: vm.OpJALR, Rd: 1, Rs1: 10, Imm: 0}},
		{"ecall", "ecall\n", vm.Inst{Op: vm.OpECALL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image, err := Assemble(tt.source, "test.s")
			if err != nil {
				t.Fatalf("Assemble(%q): %v", tt.source, err)
			}
			got, err := vm.Decode(wordAt(image, 0))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("decoded %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAssembleBranchToForwardLabel(t *testing.T) {
	src := "beq t0, t1, target\naddi t0, zero, 0\ntarget:\naddi t1, zero, 1\n"
	image, err := Assemble(src, "test.s")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	inst, err := vm.Decode(wordAt(image, 0))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if inst.Op != vm.OpBEQ || inst.Imm != 8 {
		t.Errorf("decoded %+v, want BEQ with imm 8 (target is 2 instructions ahead)", inst)
	}
}

func TestAssembleWordDirectiveEmitsLittleEndian(t *testing.T) {
	image, err := Assemble(".word 0xdeadbeef\n", "test.s")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(image) != 4 {
		t.Fatalf("image length = %d, want 4", len(image))
	}
	if wordAt(image, 0) != 0xdeadbeef {
		t.Errorf("word = %#x, want 0xdeadbeef", wordAt(image, 0))
	}
}

func TestAssembleByteDirective(t *testing.T) {
	image, err := Assemble(".byte 1, 2, 3\n", "test.s")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []byte{1, 2, 3}
	if len(image) != len(want) {
		t.Fatalf("image length = %d, want %d", len(image), len(want))
	}
	for i := range want {
		if image[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, image[i], want[i])
		}
	}
}

func TestAssembleUndefinedLabelErrors(t *testing.T) {
	_, err := Assemble("beq t0, t1, nowhere\n", "test.s")
	if err == nil {
		t.Fatalf("expected an undefined-label error, got none")
	}
}

func TestAssembleUnknownMnemonicErrors(t *testing.T) {
	_, err := Assemble("frobnicate t0, t1, t2\n", "test.s")
	if err == nil {
		t.Fatalf("expected an unknown-mnemonic error, got none")
	}
}

func TestParseRegisterAcceptsXNAndABIAliases(t *testing.T) {
	for _, pair := range [][2]string{{"x10", "a0"}, {"x2", "sp"}, {"x1", "ra"}, {"x0", "zero"}} {
		a, err := parseRegister(pair[0])
		if err != nil {
			t.Fatalf("parseRegister(%q): %v", pair[0], err)
		}
		b, err := parseRegister(pair[1])
		if err != nil {
			t.Fatalf("parseRegister(%q): %v", pair[1], err)
		}
		if a != b {
			t.Errorf("%s = %d, %s = %d, want equal", pair[0], a, pair[1], b)
		}
	}
}
