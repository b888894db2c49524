package vm

import "testing"

func TestX0ReadsZero(t *testing.T) {
	cpu := NewCPU()
	if err := cpu.SetRegister(0, 0xdeadbeef); err != nil {
		t.Fatalf("SetRegister(0): %v", err)
	}
	v, err := cpu.GetRegister(0)
	if err != nil {
		t.Fatalf("GetRegister(0): %v", err)
	}
	if v != 0 {
		t.Errorf("x0 = %#x, want 0 (writes to x0 must be silently discarded)", v)
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	cpu := NewCPU()
	for i := uint8(1); i <= 31; i++ {
		if err := cpu.SetRegister(i, uint32(i)*0x1001); err != nil {
			t.Fatalf("SetRegister(%d): %v", i, err)
		}
	}
	for i := uint8(1); i <= 31; i++ {
		v, err := cpu.GetRegister(i)
		if err != nil {
			t.Fatalf("GetRegister(%d): %v", i, err)
		}
		if want := uint32(i) * 0x1001; v != want {
			t.Errorf("x%d = %#x, want %#x", i, v, want)
		}
	}
}

func TestInvalidRegisterIndex(t *testing.T) {
	cpu := NewCPU()
	if _, err := cpu.GetRegister(32); err != ErrInvalidRegister {
		t.Errorf("GetRegister(32) error = %v, want ErrInvalidRegister", err)
	}
	if err := cpu.SetRegister(200, 1); err != ErrInvalidRegister {
		t.Errorf("SetRegister(200) error = %v, want ErrInvalidRegister", err)
	}
}

func TestPC(t *testing.T) {
	cpu := NewCPU()
	if cpu.PC() != 0 {
		t.Errorf("initial PC = %#x, want 0", cpu.PC())
	}
	cpu.SetPC(0x8000)
	if cpu.PC() != 0x8000 {
		t.Errorf("PC = %#x, want 0x8000", cpu.PC())
	}
}

func TestSnapshotHidesX0Writes(t *testing.T) {
	cpu := NewCPU()
	cpu.x[0] = 0xff // only reachable by poking the array directly; a real write can never land here
	snap := cpu.Snapshot()
	if snap[0] != 0 {
		t.Errorf("Snapshot()[0] = %#x, want 0", snap[0])
	}
}
