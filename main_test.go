package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestAsmCommandWritesImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.s")
	out := filepath.Join(dir, "out.bin")

	if err := os.WriteFile(src, []byte("addi a0, zero, 5\necall\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	root := newRootCmd()
	root.SetArgs([]string{"asm", src, out})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	image, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile(out): %v", err)
	}
	if len(image) != 8 {
		t.Errorf("len(image) = %d, want 8", len(image))
	}
}

func TestRunCommandReportsFailureExit(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.s")
	bin := filepath.Join(dir, "out.bin")

	if err := os.WriteFile(src, []byte("addi a0, zero, 7\nadd a7, zero, zero\naddi a7, a7, 93\necall\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	root := newRootCmd()
	root.SetArgs([]string{"asm", src, bin})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	if err := root.Execute(); err != nil {
		t.Fatalf("assembling fixture: %v", err)
	}

	root = newRootCmd()
	root.SetArgs([]string{"run", bin})
	root.SetOut(&buf)
	root.SetErr(&buf)

	if err := root.Execute(); err == nil {
		t.Fatal("expected run to report a non-zero a0 as a failure")
	}
}

func TestTestCommandReportsAllPassed(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "rv32ui-p-addi.s")
	if err := os.WriteFile(src, []byte(
		"addi gp, zero, 1\naddi a0, zero, 0\naddi a7, zero, 93\necall\n",
	), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	root := newRootCmd()
	root.SetArgs([]string{"asm", src, filepath.Join(dir, "rv32ui-p-addi")})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	if err := root.Execute(); err != nil {
		t.Fatalf("assembling fixture: %v", err)
	}
	if err := os.Remove(src); err != nil {
		t.Fatalf("Remove(src): %v", err)
	}

	root = newRootCmd()
	root.SetArgs([]string{"test", dir})
	root.SetOut(&buf)
	root.SetErr(&buf)

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v, output: %s", err, buf.String())
	}
}
