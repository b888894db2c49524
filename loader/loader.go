package loader

import (
	"fmt"
	"os"

	"github.com/rv32i-emu/rv32i-emu/vm"
)

// LoadFile reads the raw binary image at path and builds a Machine over
// it, placed at address 0 with memSize bytes of memory (zero-padded
// past the image, per spec.md's flat memory model).
func LoadFile(path string, memSize uint32) (*vm.Machine, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is an operator-supplied CLI argument
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	return LoadImage(data, memSize)
}

// LoadImage builds a Machine over image, placed at address 0.
func LoadImage(image []byte, memSize uint32) (*vm.Machine, error) {
	mem, err := vm.NewMemoryFromImage(image, memSize)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	return vm.NewMachine(mem), nil
}
