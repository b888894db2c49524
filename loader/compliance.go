package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rv32i-emu/rv32i-emu/vm"
)

// Result reports one compliance binary's outcome.
type Result struct {
	Name   string
	Passed bool
	Err    error
	vm.ComplianceResult
}

// RunCompliance loads every rv32ui-p-* file in dir, runs each to
// termination under a fresh Machine, and classifies it by the gp/a0/a7
// convention described in spec.md §6.
func RunCompliance(dir string, memSize uint32) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loader: reading %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "rv32ui-p-") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		results = append(results, runOne(filepath.Join(dir, name), name, memSize))
	}
	return results, nil
}

func runOne(path, name string, memSize uint32) Result {
	machine, err := LoadFile(path, memSize)
	if err != nil {
		return Result{Name: name, Err: err}
	}

	cr, runErr := machine.CheckCompliance()
	result := Result{Name: name, Passed: cr.Passed, ComplianceResult: cr}
	if !errors.Is(runErr, vm.ErrSuspend) {
		result.Err = runErr
	}
	return result
}
