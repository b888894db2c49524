package debugger

import (
	"fmt"
	"sync"

	"github.com/rv32i-emu/rv32i-emu/vm"
)

// Watchpoint monitors a register or memory word for a value change.
// Detection is by comparing against the last observed value on each
// Check call; there is no integration with the memory access path, so
// a watchpoint can't distinguish a read from a write.
type Watchpoint struct {
	ID         int
	Expression string
	Address    uint32
	IsRegister bool
	Register   uint8
	Enabled    bool
	LastValue  uint32
	HitCount   int
}

// WatchpointManager manages the watchpoint set for a debugging session.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddRegister watches register reg, identified by expression for
// display (e.g. "a0").
func (wm *WatchpointManager) AddRegister(expression string, reg uint8) *Watchpoint {
	return wm.add(expression, 0, true, reg)
}

// AddMemory watches the 32-bit word at address.
func (wm *WatchpointManager) AddMemory(expression string, address uint32) *Watchpoint {
	return wm.add(expression, address, false, 0)
}

func (wm *WatchpointManager) add(expression string, address uint32, isRegister bool, reg uint8) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Expression: expression,
		Address:    address,
		IsRegister: isRegister,
		Register:   reg,
		Enabled:    true,
	}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

func (wm *WatchpointManager) Delete(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

func (wm *WatchpointManager) SetEnabled(id int, enabled bool) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = enabled
	return nil
}

func (wm *WatchpointManager) Get(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.watchpoints[id]
}

func (wm *WatchpointManager) All() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}
	return result
}

func (wm *WatchpointManager) currentValue(wp *Watchpoint, machine *vm.Machine) (uint32, error) {
	if wp.IsRegister {
		return machine.CPU.GetRegister(wp.Register)
	}
	return machine.Memory.GetU32(wp.Address)
}

// Check returns the first enabled watchpoint whose value differs from
// what it held last time Check (or Init) observed it.
func (wm *WatchpointManager) Check(machine *vm.Machine) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}
		current, err := wm.currentValue(wp, machine)
		if err != nil {
			continue
		}
		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}
	return nil, false
}

// Init seeds id's LastValue from the current machine state, so the
// first Check call after adding a watchpoint doesn't spuriously fire
// on the value it already held.
func (wm *WatchpointManager) Init(id int, machine *vm.Machine) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	value, err := wm.currentValue(wp, machine)
	if err != nil {
		return fmt.Errorf("failed to initialize watchpoint: %w", err)
	}
	wp.LastValue = value
	return nil
}

func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}
