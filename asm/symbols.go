package asm

import "fmt"

// Symbol is a label bound to an address.
type Symbol struct {
	Name    string
	Value   uint32
	Defined bool
	Pos     Position
}

// SymbolTable tracks labels across the two assembly passes: the first
// pass walks the source computing each label's address, the second pass
// resolves operands that reference a label before or after its
// definition.
type SymbolTable struct {
	symbols map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define records name at value. Redefining an already-defined label is
// an error; RV32I source has no reason to rebind a label.
func (st *SymbolTable) Define(name string, value uint32, pos Position) error {
	if sym, exists := st.symbols[name]; exists && sym.Defined {
		return fmt.Errorf("label %q already defined at %s", name, sym.Pos)
	}
	st.symbols[name] = &Symbol{Name: name, Value: value, Defined: true, Pos: pos}
	return nil
}

// Get returns a defined label's value, or an error if it was never
// defined anywhere in the source.
func (st *SymbolTable) Get(name string) (uint32, error) {
	sym, exists := st.symbols[name]
	if !exists || !sym.Defined {
		return 0, fmt.Errorf("undefined label: %q", name)
	}
	return sym.Value, nil
}

func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, exists := st.symbols[name]
	return sym, exists
}
