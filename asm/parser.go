package asm

import "strings"

// Instruction is a parsed mnemonic with its raw operand text, not yet
// resolved against the symbol table.
type Instruction struct {
	Label    string
	Mnemonic string
	Operands []string
	Pos      Position
	Address  uint32
}

// Directive is a parsed .word/.byte with its raw operand text.
type Directive struct {
	Label   string
	Name    string
	Args    []string
	Pos     Position
	Address uint32
}

// Item is one line of parsed source: either an Instruction or a
// Directive, never both.
type Item struct {
	Inst *Instruction
	Dir  *Directive
}

// Program is the output of pass one: every line in source order plus
// the symbol table populated with every label's address.
type Program struct {
	Items   []*Item
	Symbols *SymbolTable
}

// Parser turns a token stream into a Program. It computes addresses as
// it goes (pass one of the two-pass assembly described in SPEC_FULL.md
// §4.5): every instruction is 4 bytes, .word is 4 bytes per argument,
// .byte is 1 byte per argument.
type Parser struct {
	tokens       []Token
	pos          int
	current      Token
	peek         Token
	errors       *ErrorList
	symbols      *SymbolTable
	address      uint32
}

// NewParser tokenizes input and prepares a Parser over it.
func NewParser(input, filename string) (*Parser, *ErrorList) {
	lexer := NewLexer(input, filename)
	tokens, lexErrs := lexer.TokenizeAll()

	p := &Parser{
		tokens:  tokens,
		errors:  &ErrorList{},
		symbols: NewSymbolTable(),
	}
	p.errors.Errors = append(p.errors.Errors, lexErrs.Errors...)
	p.advance()
	p.advance()
	return p, p.errors
}

func (p *Parser) advance() {
	p.current = p.peek
	if p.pos < len(p.tokens) {
		p.peek = p.tokens[p.pos]
		p.pos++
	} else {
		p.peek = Token{Type: TokenEOF, Pos: p.current.Pos}
	}
}

func (p *Parser) skipNewlines() {
	for p.current.Type == TokenNewline {
		p.advance()
	}
}

// Parse runs pass one and returns the Program, or an error if any
// lexical or syntax error was collected.
func (p *Parser) Parse() (*Program, error) {
	program := &Program{Symbols: p.symbols}

	p.skipNewlines()
	for p.current.Type != TokenEOF {
		var labels []string
		for p.current.Type == TokenIdentifier && p.peek.Type == TokenColon {
			labels = append(labels, p.current.Literal)
			p.advance() // identifier
			p.advance() // colon
		}
		for _, label := range labels {
			if err := p.symbols.Define(label, p.address, p.current.Pos); err != nil {
				p.errors.Add(p.current.Pos, err.Error())
			}
		}

		if p.current.Type == TokenNewline || p.current.Type == TokenEOF {
			p.skipNewlines()
			continue
		}

		label := ""
		if len(labels) > 0 {
			label = labels[0]
		}

		switch p.current.Type {
		case TokenDirective:
			item := p.parseDirective(label)
			program.Items = append(program.Items, item)
		case TokenIdentifier:
			item := p.parseInstruction(label)
			program.Items = append(program.Items, item)
		default:
			p.errors.Add(p.current.Pos, "expected instruction, directive, or label")
			p.advance()
		}

		p.skipNewlines()
	}

	if p.errors.HasErrors() {
		return program, p.errors
	}
	return program, nil
}

func (p *Parser) parseOperands() []string {
	var operands []string
	var sb strings.Builder

	flush := func() {
		if sb.Len() > 0 {
			operands = append(operands, sb.String())
			sb.Reset()
		}
	}

	for p.current.Type != TokenNewline && p.current.Type != TokenEOF {
		switch p.current.Type {
		case TokenComma:
			flush()
		default:
			sb.WriteString(p.current.Literal)
		}
		p.advance()
	}
	flush()
	return operands
}

func (p *Parser) parseInstruction(label string) *Item {
	pos := p.current.Pos
	mnemonic := p.current.Literal
	addr := p.address
	p.advance()

	operands := p.parseOperands()
	p.address += 4

	return &Item{Inst: &Instruction{
		Label:    label,
		Mnemonic: mnemonic,
		Operands: operands,
		Pos:      pos,
		Address:  addr,
	}}
}

func (p *Parser) parseDirective(label string) *Item {
	pos := p.current.Pos
	name := strings.TrimPrefix(p.current.Literal, ".")
	addr := p.address
	p.advance()

	args := p.parseOperands()

	switch name {
	case "word":
		p.address += 4 * uint32(len(args))
	case "byte":
		p.address += uint32(len(args))
	default:
		p.errors.Add(pos, "unknown directive: ."+name)
	}

	return &Item{Dir: &Directive{
		Label:   label,
		Name:    name,
		Args:    args,
		Pos:     pos,
		Address: addr,
	}}
}
