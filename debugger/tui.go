package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the text interface for the debugger: a register panel, a
// memory hex-dump panel, a disassembly panel, a breakpoints/watchpoints
// panel, an output log, and a command input line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout      *tview.Flex
	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	MemoryAddress uint32
}

// NewTUI builds a TUI around d.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{
		Debugger: d,
		App:      tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

// NewTUIWithScreen builds a TUI backed by an explicit tcell.Screen, for
// tests driven by tcell.SimulationScreen instead of a real terminal.
func NewTUIWithScreen(d *Debugger, screen tcell.Screen) *TUI {
	t := &TUI{
		Debugger: d,
		App:      tview.NewApplication().SetScreen(screen),
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	leftPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 1, false).
		AddItem(t.MemoryView, 0, 1, false)

	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 10, 0, false).
		AddItem(t.BreakpointsView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(leftPanel, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

// handleCommand runs on tview's event loop goroutine; it must return
// immediately, so the actual command execution (which can block for a
// long "continue") happens on its own goroutine.
func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	t.CommandInput.SetText("")
	go t.executeCommand(cmd)
}

// executeCommand runs cmd against the debugger and schedules the view
// refresh back onto the tview event loop via QueueUpdateDraw.
func (t *TUI) executeCommand(cmd string) {
	output, err := t.Debugger.ExecuteCommand(cmd)
	t.App.QueueUpdateDraw(func() {
		if err != nil {
			t.WriteOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
		} else if output != "" {
			t.WriteOutput(output + "\n")
		}
		t.refreshViews()
	})
}

func (t *TUI) WriteOutput(text string) {
	fmt.Fprint(t.OutputView, text)
	t.OutputView.ScrollToEnd()
}

func (t *TUI) refreshViews() {
	t.updateRegisterView()
	t.updateMemoryView()
	t.updateDisassemblyView()
	t.updateBreakpointsView()
}

// RefreshAll updates every panel and redraws. Only call this directly
// when not already inside a QueueUpdateDraw callback.
func (t *TUI) RefreshAll() {
	t.refreshViews()
	t.App.Draw()
}

func (t *TUI) updateRegisterView() {
	regs, pc := t.Debugger.Registers()

	var lines []string
	lines = append(lines, fmt.Sprintf("pc: %#08x", pc))
	for i := 0; i < 32; i += 4 {
		lines = append(lines, fmt.Sprintf("x%-2d: %#08x  x%-2d: %#08x  x%-2d: %#08x  x%-2d: %#08x",
			i, regs[i], i+1, regs[i+1], i+2, regs[i+2], i+3, regs[i+3]))
	}
	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateMemoryView() {
	addr := t.MemoryAddress
	var lines []string
	for row := 0; row < 8; row++ {
		rowAddr := addr + uint32(row*16)
		data, err := t.Debugger.MemoryBytes(rowAddr, 16)
		if err != nil {
			lines = append(lines, fmt.Sprintf("%#08x: <out of bounds>", rowAddr))
			continue
		}
		var hexBytes []string
		var ascii []byte
		for _, b := range data {
			hexBytes = append(hexBytes, fmt.Sprintf("%02x", b))
			if b >= 32 && b < 127 {
				ascii = append(ascii, b)
			} else {
				ascii = append(ascii, '.')
			}
		}
		lines = append(lines, fmt.Sprintf("%#08x: %s  %s", rowAddr, strings.Join(hexBytes, " "), string(ascii)))
	}
	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateDisassemblyView() {
	_, pc := t.Debugger.Registers()
	start := pc
	if start >= 16 {
		start -= 16
	} else {
		start = 0
	}

	lines, err := t.Debugger.DisassembleAt(start, 12)
	if err != nil {
		t.DisassemblyView.SetText(fmt.Sprintf("disassembly error: %v", err))
		return
	}

	for i, addr := 0, start; i < len(lines); i, addr = i+1, addr+4 {
		if addr == pc {
			lines[i] = "[yellow]-> " + lines[i] + "[white]"
		} else {
			lines[i] = "   " + lines[i]
		}
	}
	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) updateBreakpointsView() {
	var lines []string
	lines = append(lines, "[yellow]Breakpoints:[white]")
	for _, bp := range t.Debugger.Breakpoints.All() {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		lines = append(lines, fmt.Sprintf("  %d: %#08x %s (hits: %d)", bp.ID, bp.Address, status, bp.HitCount))
	}

	lines = append(lines, "", "[yellow]Watchpoints:[white]")
	for _, wp := range t.Debugger.Watchpoints.All() {
		lines = append(lines, fmt.Sprintf("  %d: %s = %#08x (hits: %d)", wp.ID, wp.Expression, wp.LastValue, wp.HitCount))
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI event loop; it blocks until the application stops.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.WriteOutput("rv32i debugger. Press F11 to step, F5 to continue, type 'help' for commands.\n")
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}

func (t *TUI) Stop() {
	t.App.Stop()
}
