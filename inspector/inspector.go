// Package inspector is an interactive single-step debugger for the
// engine, rendered as a bubbletea TUI.
package inspector

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"vm15/engine"
)

const wordsPerRow = 8

type model struct {
	e      *engine.Engine
	prevIP uint16
	err    error
}

// Init performs no initial command: the engine is already loaded and
// positioned by the caller before Run starts the program.
func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "q":
		return m, tea.Quit
	case " ", "j":
		m.prevIP = m.e.IP
		if err := m.e.Step(); err != nil {
			m.err = err
			return m, tea.Quit
		}
	}
	return m, nil
}

// renderRow renders one row of wordsPerRow memory words as a line,
// bracketing the word the instruction pointer currently sits on.
func (m model) renderRow(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := uint16(0); i < wordsPerRow; i++ {
		addr := start + i
		w := m.e.Memory.Read(addr)
		if addr == m.e.IP {
			s += fmt.Sprintf("[%05d] ", w)
		} else {
			s += fmt.Sprintf(" %05d  ", w)
		}
	}
	return s
}

func (m model) memoryView() string {
	header := "addr  | "
	for i := 0; i < wordsPerRow; i++ {
		header += fmt.Sprintf("  %d   ", i)
	}

	rows := []string{header}
	base := (m.e.IP / wordsPerRow) * wordsPerRow
	start := int(base) - wordsPerRow*2
	if start < 0 {
		start = 0
	}
	for i := 0; i < 5; i++ {
		rows = append(rows, m.renderRow(uint16(start+i*wordsPerRow)))
	}
	return strings.Join(rows, "\n")
}

func (m model) status() string {
	regs := m.e.Registers
	return fmt.Sprintf(`
IP: %05d (%05d)
r0: %05d  r1: %05d  r2: %05d  r3: %05d
r4: %05d  r5: %05d  r6: %05d  r7: %05d
stack depth: %d
op count: %d
`,
		m.e.IP, m.prevIP,
		regs[0], regs[1], regs[2], regs[3],
		regs[4], regs[5], regs[6], regs[7],
		len(m.e.Stack), m.e.OpCount,
	)
}

func (m model) View() string {
	inst, err := engine.Decode(m.e.Memory, m.e.IP)
	var instView string
	if err != nil {
		instView = fmt.Sprintf("decode error at %05d: %v", m.e.IP, err)
	} else {
		instView = spew.Sdump(inst)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.memoryView(),
			m.status(),
		),
		"",
		instView,
	)
}

// Run starts an interactive single-step TUI over e. Space or "j" steps the
// engine one instruction; "q" quits. Returns the engine's terminal error,
// if any (engine.ErrHalt on a clean halt, nil if quit before halting).
func Run(e *engine.Engine) error {
	result, err := tea.NewProgram(model{e: e}).Run()
	if err != nil {
		return err
	}
	return result.(model).err
}
