// Package application runs the interactive compare loop as a bubbletea
// program over one loaded table.
package application

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/JonMunkholm/instrumentdiff/internal/core"
	"github.com/JonMunkholm/instrumentdiff/internal/report"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type compareMode int

const (
	compareByInstrument compareMode = iota
	compareByIndex
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7a89"))
)

// Model is the bubbletea model of the interactive loop.
type Model struct {
	comparator *core.Comparator
	renderer   *report.Renderer

	menu   *Menu
	cursor int

	prompting bool
	mode      compareMode
	inputs    [2]textinput.Model
	focus     int

	output   string
	errMsg   string
	quitting bool
}

// NewModel returns a model positioned on the main menu.
func NewModel(c *core.Comparator, r *report.Renderer) *Model {
	m := &Model{
		comparator: c,
		renderer:   r,
		menu:       buildMenuTree(),
	}
	for i := range m.inputs {
		in := textinput.New()
		in.CharLimit = 256
		m.inputs[i] = in
	}
	m.showInstruments()
	return m
}

// Run starts the program on in/out and blocks until the user quits.
func Run(c *core.Comparator, r *report.Renderer, in io.Reader, out io.Writer) error {
	_, err := tea.NewProgram(NewModel(c, r), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return fmt.Errorf("interactive mode: %w", err)
	}
	return nil
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if key.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	if m.prompting {
		return m, m.updatePrompt(key)
	}
	return m, m.updateMenu(key)
}

func (m *Model) updateMenu(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.menu.Items)-1 {
			m.cursor++
		}
	case "esc", "backspace":
		if m.menu.Parent != nil {
			m.menu = m.menu.Parent
			m.cursor = 0
		}
	case "q":
		m.quitting = true
		return tea.Quit
	case "enter":
		item := m.menu.Items[m.cursor]
		if item.Submenu != nil {
			m.menu = item.Submenu
			m.cursor = 0
			return nil
		}
		if item.Action != nil {
			return item.Action(m)
		}
	}
	return nil
}

func (m *Model) startPrompt(mode compareMode) tea.Cmd {
	m.prompting = true
	m.mode = mode
	m.focus = 0
	m.errMsg = ""

	label := "instrument"
	if mode == compareByIndex {
		label = "row index"
	}
	m.inputs[0].Prompt = "First " + label + ": "
	m.inputs[1].Prompt = "Second " + label + ": "
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	return m.inputs[0].Focus()
}

func (m *Model) updatePrompt(key tea.KeyMsg) tea.Cmd {
	switch key.Type {
	case tea.KeyEsc:
		m.prompting = false
		return nil
	case tea.KeyEnter:
		if m.focus == 0 {
			m.inputs[0].Blur()
			m.focus = 1
			return m.inputs[1].Focus()
		}
		m.inputs[1].Blur()
		m.prompting = false
		m.runComparison(
			strings.TrimSpace(m.inputs[0].Value()),
			strings.TrimSpace(m.inputs[1].Value()),
		)
		return nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(key)
	return cmd
}

func (m *Model) runComparison(first, second string) {
	var (
		c   *core.Comparison
		err error
	)
	switch m.mode {
	case compareByIndex:
		i, errI := strconv.Atoi(first)
		j, errJ := strconv.Atoi(second)
		if errI != nil || errJ != nil {
			m.errMsg = "Row index must be a number"
			return
		}
		c, err = m.comparator.CompareByIndex(i, j)
	default:
		c, err = m.comparator.CompareByInstrument(first, second)
	}

	if err != nil {
		if !core.IsLookupError(err) {
			slog.Error("comparison failed", "first", first, "second", second, "error", err)
		}
		m.errMsg = core.FormatUserError(err) + ": " + err.Error()
		return
	}

	var buf bytes.Buffer
	if err := m.renderer.Comparison(&buf, c); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.output = buf.String()
}

func (m *Model) showInstruments() {
	var buf bytes.Buffer
	_ = m.renderer.Instruments(&buf, m.comparator.Instruments())
	m.errMsg = ""
	m.output = buf.String()
}

func (m *Model) View() string {
	if m.quitting {
		return "Exiting...\n"
	}

	var b strings.Builder
	b.WriteString(m.output)
	if !strings.HasSuffix(m.output, "\n") {
		b.WriteByte('\n')
	}
	if m.errMsg != "" {
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if m.prompting {
		for i := range m.inputs {
			b.WriteString(m.inputs[i].View())
			b.WriteByte('\n')
		}
		b.WriteString(helpStyle.Render("enter: next/confirm  esc: cancel"))
		b.WriteByte('\n')
		return b.String()
	}

	b.WriteString(titleStyle.Render(m.menu.Title))
	b.WriteByte('\n')
	for i, item := range m.menu.Items {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		b.WriteString(cursor + item.Label + "\n")
	}
	b.WriteString(helpStyle.Render("↑/↓: move  enter: select  esc: back  q: quit"))
	b.WriteByte('\n')
	return b.String()
}
