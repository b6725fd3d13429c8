package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/polycall"
	"github.com/wippyai/polycall/foreign"
	"github.com/wippyai/polycall/value"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	langStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type interactiveModel struct {
	err      error
	result   value.Value
	rt       *polycall.Runtime
	title    string
	funcs    []foreign.FunctionInfo
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
	loaded   bool
}

type loadedMsg struct {
	err   error
	funcs []foreign.FunctionInfo
}

type callResultMsg struct {
	err    error
	result value.Value
}

func newInteractiveModel(rt *polycall.Runtime, title string) *interactiveModel {
	return &interactiveModel{
		rt:    rt,
		title: title,
		state: stateSelectFunc,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.listFunctions
}

func (m *interactiveModel) listFunctions() tea.Msg {
	funcs, err := m.rt.Functions()
	return loadedMsg{funcs: funcs, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs
				return m, textinput.Blink

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.reset()
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			if m.state != stateSelectFunc {
				m.reset()
			}
		}

	case loadedMsg:
		m.loaded = true
		m.err = msg.err
		m.funcs = msg.funcs

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateSelectFunc
	m.inputs = nil
	m.result = nil
	m.err = nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	count := len(f.Params)
	if f.Variadic {
		count++
	}
	m.inputs = make([]textinput.Model, count)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Width = 40
		if i < len(f.Params) {
			p := f.Params[i]
			ti.Prompt = p.Name + ": "
			ti.Placeholder = placeholder(p)
		} else {
			ti.Prompt = "rest: "
			ti.Placeholder = "kind:text, space separated"
		}
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func placeholder(p foreign.Param) string {
	if !p.Typed {
		return "kind:text"
	}
	return p.Tag.String()
}

func (m *interactiveModel) callFunction() tea.Msg {
	f := m.funcs[m.selected]

	var args []value.Value
	for i, input := range m.inputs {
		if i >= len(f.Params) {
			for _, field := range strings.Fields(input.Value()) {
				v, err := value.ParseTyped(field)
				if err != nil {
					return callResultMsg{err: err}
				}
				args = append(args, v)
			}
			continue
		}
		v, err := parseParam(f.Params[i], input.Value())
		if err != nil {
			return callResultMsg{err: fmt.Errorf("%s: %w", f.Params[i].Name, err)}
		}
		args = append(args, v)
	}

	result, err := m.rt.Call(context.Background(), f.Name, args...)
	return callResultMsg{result: result, err: err}
}

// parseParam reads text as the parameter's declared kind. Untyped
// parameters take kind:text literals.
func parseParam(p foreign.Param, text string) (value.Value, error) {
	if !p.Typed {
		return value.ParseTyped(text)
	}
	k, ok := value.ParseKind(p.Tag.String())
	if !ok {
		return nil, fmt.Errorf("no text form for %s", p.Tag)
	}
	return value.Parse(k, text)
}

func (m *interactiveModel) View() string {
	if !m.loaded {
		return "Loading functions..."
	}
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("polycall"))
	b.WriteString(" ")
	b.WriteString(m.title)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("No functions loaded.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatFunc(f)))
			} else {
				b.WriteString("  " + formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(typeStyle.Render(m.result.Kind().String()))
			b.WriteString(" ")
			b.WriteString(resultStyle.Render(m.result.String()))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatFunc(f foreign.FunctionInfo) string {
	params := make([]string, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, p.Name+": "+typeStyle.Render(paramType(p)))
	}
	if f.Variadic {
		params = append(params, "...")
	}
	result := ""
	if !f.Void {
		result = " -> " + typeStyle.Render(f.Result.String())
	}
	return funcStyle.Render(f.Name) + "(" + strings.Join(params, ", ") + ")" + result + " " + langStyle.Render(f.Language)
}

func runInteractive(rt *polycall.Runtime, title string) error {
	p := tea.NewProgram(newInteractiveModel(rt, title), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
