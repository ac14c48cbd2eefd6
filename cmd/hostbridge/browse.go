package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/invoke"
	"github.com/wippyai/hostbridge/typeinfo"
	"github.com/wippyai/hostbridge/wasmhost"
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

func newBrowseCommand(a *app) *cobra.Command {
	var witPath string
	cmd := &cobra.Command{
		Use:   "browse <module.wasm>",
		Short: "Browse and call a module's methods interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.InvalidInput(errors.PhaseLoad, "browse needs an interactive terminal")
			}
			ctx := cmd.Context()
			h, m, err := a.openModule(ctx, args[0], witPath)
			if err != nil {
				return err
			}
			defer h.Close(ctx)

			model := newBrowseModel(ctx, args[0], m.Type(), a.invoker())
			defer model.close()
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
	cmd.Flags().StringVar(&witPath, "wit", "", "WIT file refining export signatures")
	return cmd
}

type browseState int

const (
	stateSelect browseState = iota
	stateInput
	stateResult
)

type browseModel struct {
	ctx      context.Context
	err      error
	typ      *typeinfo.Type
	invoker  *invoke.Invoker
	instance any
	filename string
	result   string
	methods  []*typeinfo.Method
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    browseState
}

type callResultMsg struct {
	err    error
	result string
}

func newBrowseModel(ctx context.Context, filename string, t *typeinfo.Type, inv *invoke.Invoker) *browseModel {
	var methods []*typeinfo.Method
	for _, m := range t.Methods() {
		if !m.Flags().Has(typeinfo.Static) {
			methods = append(methods, m)
		}
	}
	return &browseModel{
		ctx:      ctx,
		typ:      t,
		invoker:  inv,
		filename: filename,
		methods:  methods,
		state:    stateSelect,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) close() {
	if inst, ok := m.instance.(*wasmhost.Instance); ok {
		_ = inst.Close(m.ctx)
	}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInput {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelect && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelect && m.selected < len(m.methods)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelect:
				if len(m.methods) == 0 {
					return m, nil
				}
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.call
				}
				m.state = stateInput
				return m, nil

			case stateInput:
				return m, m.call

			case stateResult:
				m.reset()
			}

		case "tab":
			if m.state == stateInput && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			if m.state != stateSelect {
				m.reset()
			}
		}

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateResult
	}

	if m.state == stateInput {
		cmds := make([]tea.Cmd, len(m.inputs))
		for i := range m.inputs {
			m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m *browseModel) reset() {
	m.state = stateSelect
	m.inputs = nil
	m.result = ""
	m.err = nil
}

func (m *browseModel) prepareInputs() {
	params := m.methods[m.selected].Params()
	m.inputs = make([]textinput.Model, len(params))
	for i, p := range params {
		ti := textinput.New()
		ti.Placeholder = p.Name()
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

// call runs the selected method on a shared instance created on first use.
func (m *browseModel) call() tea.Msg {
	if m.instance == nil {
		inst, err := m.invoker.Instantiate(m.typ, m.ctx)
		if err != nil {
			return callResultMsg{err: err}
		}
		m.instance = inst
	}

	method := m.methods[m.selected]
	raw := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		raw[i] = input.Value()
	}
	args, err := convertArgs(method.Params(), raw)
	if err != nil {
		return callResultMsg{err: err}
	}
	res, err := m.invoker.Call(method, m.instance, args...)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: formatResult(res)}
}

func (m *browseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hostbridge"))
	b.WriteString(" ")
	b.WriteString(m.typ.Name())
	b.WriteString(helpStyle.Render(" (" + m.filename + ")"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelect:
		if len(m.methods) == 0 {
			b.WriteString("No instance methods.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a method:\n\n")
		for i, meth := range m.methods {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatMethod(meth)))
			} else {
				b.WriteString("  " + formatMethod(meth))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInput:
		meth := m.methods[m.selected]
		params := meth.Params()
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(meth.Name())))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(params[i].Name()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(m.methods[m.selected].Name())))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatMethod(meth *typeinfo.Method) string {
	params := make([]string, 0, len(meth.Params()))
	for _, p := range meth.Params() {
		params = append(params, typeStyle.Render(p.Name()))
	}
	result := ""
	if rt := meth.MainType(); rt != typeinfo.Void {
		result = " -> " + typeStyle.Render(rt.Name())
	}
	return funcStyle.Render(meth.Name()) + "(" + strings.Join(params, ", ") + ")" + result
}
