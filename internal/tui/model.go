// Package tui is the interactive terminal front end for the calculators.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/fincalc/internal/calculator"
	"github.com/rgehrsitz/fincalc/internal/output"
)

type keyMap struct {
	Quit   key.Binding
	Select key.Binding
	Back   key.Binding
	Run    key.Binding
	Reset  key.Binding
	Up     key.Binding
	Down   key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Run:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "calculate")),
	Reset:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset")),
	Up:     key.NewBinding(key.WithKeys("up", "shift+tab"), key.WithHelp("↑", "previous")),
	Down:   key.NewBinding(key.WithKeys("down", "tab"), key.WithHelp("↓", "next")),
}

// calculatorItem is a list entry for one calculator
type calculatorItem struct {
	name        string
	description string
}

func (i calculatorItem) Title() string       { return i.name }
func (i calculatorItem) Description() string { return i.description }
func (i calculatorItem) FilterValue() string { return i.name }

// Model represents the entire application state
type Model struct {
	registry *calculator.Registry

	// Navigation
	currentScene Scene

	// Terminal dimensions
	width  int
	height int

	// Scene models
	calculators list.Model
	form        *ParamForm
	viewport    viewport.Model

	result *calculator.Result

	// Error state
	err error

	// Loading state
	loading bool
}

// NewModel creates a new application model
func NewModel(registry *calculator.Registry) Model {
	calcs := registry.Calculators()
	items := make([]list.Item, len(calcs))
	for i, c := range calcs {
		items[i] = calculatorItem{name: c.Name(), description: c.Description()}
	}

	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.Title = "Calculators"
	l.Styles.Title = TitleStyle
	l.SetShowHelp(false)

	return Model{
		registry:     registry,
		currentScene: SceneCalculators,
		calculators:  l,
		viewport:     viewport.New(80, 20),
		width:        80,
		height:       24,
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return nil
}

// calculateCmd returns a command that runs a calculator
func calculateCmd(registry *calculator.Registry, name string, params calculator.Params) tea.Cmd {
	return func() tea.Msg {
		result, err := registry.Run(context.Background(), name, params)
		return CalculationCompleteMsg{Calculator: name, Result: result, Err: err}
	}
}

// renderResult formats a result for the viewport
func renderResult(result *calculator.Result) string {
	out, err := (&output.TableFormatter{}).Format(result)
	if err != nil {
		return ErrorStyle.Render(err.Error())
	}
	return string(out)
}
