package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/fincalc/internal/calculator"
)

// ParamForm edits the parameters of one calculator. Empty inputs fall back
// to the calculator's defaults.
type ParamForm struct {
	calculator  string
	description string
	specs       []calculator.ParamSpec
	inputs      []textinput.Model
	focus       int
}

// NewParamForm builds one text input per declared parameter
func NewParamForm(c calculator.Calculator) *ParamForm {
	f := &ParamForm{
		calculator:  c.Name(),
		description: c.Description(),
		specs:       c.Params(),
	}
	f.inputs = make([]textinput.Model, len(f.specs))
	for i, spec := range f.specs {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.CharLimit = 512
		ti.Width = 40
		ti.Placeholder = spec.Default
		if spec.Default == "" && spec.Optional {
			ti.Placeholder = "(stored rate)"
		}
		f.inputs[i] = ti
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

// Calculator returns the calculator name
func (f *ParamForm) Calculator() string {
	return f.calculator
}

// Values returns the non-empty inputs
func (f *ParamForm) Values() calculator.Params {
	params := calculator.Params{}
	for i, spec := range f.specs {
		if v := strings.TrimSpace(f.inputs[i].Value()); v != "" {
			params[spec.Name] = v
		}
	}
	return params
}

// Reset clears every input
func (f *ParamForm) Reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
}

// Update handles messages for the form
func (f *ParamForm) Update(msg tea.Msg) (*ParamForm, tea.Cmd) {
	if len(f.inputs) == 0 {
		return f, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			return f, f.setFocus(f.focus - 1)
		case key.Matches(msg, keys.Down):
			return f, f.setFocus(f.focus + 1)
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// setFocus moves focus to index i, wrapping around
func (f *ParamForm) setFocus(i int) tea.Cmd {
	n := len(f.inputs)
	i = ((i % n) + n) % n
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[f.focus].Focus()
}

// View renders the form
func (f *ParamForm) View() string {
	var sb strings.Builder
	sb.WriteString(SubtitleStyle.Render(f.description))
	sb.WriteString("\n\n")
	for i, spec := range f.specs {
		labelStyle := ParameterLabelStyle
		if i == f.focus {
			labelStyle = FocusedLabelStyle
		}
		sb.WriteString(labelStyle.Render(spec.Name))
		sb.WriteString(f.inputs[i].View())
		sb.WriteString("\n")
	}
	if f.focus < len(f.specs) {
		sb.WriteString("\n")
		sb.WriteString(InfoStyle.Render(fmt.Sprintf("%s: %s", f.specs[f.focus].Name, f.specs[f.focus].Description)))
	}
	return sb.String()
}
