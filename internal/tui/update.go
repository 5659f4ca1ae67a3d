package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// chrome is the height taken by the title and status bars
const chrome = 4

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// Standard tea.Msg types
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.calculators.SetSize(msg.Width, max(1, msg.Height-chrome))
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chrome)
		return m, nil

	// Custom messages
	case NavigateMsg:
		m.currentScene = msg.Scene
		m.err = nil
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case CalculationCompleteMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.result = msg.Result
		m.viewport.SetContent(renderResult(msg.Result))
		m.viewport.GotoTop()
		m.currentScene = SceneResult
		return m, nil
	}

	// Delegate to scene-specific update handlers
	return m.updateCurrentScene(msg)
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	switch m.currentScene {
	case SceneCalculators:
		if m.calculators.FilterState() == list.Filtering {
			break
		}
		switch {
		case msg.String() == "q":
			return m, tea.Quit
		case key.Matches(msg, keys.Select):
			item, ok := m.calculators.SelectedItem().(calculatorItem)
			if !ok {
				return m, nil
			}
			calc, err := m.registry.Create(item.name)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.form = NewParamForm(calc)
			m.err = nil
			m.currentScene = SceneParameters
			return m, nil
		}

	case SceneParameters:
		switch {
		case m.loading:
			return m, nil
		case key.Matches(msg, keys.Back):
			return m, func() tea.Msg { return NavigateMsg{Scene: SceneCalculators} }
		case key.Matches(msg, keys.Run):
			m.loading = true
			m.err = nil
			return m, calculateCmd(m.registry, m.form.Calculator(), m.form.Values())
		case key.Matches(msg, keys.Reset):
			m.form.Reset()
			return m, nil
		}

	case SceneResult:
		if key.Matches(msg, keys.Back) {
			return m, func() tea.Msg { return NavigateMsg{Scene: SceneParameters} }
		}
	}

	// Let the current scene handle other keys
	return m.updateCurrentScene(msg)
}

// updateCurrentScene delegates updates to the current scene's model
func (m Model) updateCurrentScene(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentScene {
	case SceneCalculators:
		m.calculators, cmd = m.calculators.Update(msg)
	case SceneParameters:
		if m.form != nil {
			m.form, cmd = m.form.Update(msg)
		}
	case SceneResult:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}
