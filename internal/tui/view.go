package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current state of the application
func (m Model) View() string {
	var content string
	switch m.currentScene {
	case SceneCalculators:
		content = m.calculators.View()
	case SceneParameters:
		content = m.renderParameters()
	case SceneResult:
		content = m.viewport.View()
	default:
		content = "Unknown scene"
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		content,
		m.renderStatusBar(),
	)
}

// renderTitleBar renders the application title and breadcrumb
func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("fincalc")
	breadcrumb := m.currentScene.String()
	if m.currentScene != SceneCalculators && m.form != nil {
		breadcrumb = fmt.Sprintf("%s / %s", m.form.Calculator(), breadcrumb)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, " ", SubtitleStyle.Render(breadcrumb))
}

func (m Model) renderParameters() string {
	if m.form == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(m.form.View())
	if m.loading {
		sb.WriteString("\n\n" + InfoStyle.Render("Calculating..."))
	}
	if m.err != nil {
		sb.WriteString("\n\n" + ErrorStyle.Render("Error: "+m.err.Error()))
	}
	return sb.String()
}

// renderStatusBar renders the key help for the current scene
func (m Model) renderStatusBar() string {
	var bindings [][2]string
	switch m.currentScene {
	case SceneCalculators:
		bindings = [][2]string{{"enter", "select"}, {"/", "filter"}, {"q", "quit"}}
	case SceneParameters:
		bindings = [][2]string{
			{keys.Run.Help().Key, keys.Run.Help().Desc},
			{"tab/↓", "next"},
			{"shift+tab/↑", "previous"},
			{keys.Reset.Help().Key, keys.Reset.Help().Desc},
			{keys.Back.Help().Key, keys.Back.Help().Desc},
		}
	case SceneResult:
		bindings = [][2]string{{"↑/↓", "scroll"}, {keys.Back.Help().Key, "edit parameters"}}
	}
	bindings = append(bindings, [2]string{keys.Quit.Help().Key, keys.Quit.Help().Desc})

	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = HelpKeyStyle.Render(b[0]) + " " + HelpDescStyle.Render(b[1])
	}
	return StatusBarStyle.Width(m.width).Render(strings.Join(parts, "  "))
}
