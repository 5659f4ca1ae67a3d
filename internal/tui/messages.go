package tui

import (
	"github.com/rgehrsitz/fincalc/internal/calculator"
)

// Scene represents different screens in the TUI
type Scene int

const (
	SceneCalculators Scene = iota
	SceneParameters
	SceneResult
)

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneCalculators:
		return "Calculators"
	case SceneParameters:
		return "Parameters"
	case SceneResult:
		return "Result"
	default:
		return "Unknown"
	}
}

// Message types for the Bubble Tea update cycle

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}

// CalculationCompleteMsg signals a calculation has finished
type CalculationCompleteMsg struct {
	Calculator string
	Result     *calculator.Result
	Err        error
}
