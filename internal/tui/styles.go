// Package tui implements the Bubble Tea command panel for shellmark.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/shellmark/internal/styles"
)

// Styles used for rendering the panel.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorBlue).
			PaddingLeft(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	toggleOnStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen)

	toggleOffStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	warnStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorRed)

	helpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorGray)

	activePaneStyle = paneStyle.
			BorderForeground(styles.ColorBlue)
)

// Icons and symbols.
const (
	iconOn  = "●"
	iconOff = "○"
)
