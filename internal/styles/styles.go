// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen  = lipgloss.Color("#9ece6a")
	ColorYellow = lipgloss.Color("#e0af68")
	ColorBlue   = lipgloss.Color("#7aa2f7")
	ColorRed    = lipgloss.Color("#d75f6b")
	ColorGray   = lipgloss.Color("#565f89")
	ColorWhite  = lipgloss.Color("#c0caf5")
)

// Banner is the panel header.
const Banner = `┏━┓╻ ╻┏━╸╻  ╻  ┏┳┓┏━┓┏━┓╻┏
┗━┓┣━┫┣╸ ┃  ┃  ┃┃┃┣━┫┣┳┛┣┻┓
┗━┛╹ ╹┗━╸┗━╸┗━╸╹ ╹╹ ╹╹┗╸╹ ╹`

// BannerStyle styles the banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// CommandStyle styles command text echoed back to the user.
var CommandStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Bold(true)

// DividerStyle styles horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)
