package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
)

var (
	pink   = lipgloss.AdaptiveColor{Light: "#B5007F", Dark: "#EE10B0"}
	blue   = lipgloss.AdaptiveColor{Light: "#0A6FB0", Dark: "#0E9EEF"}
	red    = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF4D4F"}
	amber  = lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFA500"}
	slate  = lipgloss.AdaptiveColor{Light: "#5C5866", Dark: "#8A8699"}
	styles = newTheme()
)

// theme is the view's stylesheet. Colors adapt to light and dark terminal backgrounds.
type theme struct {
	heading lipgloss.Style
	liked   lipgloss.Style
	failure lipgloss.Style
	notice  lipgloss.Style
	muted   lipgloss.Style
	spinner lipgloss.Style
}

func newTheme() *theme {
	return &theme{
		heading: lipgloss.NewStyle().Foreground(pink).Bold(true).MarginBottom(1),
		liked:   lipgloss.NewStyle().Foreground(pink).Bold(true),
		failure: lipgloss.NewStyle().Foreground(red).Bold(true),
		notice:  lipgloss.NewStyle().Foreground(amber),
		muted:   lipgloss.NewStyle().Foreground(slate).Italic(true),
		spinner: lipgloss.NewStyle().Foreground(blue),
	}
}

// songDelegate renders songs with the selection bar in the accent color.
func songDelegate() list.DefaultDelegate {
	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = d.Styles.SelectedTitle.Foreground(pink).BorderForeground(pink)
	d.Styles.SelectedDesc = d.Styles.SelectedDesc.Foreground(blue).BorderForeground(pink)
	return d
}
