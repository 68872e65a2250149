package main

import (
	"charm.land/lipgloss/v2"
)

// Palette
var (
	colorPrimary = lipgloss.Color("#8B5CF6")
	colorSuccess = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#F43F5E")
	colorDim     = lipgloss.Color("#94A3B8")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	promptStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	correctStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	partialStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
	wrongStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	rewardStyle  = lipgloss.NewStyle().Foreground(colorWarning)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)
)
