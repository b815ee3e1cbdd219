package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/basketmc/internal/ui"
)

// Dashboard styles, rebuilt from the ui theme by initStyles.
var (
	panelStyle       lipgloss.Style
	titleStyle       lipgloss.Style
	dimStyle         lipgloss.Style
	labelStyle       lipgloss.Style
	valueStyle       lipgloss.Style
	statusRunStyle   lipgloss.Style
	statusDoneStyle  lipgloss.Style
	statusErrorStyle lipgloss.Style
	cpuSparkStyle    lipgloss.Style
	memSparkStyle    lipgloss.Style
)

func init() {
	initStyles()
}

// initStyles rebuilds the dashboard styles from the current ui theme.
// Run calls it again once InitTheme has applied -no-color.
func initStyles() {
	t := ui.GetCurrentBoxTheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	dimStyle = lipgloss.NewStyle().Foreground(t.Dim)
	labelStyle = lipgloss.NewStyle().Foreground(t.Label).Width(labelWidth)
	valueStyle = lipgloss.NewStyle().Foreground(t.Value).Bold(true)
	statusRunStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	statusDoneStyle = lipgloss.NewStyle().Foreground(t.Success).Bold(true)
	statusErrorStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
	cpuSparkStyle = lipgloss.NewStyle().Foreground(t.Accent)
	memSparkStyle = lipgloss.NewStyle().Foreground(t.Border)
}
