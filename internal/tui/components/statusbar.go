package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/greenlint/internal/tui/theme"
)

// StatusInfo is what the bottom bar shows about the current scan.
type StatusInfo struct {
	Root        string
	ScanTime    string // e.g. "0.4s"
	Passed      bool
	Scanned     bool
	Rescanning  bool
	AutoRescan  bool
	PolicyError string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	barStyle := lipgloss.NewStyle().Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	left := keyStyle.Render(" [?]help  [r]escan  [q]uit")

	var parts []string
	if info.PolicyError != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Render("policy error, using defaults"))
	}
	switch {
	case info.Rescanning:
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render("scanning…"))
	case info.Scanned && info.Passed:
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Bold(true).Render("PASS"))
	case info.Scanned:
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true).Render("FAIL"))
	}
	if info.AutoRescan {
		parts = append(parts, dimStyle.Render("auto"))
	}
	if info.ScanTime != "" {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("scan %s", info.ScanTime)))
	}
	if info.Root != "" {
		parts = append(parts, dimStyle.Render(info.Root))
	}
	right := strings.Join(parts, dimStyle.Render(" │ ")) + barStyle.Render(" ")

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + barStyle.Render(strings.Repeat(" ", padding)) + right
}
