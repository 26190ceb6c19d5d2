package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/greenlint/internal/tui/components"
)

// Every column of the rendered tab bar must map to the tab drawn there.
func TestTabAtXFollowsRenderedBar(t *testing.T) {
	labels := []string{"Overview", "Violations", "Breakdown", "History", "Settings[x]"}

	for active := range components.Tabs {
		a := App{activeTab: active}
		bar := components.RenderTabBar(active, 0)
		if got, want := lipgloss.Width(bar), barWidth(active); got != want {
			t.Fatalf("active=%d: bar width %d, hitboxes cover %d", active, got, want)
		}

		pos := 0
		for i := range components.Tabs {
			w := len(labels[i]) + 2
			if i == active && i == len(labels)-1 {
				w -= 3 // active Settings drops the key hint
			}
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d: tab %d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("active=%d: x past the last tab hit tab %d", active, got)
		}
	}
}

func barWidth(active int) int {
	w := 0
	for i, tab := range components.Tabs {
		w += components.TabVisualWidth(tab, i == active)
	}
	return w + len(components.Tabs) - 1
}

func TestClickSwitchesTab(t *testing.T) {
	a := App{}
	x := components.TabVisualWidth(components.Tabs[0], true) + 1 + 2 // inside "Violations"

	m, _ := a.updateMouse(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft})
	if got := m.(App).activeTab; got != tabViolations {
		t.Fatalf("activeTab = %d, want %d", got, tabViolations)
	}

	// Clicks below the bar leave the tab alone.
	m, _ = m.(App).updateMouse(tea.MouseMsg{X: 1, Y: 3, Button: tea.MouseButtonLeft})
	if got := m.(App).activeTab; got != tabViolations {
		t.Fatalf("click off the bar changed tab to %d", got)
	}
}
