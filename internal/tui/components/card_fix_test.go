package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/greenlint/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := len(strings.Split(shortCard, "\n"))
	tallLines := len(strings.Split(tallCard, "\n"))
	if shortLines >= tallLines {
		t.Fatal("Test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Errorf("Joined height should match tallest card: got %d, want %d", len(lines), tallLines)
	}

	// Padding below the short card must still be styled.
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("Line %d has no ANSI codes", i)
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")

	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d", i, w, want)
		}
	}
}

func TestCardRowSkipsEmpty(t *testing.T) {
	card := ContentCard("Only", "x", 20)
	if got := CardRow([]string{"", card, ""}); lipgloss.Width(got) != lipgloss.Width(card) {
		t.Fatalf("width = %d, want %d", lipgloss.Width(got), lipgloss.Width(card))
	}
	if CardRow(nil) != "" {
		t.Fatal("empty row should render nothing")
	}
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for total := 10; total < 40; total++ {
		for n := 1; n <= 5; n++ {
			sum := 0
			for _, w := range LayoutRow(total, n) {
				sum += w
			}
			if sum != total {
				t.Fatalf("LayoutRow(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
}

func TestTabVisualWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")
	for i := range Tabs {
		bar := RenderTabBar(i, 0)
		want := 0
		for j, tab := range Tabs {
			want += TabVisualWidth(tab, j == i)
		}
		want += len(Tabs) - 1 // separators
		if got := lipgloss.Width(bar); got != want {
			t.Fatalf("active=%d: bar width %d, want %d", i, got, want)
		}
	}
	if got := TabIdxByKey('v'); got != 1 {
		t.Fatalf("TabIdxByKey('v') = %d, want 1", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Fatalf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestHBarChartScales(t *testing.T) {
	out := HBarChart([]Bar{
		{Label: "gpt-4", Value: 10},
		{Label: "gpt-4o-mini", Value: 1},
	}, 60)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if strings.Count(lines[0], "█") <= strings.Count(lines[1], "█") {
		t.Fatal("larger value should draw the longer bar")
	}
	if strings.Count(lines[1], "█") == 0 {
		t.Fatal("non-zero value should draw at least one cell")
	}
}
