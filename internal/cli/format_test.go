package cli

import "testing"

func TestFormatCost(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{0.00432, "$0.0043"},
		{1, "$1"},
		{12.5, "$12.50"},
		{1234.4, "$1,234"},
	}
	for _, tt := range tests {
		if got := FormatCost(tt.in); got != tt.want {
			t.Errorf("FormatCost(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCarbon(t *testing.T) {
	if got := FormatCarbon(5.2000000001); got != "5.2 gCO2e" {
		t.Errorf("got %q", got)
	}
	if got := FormatCarbon(2500); got != "2.5 kgCO2e" {
		t.Errorf("got %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProportionBar(t *testing.T) {
	tests := []struct {
		used float64
		want string
	}{
		{0, "░░░░░░░░░░"},
		{0.5, "█████░░░░░"},
		{1, "██████████"},
		{5.2, "██████████"},
		{-1, "░░░░░░░░░░"},
	}
	for _, tt := range tests {
		if got := ProportionBar(tt.used, 10); got != tt.want {
			t.Errorf("ProportionBar(%v) = %q, want %q", tt.used, got, tt.want)
		}
	}
}
