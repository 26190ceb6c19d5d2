package source

import "testing"

func TestLineIndex_Position(t *testing.T) {
	content := "first\nsecond line\n\nlast"
	x := NewLineIndex(content)

	tests := []struct {
		offset       int
		line, column int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{6, 2, 1},
		{13, 2, 8},
		{17, 2, 12},
		{18, 3, 1},
		{19, 4, 1},
		{20, 4, 2},
		{len(content), 4, 5},
	}
	for _, tt := range tests {
		p := x.Position(tt.offset)
		if p.Line != tt.line || p.Column != tt.column {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", tt.offset, p.Line, p.Column, tt.line, tt.column)
		}
	}
	if x.Lines() != 4 {
		t.Fatalf("Lines = %d, want 4", x.Lines())
	}
}

func TestLineIndex_ColumnsCountRunes(t *testing.T) {
	x := NewLineIndex("héllo = 1")
	// "é" is two bytes; offset 3 is the first "l".
	if p := x.Position(3); p.Column != 3 {
		t.Fatalf("column = %d, want 3", p.Column)
	}
}
